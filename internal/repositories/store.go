// Package repositories holds the persistence port used by the services and
// its two adapters: postgres through gorm, and an in-memory store for tests
// and local runs.
package repositories

import (
	"context"
	"time"

	"github.com/farellandr/eventhub/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type Page struct {
	Number int
	Limit  int
}

// Normalize clamps the page to sane bounds; page numbers start at 1.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Limit
}

type EventFilter struct {
	Location string
	From     *time.Time
	To       *time.Time
}

// Store is the persistence port. Lookups of a single entity return an
// apperr NotFound error when it is absent; batch primitives touch every
// given id in a single statement.
type Store interface {
	// Transaction runs fn against a store bound to one atomic unit of work.
	// Any error returned by fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	UserStore
	EventStore
	TicketStore
	FeedbackStore
	PhotoStore
}

type UserStore interface {
	// FindUser loads the user with its roles.
	FindUser(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, int64, error)
	UserExists(ctx context.Context, username string) (bool, error)
	// EmailTaken ignores the row owned by exceptUsername.
	EmailTaken(ctx context.Context, email, exceptUsername string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	// SaveUser replaces email, password, enabled and photo reference.
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, username string) error

	AddRoles(ctx context.Context, roles []models.Role) error
	RemoveRoles(ctx context.Context, username string, names []string) error
	DeleteRolesByUser(ctx context.Context, username string) error
}

type EventStore interface {
	FindEvent(ctx context.Context, id uuid.UUID) (models.Event, error)
	ListEvents(ctx context.Context, filter EventFilter, page Page) ([]models.Event, int64, error)
	ListEventIDsByOrganizer(ctx context.Context, username string) ([]uuid.UUID, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	SaveEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	ListParticipants(ctx context.Context, eventID uuid.UUID) ([]models.User, error)
	AddParticipants(ctx context.Context, eventID uuid.UUID, usernames []string) error
	RemoveParticipants(ctx context.Context, eventID uuid.UUID, usernames []string) error
	DeleteParticipationsByEvent(ctx context.Context, eventID uuid.UUID) error
	DeleteParticipationsByUser(ctx context.Context, username string) error
}

type TicketStore interface {
	FindTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error)
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	SaveTicket(ctx context.Context, ticket *models.Ticket) error
	DeleteTicket(ctx context.Context, id uuid.UUID) error
	ListTicketsByOwner(ctx context.Context, username string) ([]models.Ticket, error)
	ListTicketsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error)
	// SetTicketsEvent links the tickets to eventID, or unlinks them when nil.
	SetTicketsEvent(ctx context.Context, ids []uuid.UUID, eventID *uuid.UUID) error
	SetTicketsOwner(ctx context.Context, ids []uuid.UUID, username string) error
	DeleteTicketsByOwner(ctx context.Context, username string) error
	DeleteTicketsByEvent(ctx context.Context, eventID uuid.UUID) error
}

type FeedbackStore interface {
	FindFeedback(ctx context.Context, id uuid.UUID) (models.Feedback, error)
	CreateFeedback(ctx context.Context, feedback *models.Feedback) error
	SaveFeedback(ctx context.Context, feedback *models.Feedback) error
	DeleteFeedback(ctx context.Context, id uuid.UUID) error
	ListFeedbackByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error)
	SetFeedbackEvent(ctx context.Context, ids []uuid.UUID, eventID uuid.UUID) error
	DeleteFeedbackByIDs(ctx context.Context, ids []uuid.UUID) error
	DeleteFeedbackByUser(ctx context.Context, username string) error
	DeleteFeedbackByEvent(ctx context.Context, eventID uuid.UUID) error
}

type PhotoStore interface {
	FindPhoto(ctx context.Context, filename string) (models.UserPhoto, error)
	CreatePhoto(ctx context.Context, photo *models.UserPhoto) error
	// PhotoOwner reports the user currently referencing filename, if any.
	PhotoOwner(ctx context.Context, filename string) (string, bool, error)
}

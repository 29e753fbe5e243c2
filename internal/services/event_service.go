package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/auth"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventInput struct {
	Name      string
	Location  string
	StartTime time.Time
	EndTime   time.Time
	Capacity  int
	Price     decimal.Decimal
	// Organizer is only read on create; use SetOrganizer afterwards.
	Organizer *string
}

func (in EventInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Location) == "" {
		return apperr.InvalidArgument("name and location are required")
	}
	if !in.EndTime.After(in.StartTime) {
		return apperr.InvalidArgument("end_time must be after start_time")
	}
	if in.Capacity < 0 {
		return apperr.InvalidArgument("capacity must not be negative")
	}
	if in.Price.IsNegative() {
		return apperr.InvalidArgument("price must not be negative")
	}
	return nil
}

type EventService struct {
	store  repositories.Store
	logger *slog.Logger
}

func NewEventService(store repositories.Store, logger *slog.Logger) *EventService {
	return &EventService{store: store, logger: resolveLogger(logger)}
}

// Create stores a new event. Without an explicit organizer, a caller holding
// ROLE_ORGANIZER becomes the organizer.
func (s *EventService) Create(ctx context.Context, caller auth.Identity, input EventInput) (models.Event, error) {
	if err := input.validate(); err != nil {
		return models.Event{}, err
	}
	organizer := input.Organizer
	if organizer == nil && caller.Authorities.Has(auth.AuthorityOrganizer) {
		subject := caller.Subject
		organizer = &subject
	}

	event := models.Event{
		OrganizerUsername: organizer,
		Name:              strings.TrimSpace(input.Name),
		Location:          strings.TrimSpace(input.Location),
		StartTime:         input.StartTime,
		EndTime:           input.EndTime,
		Capacity:          input.Capacity,
		Price:             input.Price,
	}
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if organizer != nil {
			if _, err := tx.FindUser(ctx, *organizer); err != nil {
				return err
			}
		}
		return tx.CreateEvent(ctx, &event)
	})
	return event, err
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (models.Event, error) {
	return s.store.FindEvent(ctx, id)
}

func (s *EventService) List(ctx context.Context, filter repositories.EventFilter, page repositories.Page) ([]models.Event, int64, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, apperr.InvalidArgument("to must not be before from")
	}
	return s.store.ListEvents(ctx, filter, page)
}

// Update replaces the event's fields. The organizer is left untouched.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, input EventInput) (models.Event, error) {
	if err := input.validate(); err != nil {
		return models.Event{}, err
	}
	var updated models.Event
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		event, err := tx.FindEvent(ctx, id)
		if err != nil {
			return err
		}
		event.Name = strings.TrimSpace(input.Name)
		event.Location = strings.TrimSpace(input.Location)
		event.StartTime = input.StartTime
		event.EndTime = input.EndTime
		event.Capacity = input.Capacity
		event.Price = input.Price
		if err := tx.SaveEvent(ctx, &event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	return updated, err
}

func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		return deleteEventCascade(ctx, tx, id)
	})
	if err == nil {
		s.logger.Info("event deleted", "event_id", id.String())
	}
	return err
}

func (s *EventService) SetOrganizer(ctx context.Context, id uuid.UUID, username string) (models.Event, error) {
	if strings.TrimSpace(username) == "" {
		return models.Event{}, apperr.InvalidArgument("username is required")
	}
	var updated models.Event
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		event, err := tx.FindEvent(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.FindUser(ctx, username); err != nil {
			return err
		}
		event.OrganizerUsername = &username
		if err := tx.SaveEvent(ctx, &event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	return updated, err
}

func (s *EventService) RemoveOrganizer(ctx context.Context, id uuid.UUID) (models.Event, error) {
	var updated models.Event
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		event, err := tx.FindEvent(ctx, id)
		if err != nil {
			return err
		}
		if event.OrganizerUsername == nil {
			return apperr.IllegalState("event %s has no organizer", id)
		}
		event.OrganizerUsername = nil
		if err := tx.SaveEvent(ctx, &event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	return updated, err
}

func (s *EventService) ListParticipants(ctx context.Context, id uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		var err error
		users, err = tx.ListParticipants(ctx, id)
		return err
	})
	return users, err
}

// AddParticipants links users to the event; users already participating
// are skipped.
func (s *EventService) AddParticipants(ctx context.Context, id uuid.UUID, usernames []string) ([]models.User, error) {
	if err := requireNonEmpty("usernames", usernames); err != nil {
		return nil, err
	}
	var users []models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		current, err := tx.ListParticipants(ctx, id)
		if err != nil {
			return err
		}
		linked := usernameSet(current)

		var add []string
		for _, username := range dedupe(usernames) {
			if _, err := tx.FindUser(ctx, username); err != nil {
				return err
			}
			if _, ok := linked[username]; !ok {
				add = append(add, username)
			}
		}
		if err := tx.AddParticipants(ctx, id, add); err != nil {
			return err
		}
		users, err = tx.ListParticipants(ctx, id)
		return err
	})
	return users, err
}

// RemoveParticipants unlinks users; each must currently participate.
func (s *EventService) RemoveParticipants(ctx context.Context, id uuid.UUID, usernames []string) ([]models.User, error) {
	if err := requireNonEmpty("usernames", usernames); err != nil {
		return nil, err
	}
	var users []models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		current, err := tx.ListParticipants(ctx, id)
		if err != nil {
			return err
		}
		linked := usernameSet(current)

		usernames = dedupe(usernames)
		for _, username := range usernames {
			if _, err := tx.FindUser(ctx, username); err != nil {
				return err
			}
			if _, ok := linked[username]; !ok {
				return apperr.IllegalState("user %s is not a participant of event %s", username, id)
			}
		}
		if err := tx.RemoveParticipants(ctx, id, usernames); err != nil {
			return err
		}
		users, err = tx.ListParticipants(ctx, id)
		return err
	})
	return users, err
}

func usernameSet(users []models.User) map[string]struct{} {
	set := make(map[string]struct{}, len(users))
	for _, u := range users {
		set[u.Username] = struct{}{}
	}
	return set
}

func (s *EventService) ListTickets(ctx context.Context, id uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		var err error
		tickets, err = tx.ListTicketsByEvent(ctx, id)
		return err
	})
	return tickets, err
}

// AssignTickets links existing tickets to the event. Tickets linked to
// another event are moved; tickets already linked here are skipped.
func (s *EventService) AssignTickets(ctx context.Context, id uuid.UUID, ticketIDs []uuid.UUID) ([]models.Ticket, error) {
	if err := requireNonEmpty("ticket_ids", ticketIDs); err != nil {
		return nil, err
	}
	var tickets []models.Ticket
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		var link []uuid.UUID
		for _, ticketID := range dedupe(ticketIDs) {
			ticket, err := tx.FindTicket(ctx, ticketID)
			if err != nil {
				return err
			}
			if !ticket.LinkedTo(id) {
				link = append(link, ticketID)
			}
		}
		if err := tx.SetTicketsEvent(ctx, link, &id); err != nil {
			return err
		}
		var err error
		tickets, err = tx.ListTicketsByEvent(ctx, id)
		return err
	})
	return tickets, err
}

// RemoveTickets unlinks tickets from the event without deleting them.
func (s *EventService) RemoveTickets(ctx context.Context, id uuid.UUID, ticketIDs []uuid.UUID) ([]models.Ticket, error) {
	if err := requireNonEmpty("ticket_ids", ticketIDs); err != nil {
		return nil, err
	}
	var tickets []models.Ticket
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		ticketIDs = dedupe(ticketIDs)
		for _, ticketID := range ticketIDs {
			ticket, err := tx.FindTicket(ctx, ticketID)
			if err != nil {
				return err
			}
			if !ticket.LinkedTo(id) {
				return apperr.IllegalState("ticket %s is not linked to event %s", ticketID, id)
			}
		}
		if err := tx.SetTicketsEvent(ctx, ticketIDs, nil); err != nil {
			return err
		}
		var err error
		tickets, err = tx.ListTicketsByEvent(ctx, id)
		return err
	})
	return tickets, err
}

func (s *EventService) ListFeedback(ctx context.Context, id uuid.UUID) ([]models.Feedback, error) {
	var feedback []models.Feedback
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		var err error
		feedback, err = tx.ListFeedbackByEvent(ctx, id)
		return err
	})
	return feedback, err
}

// AssignFeedback moves existing feedback entries to the event.
func (s *EventService) AssignFeedback(ctx context.Context, id uuid.UUID, feedbackIDs []uuid.UUID) ([]models.Feedback, error) {
	if err := requireNonEmpty("feedback_ids", feedbackIDs); err != nil {
		return nil, err
	}
	var feedback []models.Feedback
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		var move []uuid.UUID
		for _, feedbackID := range dedupe(feedbackIDs) {
			entry, err := tx.FindFeedback(ctx, feedbackID)
			if err != nil {
				return err
			}
			if entry.EventID != id {
				move = append(move, feedbackID)
			}
		}
		if err := tx.SetFeedbackEvent(ctx, move, id); err != nil {
			return err
		}
		var err error
		feedback, err = tx.ListFeedbackByEvent(ctx, id)
		return err
	})
	return feedback, err
}

// RemoveFeedback detaches feedback from the event. Feedback cannot exist
// without an event, so the entries are deleted.
func (s *EventService) RemoveFeedback(ctx context.Context, id uuid.UUID, feedbackIDs []uuid.UUID) ([]models.Feedback, error) {
	if err := requireNonEmpty("feedback_ids", feedbackIDs); err != nil {
		return nil, err
	}
	var feedback []models.Feedback
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, id); err != nil {
			return err
		}
		feedbackIDs = dedupe(feedbackIDs)
		for _, feedbackID := range feedbackIDs {
			entry, err := tx.FindFeedback(ctx, feedbackID)
			if err != nil {
				return err
			}
			if entry.EventID != id {
				return apperr.IllegalState("feedback %s is not linked to event %s", feedbackID, id)
			}
		}
		if err := tx.DeleteFeedbackByIDs(ctx, feedbackIDs); err != nil {
			return err
		}
		var err error
		feedback, err = tx.ListFeedbackByEvent(ctx, id)
		return err
	})
	return feedback, err
}

package services

import (
	"context"
	"time"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TicketInput struct {
	EventID *uuid.UUID
	Price   decimal.Decimal
	Type    string
}

func (in TicketInput) ticketType() (models.TicketType, error) {
	t, err := models.ParseTicketType(in.Type)
	if err != nil {
		return "", apperr.InvalidArgument("type must be one of VIP, STANDARD, FREE, STUDENT, BACKSTAGE")
	}
	if in.Price.IsNegative() {
		return "", apperr.InvalidArgument("price must not be negative")
	}
	return t, nil
}

// TicketService manages tickets in the scope of their owner.
type TicketService struct {
	store repositories.Store
	now   func() time.Time
}

func NewTicketService(store repositories.Store) *TicketService {
	return &TicketService{store: store, now: time.Now}
}

func (s *TicketService) Create(ctx context.Context, owner string, input TicketInput) (models.Ticket, error) {
	ticketType, err := input.ticketType()
	if err != nil {
		return models.Ticket{}, err
	}
	ticket := models.Ticket{
		ID:            uuid.New(),
		OwnerUsername: owner,
		EventID:       input.EventID,
		Price:         input.Price,
		Code:          models.NewTicketCode(),
		PurchaseDate:  s.now().UTC(),
		Type:          ticketType,
	}
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindUser(ctx, owner); err != nil {
			return err
		}
		if input.EventID != nil {
			if _, err := tx.FindEvent(ctx, *input.EventID); err != nil {
				return err
			}
		}
		return tx.CreateTicket(ctx, &ticket)
	})
	return ticket, err
}

// findOwned treats a ticket owned by someone else as absent.
func findOwned(ctx context.Context, tx repositories.Store, owner string, id uuid.UUID) (models.Ticket, error) {
	if _, err := tx.FindUser(ctx, owner); err != nil {
		return models.Ticket{}, err
	}
	ticket, err := tx.FindTicket(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if ticket.OwnerUsername != owner {
		return models.Ticket{}, apperr.NotFound("ticket", id)
	}
	return ticket, nil
}

func (s *TicketService) Get(ctx context.Context, owner string, id uuid.UUID) (models.Ticket, error) {
	var ticket models.Ticket
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		ticket, err = findOwned(ctx, tx, owner, id)
		return err
	})
	return ticket, err
}

func (s *TicketService) ListByOwner(ctx context.Context, owner string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindUser(ctx, owner); err != nil {
			return err
		}
		var err error
		tickets, err = tx.ListTicketsByOwner(ctx, owner)
		return err
	})
	return tickets, err
}

// Update replaces event, price and type. Code and purchase date are fixed.
func (s *TicketService) Update(ctx context.Context, owner string, id uuid.UUID, input TicketInput) (models.Ticket, error) {
	ticketType, err := input.ticketType()
	if err != nil {
		return models.Ticket{}, err
	}
	var updated models.Ticket
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		ticket, err := findOwned(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		if input.EventID != nil {
			if _, err := tx.FindEvent(ctx, *input.EventID); err != nil {
				return err
			}
		}
		ticket.EventID = input.EventID
		ticket.Price = input.Price
		ticket.Type = ticketType
		if err := tx.SaveTicket(ctx, &ticket); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	return updated, err
}

func (s *TicketService) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := findOwned(ctx, tx, owner, id); err != nil {
			return err
		}
		return tx.DeleteTicket(ctx, id)
	})
}

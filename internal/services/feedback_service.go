package services

import (
	"context"
	"strings"
	"time"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/google/uuid"
)

type FeedbackInput struct {
	Username string
	Rating   int
	Comment  string
}

// FeedbackService manages feedback in the scope of its event.
type FeedbackService struct {
	store repositories.Store
	now   func() time.Time
}

func NewFeedbackService(store repositories.Store) *FeedbackService {
	return &FeedbackService{store: store, now: time.Now}
}

func checkRating(rating int) error {
	if !models.ValidRating(rating) {
		return apperr.InvalidArgument("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	return nil
}

func (s *FeedbackService) Create(ctx context.Context, eventID uuid.UUID, input FeedbackInput) (models.Feedback, error) {
	if strings.TrimSpace(input.Username) == "" {
		return models.Feedback{}, apperr.InvalidArgument("username is required")
	}
	if err := checkRating(input.Rating); err != nil {
		return models.Feedback{}, err
	}
	feedback := models.Feedback{
		ID:           uuid.New(),
		Username:     input.Username,
		EventID:      eventID,
		Rating:       input.Rating,
		Comment:      input.Comment,
		FeedbackDate: s.now().UTC(),
	}
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.FindEvent(ctx, eventID); err != nil {
			return err
		}
		if _, err := tx.FindUser(ctx, input.Username); err != nil {
			return err
		}
		return tx.CreateFeedback(ctx, &feedback)
	})
	return feedback, err
}

// findForEvent treats feedback attached to another event as absent.
func findForEvent(ctx context.Context, tx repositories.Store, eventID, id uuid.UUID) (models.Feedback, error) {
	if _, err := tx.FindEvent(ctx, eventID); err != nil {
		return models.Feedback{}, err
	}
	feedback, err := tx.FindFeedback(ctx, id)
	if err != nil {
		return models.Feedback{}, err
	}
	if feedback.EventID != eventID {
		return models.Feedback{}, apperr.NotFound("feedback", id)
	}
	return feedback, nil
}

func (s *FeedbackService) Get(ctx context.Context, eventID, id uuid.UUID) (models.Feedback, error) {
	var feedback models.Feedback
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		var err error
		feedback, err = findForEvent(ctx, tx, eventID, id)
		return err
	})
	return feedback, err
}

// Update replaces rating and comment; author and event stay fixed.
func (s *FeedbackService) Update(ctx context.Context, eventID, id uuid.UUID, rating int, comment string) (models.Feedback, error) {
	if err := checkRating(rating); err != nil {
		return models.Feedback{}, err
	}
	var updated models.Feedback
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		feedback, err := findForEvent(ctx, tx, eventID, id)
		if err != nil {
			return err
		}
		feedback.Rating = rating
		feedback.Comment = comment
		if err := tx.SaveFeedback(ctx, &feedback); err != nil {
			return err
		}
		updated = feedback
		return nil
	})
	return updated, err
}

func (s *FeedbackService) Delete(ctx context.Context, eventID, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := findForEvent(ctx, tx, eventID, id); err != nil {
			return err
		}
		return tx.DeleteFeedback(ctx, id)
	})
}

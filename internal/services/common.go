// Package services implements the entity operations. Every exported
// operation runs inside exactly one store transaction; batch relationship
// changes resolve every referenced id before anything is written.
package services

import (
	"context"
	"log/slog"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/google/uuid"
)

func requireNonEmpty[T any](field string, items []T) error {
	if len(items) == 0 {
		return apperr.InvalidArgument("%s must not be empty", field)
	}
	return nil
}

// dedupe keeps the first occurrence of every value.
func dedupe[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// deleteEventCascade removes an event together with its tickets, feedback
// and participant links.
func deleteEventCascade(ctx context.Context, tx repositories.Store, eventID uuid.UUID) error {
	if err := tx.DeleteTicketsByEvent(ctx, eventID); err != nil {
		return err
	}
	if err := tx.DeleteFeedbackByEvent(ctx, eventID); err != nil {
		return err
	}
	if err := tx.DeleteParticipationsByEvent(ctx, eventID); err != nil {
		return err
	}
	return tx.DeleteEvent(ctx, eventID)
}

// deleteUserCascade removes a user with its roles, tickets, feedback,
// participations and every event it organizes. The photo record is kept.
func deleteUserCascade(ctx context.Context, tx repositories.Store, username string) error {
	eventIDs, err := tx.ListEventIDsByOrganizer(ctx, username)
	if err != nil {
		return err
	}
	for _, id := range eventIDs {
		if err := deleteEventCascade(ctx, tx, id); err != nil {
			return err
		}
	}
	if err := tx.DeleteTicketsByOwner(ctx, username); err != nil {
		return err
	}
	if err := tx.DeleteFeedbackByUser(ctx, username); err != nil {
		return err
	}
	if err := tx.DeleteParticipationsByUser(ctx, username); err != nil {
		return err
	}
	if err := tx.DeleteRolesByUser(ctx, username); err != nil {
		return err
	}
	return tx.DeleteUser(ctx, username)
}

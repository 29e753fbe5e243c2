//go:build integration
// +build integration

package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farellandr/eventhub/config"
	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("eventhub"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := config.InitDatabase(ctx, config.DatabaseConfig{URL: connStr, MaxIdleConns: 2, MaxOpenConns: 5}, nil)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() { _ = config.CloseDatabase(db) })
	return db
}

func TestGormStore(t *testing.T) {
	db := setupTestDB(t)
	store := repositories.NewGormStore(db, nil)
	ctx := context.Background()

	alice := models.User{Username: "alice", Email: "alice@example.com", Password: "hash", Enabled: true}
	require.NoError(t, store.CreateUser(ctx, &alice))
	require.NoError(t, store.AddRoles(ctx, []models.Role{
		{Username: "alice", Name: "ROLE_ORGANIZER"},
		{Username: "alice", Name: "ROLE_ORGANIZER"},
	}))

	t.Run("unique constraints map to conflicts", func(t *testing.T) {
		dup := models.User{Username: "alice2", Email: "alice@example.com", Password: "hash"}
		assert.ErrorIs(t, store.CreateUser(ctx, &dup), apperr.ErrEmailAlreadyExists)

		dup = models.User{Username: "alice", Email: "other@example.com", Password: "hash"}
		assert.ErrorIs(t, store.CreateUser(ctx, &dup), apperr.ErrUsernameAlreadyExists)
	})

	t.Run("roles are deduplicated and validated", func(t *testing.T) {
		user, err := store.FindUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"ROLE_ORGANIZER"}, user.RoleNames())

		err = store.AddRoles(ctx, []models.Role{{Username: "alice", Name: "ORGANIZER"}})
		assert.Error(t, err)
	})

	organizer := "alice"
	event := models.Event{
		OrganizerUsername: &organizer,
		Name:              "Jazz Night",
		Location:          "Jakarta",
		StartTime:         time.Now().Add(24 * time.Hour),
		EndTime:           time.Now().Add(27 * time.Hour),
		Capacity:          200,
		Price:             decimal.RequireFromString("250000.00"),
	}
	require.NoError(t, store.CreateEvent(ctx, &event))

	t.Run("participants are unique per event", func(t *testing.T) {
		require.NoError(t, store.AddParticipants(ctx, event.ID, []string{"alice"}))
		require.NoError(t, store.AddParticipants(ctx, event.ID, []string{"alice"}))

		participants, err := store.ListParticipants(ctx, event.ID)
		require.NoError(t, err)
		assert.Len(t, participants, 1)
	})

	t.Run("tickets link and unlink in one statement", func(t *testing.T) {
		ticket := models.Ticket{OwnerUsername: "alice", Price: decimal.NewFromInt(5), Type: models.TicketStudent, PurchaseDate: time.Now()}
		require.NoError(t, store.CreateTicket(ctx, &ticket))
		assert.Regexp(t, `^TICKET-[0-9A-F]{8}$`, ticket.Code)

		require.NoError(t, store.SetTicketsEvent(ctx, []uuid.UUID{ticket.ID}, &event.ID))
		linked, err := store.ListTicketsByEvent(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, linked, 1)

		require.NoError(t, store.SetTicketsEvent(ctx, []uuid.UUID{ticket.ID}, nil))
		found, err := store.FindTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Nil(t, found.EventID)
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Transaction(ctx, func(tx repositories.Store) error {
			if err := tx.DeleteParticipationsByEvent(ctx, event.ID); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		participants, err := store.ListParticipants(ctx, event.ID)
		require.NoError(t, err)
		assert.Len(t, participants, 1)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.FindEvent(ctx, uuid.New())
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

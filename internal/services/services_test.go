package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/auth"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakePhotoStorage struct {
	saved   map[string][]byte
	removed []string
	err     error
	next    int
}

func newFakePhotoStorage() *fakePhotoStorage {
	return &fakePhotoStorage{saved: map[string][]byte{}}
}

func (f *fakePhotoStorage) Save(r io.ReadSeeker, _ int64) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", "", err
	}
	f.next++
	name := "photo-" + string(rune('a'+f.next-1)) + ".png"
	f.saved[name] = buf.Bytes()
	return name, "image/png", nil
}

func (f *fakePhotoStorage) Remove(filename string) error {
	f.removed = append(f.removed, filename)
	delete(f.saved, filename)
	return nil
}

type testEnv struct {
	store    *repositories.MemoryStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	photos   *fakePhotoStorage
	users    *UserService
	events   *EventService
	tickets  *TicketService
	feedback *FeedbackService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repositories.NewMemoryStore()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)
	authService, err := NewAuthService(store, hasher, tokens)
	require.NoError(t, err)
	photos := newFakePhotoStorage()

	return &testEnv{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		photos:   photos,
		users:    NewUserService(store, hasher, photos, nil),
		events:   NewEventService(store, nil),
		tickets:  NewTicketService(store),
		feedback: NewFeedbackService(store),
		auth:     authService,
	}
}

func (e *testEnv) createUser(t *testing.T, username string, roles ...string) models.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
		Enabled:  true,
		Roles:    roles,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createEvent(t *testing.T, organizer *string, name string) models.Event {
	t.Helper()
	start := time.Date(2026, 11, 20, 19, 0, 0, 0, time.UTC)
	event, err := e.events.Create(context.Background(), auth.Identity{}, EventInput{
		Name:      name,
		Location:  "Jakarta",
		StartTime: start,
		EndTime:   start.Add(3 * time.Hour),
		Capacity:  100,
		Price:     decimal.RequireFromString("100000.00"),
		Organizer: organizer,
	})
	require.NoError(t, err)
	return event
}

func (e *testEnv) createTicket(t *testing.T, owner string) models.Ticket {
	t.Helper()
	ticket, err := e.tickets.Create(context.Background(), owner, TicketInput{
		Price: decimal.NewFromInt(50000),
		Type:  string(models.TicketStandard),
	})
	require.NoError(t, err)
	return ticket
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func strPtr(s string) *string { return &s }

var errStorage = errors.New("disk full")

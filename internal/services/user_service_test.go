package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "alice", "ROLE_ADMIN", "ROLE_ADMIN")
	assert.Equal(t, []string{"ROLE_ADMIN"}, user.RoleNames())
	assert.NotEqual(t, "password", user.Password)
	assert.True(t, env.hasher.Verify("password", user.Password))

	defaulted := env.createUser(t, "bob")
	assert.Equal(t, []string{"ROLE_PARTICIPANT"}, defaulted.RoleNames())

	_, err := env.users.Create(ctx, CreateUserInput{Username: "alice", Email: "x@example.com", Password: "p"})
	assert.ErrorIs(t, err, apperr.ErrUsernameAlreadyExists)

	_, err = env.users.Create(ctx, CreateUserInput{Username: "carol", Email: "alice@example.com", Password: "p"})
	assert.ErrorIs(t, err, apperr.ErrEmailAlreadyExists)
}

func TestUserServiceRejectsRolesWithoutPrefix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Create(ctx, CreateUserInput{
		Username: "alice", Email: "alice@example.com", Password: "p", Roles: []string{"ADMIN"},
	})
	requireKind(t, err, apperr.KindInvalidArgument)

	_, err = env.users.Get(ctx, "alice")
	requireKind(t, err, apperr.KindNotFound)

	env.createUser(t, "bob")
	_, err = env.users.AddRoles(ctx, "bob", []string{"ROLE_ORGANIZER", "organizer"})
	requireKind(t, err, apperr.KindInvalidArgument)

	user, err := env.users.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_PARTICIPANT"}, user.RoleNames())
}

func TestUserServiceRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")

	user, err := env.users.AddRoles(ctx, "alice", []string{"ROLE_ORGANIZER", "ROLE_PARTICIPANT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_ORGANIZER", "ROLE_PARTICIPANT"}, user.RoleNames())

	user, err = env.users.AddRoles(ctx, "alice", []string{"ROLE_ORGANIZER"})
	require.NoError(t, err)
	assert.Len(t, user.Roles, 2)

	_, err = env.users.AddRoles(ctx, "alice", nil)
	requireKind(t, err, apperr.KindInvalidArgument)

	_, err = env.users.RemoveRoles(ctx, "alice", []string{"ROLE_ADMIN"})
	requireKind(t, err, apperr.KindIllegalState)

	user, err = env.users.RemoveRoles(ctx, "alice", []string{"ROLE_ORGANIZER"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_PARTICIPANT"}, user.RoleNames())

	_, err = env.users.AddRoles(ctx, "nobody", []string{"ROLE_ADMIN"})
	requireKind(t, err, apperr.KindNotFound)
}

func TestUserServiceUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	original := env.createUser(t, "alice")
	env.createUser(t, "bob")

	updated, err := env.users.Update(ctx, "alice", UpdateUserInput{Email: "alice@new.example.com", Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", updated.Email)
	assert.False(t, updated.Enabled)
	assert.Equal(t, original.Password, updated.Password)

	updated, err = env.users.Update(ctx, "alice", UpdateUserInput{Email: "alice@new.example.com", Password: "changed", Enabled: true})
	require.NoError(t, err)
	assert.True(t, env.hasher.Verify("changed", updated.Password))

	_, err = env.users.Update(ctx, "alice", UpdateUserInput{Email: "bob@example.com", Enabled: true})
	assert.ErrorIs(t, err, apperr.ErrEmailAlreadyExists)
}

func TestUserServiceDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u", "ROLE_ORGANIZER")
	env.createUser(t, "other")

	e1 := env.createEvent(t, strPtr("u"), "Organized by U")
	e2 := env.createEvent(t, strPtr("other"), "Organized by someone else")
	t1 := env.createTicket(t, "u")
	otherTicket := env.createTicket(t, "other")
	_, err := env.events.AssignTickets(ctx, e1.ID, []uuid.UUID{otherTicket.ID})
	require.NoError(t, err)
	_, err = env.events.AddParticipants(ctx, e2.ID, []string{"u", "other"})
	require.NoError(t, err)
	fb, err := env.feedback.Create(ctx, e2.ID, FeedbackInput{Username: "u", Rating: 4})
	require.NoError(t, err)

	require.NoError(t, env.users.Delete(ctx, "u"))

	_, err = env.users.Get(ctx, "u")
	requireKind(t, err, apperr.KindNotFound)
	_, err = env.events.Get(ctx, e1.ID)
	requireKind(t, err, apperr.KindNotFound)
	_, err = env.store.FindTicket(ctx, t1.ID)
	requireKind(t, err, apperr.KindNotFound)
	// Tickets of the organized event go with it.
	_, err = env.store.FindTicket(ctx, otherTicket.ID)
	requireKind(t, err, apperr.KindNotFound)
	_, err = env.store.FindFeedback(ctx, fb.ID)
	requireKind(t, err, apperr.KindNotFound)

	_, err = env.events.Get(ctx, e2.ID)
	require.NoError(t, err)
	participants, err := env.events.ListParticipants(ctx, e2.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "other", participants[0].Username)

	err = env.users.Delete(ctx, "u")
	requireKind(t, err, apperr.KindNotFound)
}

func TestUserServiceDeleteKeepsPhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")

	user, err := env.users.UploadPhoto(ctx, "alice", bytes.NewReader([]byte("png")), 3)
	require.NoError(t, err)
	require.NotNil(t, user.PhotoFilename)

	require.NoError(t, env.users.Delete(ctx, "alice"))
	_, err = env.store.FindPhoto(ctx, *user.PhotoFilename)
	assert.NoError(t, err)
}

func TestUserServiceAssignTickets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")
	env.createUser(t, "bob")
	t1 := env.createTicket(t, "bob")
	t2 := env.createTicket(t, "alice")

	tickets, err := env.users.AssignTickets(ctx, "alice", []uuid.UUID{t1.ID, t2.ID})
	require.NoError(t, err)
	assert.Len(t, tickets, 2)

	_, err = env.users.AssignTickets(ctx, "bob", []uuid.UUID{t1.ID, uuid.New()})
	requireKind(t, err, apperr.KindNotFound)
	found, err := env.store.FindTicket(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.OwnerUsername)

	_, err = env.users.AssignTickets(ctx, "alice", []uuid.UUID{})
	requireKind(t, err, apperr.KindInvalidArgument)
}

func TestUserServicePhotos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	_, err := env.users.GetPhoto(ctx, "alice")
	requireKind(t, err, apperr.KindNotFound)
	_, err = env.users.RemovePhoto(ctx, "alice")
	requireKind(t, err, apperr.KindIllegalState)

	user, err := env.users.UploadPhoto(ctx, "alice", bytes.NewReader([]byte("png-bytes")), 9)
	require.NoError(t, err)
	require.NotNil(t, user.PhotoFilename)
	filename := *user.PhotoFilename

	photo, err := env.users.GetPhoto(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.ContentType)
	assert.EqualValues(t, 9, photo.Size)

	_, err = env.users.AssignPhoto(ctx, "bob", filename)
	assert.ErrorIs(t, err, apperr.ErrPhotoAlreadyAssigned)

	_, err = env.users.AssignPhoto(ctx, "alice", filename)
	require.NoError(t, err)

	_, err = env.users.RemovePhoto(ctx, "alice")
	require.NoError(t, err)
	_, err = env.store.FindPhoto(ctx, filename)
	require.NoError(t, err)

	user, err = env.users.AssignPhoto(ctx, "bob", filename)
	require.NoError(t, err)
	assert.Equal(t, filename, *user.PhotoFilename)

	_, err = env.users.AssignPhoto(ctx, "bob", "missing.png")
	requireKind(t, err, apperr.KindNotFound)
}

func TestUserServiceUploadFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")

	_, err := env.users.UploadPhoto(ctx, "nobody", bytes.NewReader([]byte("x")), 1)
	requireKind(t, err, apperr.KindNotFound)
	assert.Empty(t, env.photos.saved)

	env.photos.err = errStorage
	_, err = env.users.UploadPhoto(ctx, "alice", bytes.NewReader([]byte("x")), 1)
	assert.ErrorIs(t, err, errStorage)
}

func TestUserServiceEnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.users.EnsureAdmin(ctx, AdminInput{Username: "admin", Email: "admin@example.com", Password: "password"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.users.EnsureAdmin(ctx, AdminInput{Username: "admin", Email: "admin@example.com", Password: "password"})
	require.NoError(t, err)
	assert.False(t, created)

	user, err := env.users.Get(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, user.HasRole("ROLE_ADMIN"))
	assert.Equal(t, []string{"ROLE_ADMIN"}, models.RoleNames(user.Roles))
}

func TestUserServiceInputRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Create(ctx, CreateUserInput{Username: "a/b", Email: "ab@example.com", Password: "password"})
	requireKind(t, err, apperr.KindInvalidArgument)

	_, err = env.users.Create(ctx, CreateUserInput{
		Username: "long", Email: "long@example.com", Password: strings.Repeat("x", 80),
	})
	requireKind(t, err, apperr.KindInvalidArgument)

	user, err := env.users.Create(ctx, CreateUserInput{Username: "dave", Email: " Dave@Example.COM ", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "dave@example.com", user.Email)

	_, err = env.users.Create(ctx, CreateUserInput{Username: "dave2", Email: "DAVE@example.com", Password: "password"})
	assert.ErrorIs(t, err, apperr.ErrEmailAlreadyExists)

	updated, err := env.users.Update(ctx, "dave", UpdateUserInput{Email: "D.Ave@Example.com", Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, "d.ave@example.com", updated.Email)

	_, err = env.users.Update(ctx, "dave", UpdateUserInput{Email: "dave@example.com", Password: strings.Repeat("x", 80), Enabled: true})
	requireKind(t, err, apperr.KindInvalidArgument)
}

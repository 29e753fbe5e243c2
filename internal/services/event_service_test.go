package services

import (
	"context"
	"testing"
	"time"

	"github.com/farellandr/eventhub/internal/apperr"
	"github.com/farellandr/eventhub/internal/auth"
	"github.com/farellandr/eventhub/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "olga", "ROLE_ORGANIZER")
	start := time.Now().Add(time.Hour)

	input := EventInput{
		Name:      "Launch",
		Location:  "Bandung",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Capacity:  10,
		Price:     decimal.Zero,
	}

	organizer := auth.Identity{Subject: "olga", Authorities: auth.NewAuthoritySet("ROLE_ORGANIZER")}
	event, err := env.events.Create(ctx, organizer, input)
	require.NoError(t, err)
	require.NotNil(t, event.OrganizerUsername)
	assert.Equal(t, "olga", *event.OrganizerUsername)
	assert.NotEqual(t, uuid.Nil, event.ID)

	admin := auth.Identity{Subject: "root", Authorities: auth.NewAuthoritySet("ROLE_ADMIN")}
	event, err = env.events.Create(ctx, admin, input)
	require.NoError(t, err)
	assert.Nil(t, event.OrganizerUsername)

	input.Organizer = strPtr("ghost")
	_, err = env.events.Create(ctx, admin, input)
	requireKind(t, err, apperr.KindNotFound)

	input.Organizer = nil
	input.EndTime = start.Add(-time.Minute)
	_, err = env.events.Create(ctx, admin, input)
	requireKind(t, err, apperr.KindInvalidArgument)
}

func TestEventServiceUpdateKeepsOrganizer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "olga")
	event := env.createEvent(t, strPtr("olga"), "Launch")

	updated, err := env.events.Update(ctx, event.ID, EventInput{
		Name:      "Launch v2",
		Location:  "Surabaya",
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		Capacity:  500,
		Price:     decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", updated.Name)
	assert.Equal(t, 500, updated.Capacity)
	require.NotNil(t, updated.OrganizerUsername)
	assert.Equal(t, "olga", *updated.OrganizerUsername)
}

func TestEventServiceOrganizer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "olga")
	event := env.createEvent(t, nil, "Launch")

	_, err := env.events.RemoveOrganizer(ctx, event.ID)
	requireKind(t, err, apperr.KindIllegalState)

	updated, err := env.events.SetOrganizer(ctx, event.ID, "olga")
	require.NoError(t, err)
	assert.Equal(t, "olga", *updated.OrganizerUsername)

	_, err = env.events.SetOrganizer(ctx, event.ID, "ghost")
	requireKind(t, err, apperr.KindNotFound)

	updated, err = env.events.RemoveOrganizer(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.OrganizerUsername)
}

func TestEventServiceParticipants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")
	env.createUser(t, "bob")
	event := env.createEvent(t, nil, "Gig")

	participants, err := env.events.AddParticipants(ctx, event.ID, []string{"alice"})
	require.NoError(t, err)
	require.Len(t, participants, 1)

	participants, err = env.events.AddParticipants(ctx, event.ID, []string{"alice"})
	require.NoError(t, err)
	assert.Len(t, participants, 1, "adding a participant twice must not change the set")

	_, err = env.events.RemoveParticipants(ctx, event.ID, []string{"bob"})
	requireKind(t, err, apperr.KindIllegalState)

	_, err = env.events.AddParticipants(ctx, event.ID, []string{"bob", "ghost"})
	requireKind(t, err, apperr.KindNotFound)
	participants, err = env.events.ListParticipants(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1, "a failed batch must not link anyone")

	_, err = env.events.AddParticipants(ctx, event.ID, nil)
	requireKind(t, err, apperr.KindInvalidArgument)

	participants, err = env.events.RemoveParticipants(ctx, event.ID, []string{"alice"})
	require.NoError(t, err)
	assert.Empty(t, participants)

	_, err = env.events.RemoveParticipants(ctx, event.ID, []string{"alice"})
	requireKind(t, err, apperr.KindIllegalState)

	_, err = env.events.AddParticipants(ctx, uuid.New(), []string{"alice"})
	requireKind(t, err, apperr.KindNotFound)
}

func TestEventServiceAssignTicketsIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")
	event := env.createEvent(t, nil, "Gig")
	t1 := env.createTicket(t, "alice")
	t2 := uuid.New()

	_, err := env.events.AssignTickets(ctx, event.ID, []uuid.UUID{t1.ID, t2})
	requireKind(t, err, apperr.KindNotFound)
	assert.Contains(t, err.Error(), t2.String())

	found, err := env.store.FindTicket(ctx, t1.ID)
	require.NoError(t, err)
	assert.Nil(t, found.EventID, "T1 must not be linked after a failed batch")

	tickets, err := env.events.AssignTickets(ctx, event.ID, []uuid.UUID{t1.ID})
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	tickets, err = env.events.AssignTickets(ctx, event.ID, []uuid.UUID{t1.ID})
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestEventServiceRemoveTickets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")
	event := env.createEvent(t, nil, "Gig")
	t1 := env.createTicket(t, "alice")
	t2 := env.createTicket(t, "alice")

	_, err := env.events.AssignTickets(ctx, event.ID, []uuid.UUID{t1.ID})
	require.NoError(t, err)

	_, err = env.events.RemoveTickets(ctx, event.ID, []uuid.UUID{t1.ID, t2.ID})
	requireKind(t, err, apperr.KindIllegalState)
	linked, err := env.events.ListTickets(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 1)

	linked, err = env.events.RemoveTickets(ctx, event.ID, []uuid.UUID{t1.ID})
	require.NoError(t, err)
	assert.Empty(t, linked)

	// Unlinked tickets still exist.
	found, err := env.store.FindTicket(ctx, t1.ID)
	require.NoError(t, err)
	assert.Nil(t, found.EventID)
}

func TestEventServiceFeedbackLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")
	first := env.createEvent(t, nil, "First")
	second := env.createEvent(t, nil, "Second")

	fb, err := env.feedback.Create(ctx, first.ID, FeedbackInput{Username: "alice", Rating: 5, Comment: "great"})
	require.NoError(t, err)

	_, err = env.events.RemoveFeedback(ctx, second.ID, []uuid.UUID{fb.ID})
	requireKind(t, err, apperr.KindIllegalState)

	moved, err := env.events.AssignFeedback(ctx, second.ID, []uuid.UUID{fb.ID})
	require.NoError(t, err)
	require.Len(t, moved, 1)
	remaining, err := env.events.ListFeedback(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = env.events.AssignFeedback(ctx, second.ID, []uuid.UUID{uuid.New()})
	requireKind(t, err, apperr.KindNotFound)

	left, err := env.events.RemoveFeedback(ctx, second.ID, []uuid.UUID{fb.ID})
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = env.store.FindFeedback(ctx, fb.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestEventServiceDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "alice")
	event := env.createEvent(t, nil, "Gig")
	ticket := env.createTicket(t, "alice")
	_, err := env.events.AssignTickets(ctx, event.ID, []uuid.UUID{ticket.ID})
	require.NoError(t, err)
	fb, err := env.feedback.Create(ctx, event.ID, FeedbackInput{Username: "alice", Rating: 3})
	require.NoError(t, err)
	_, err = env.events.AddParticipants(ctx, event.ID, []string{"alice"})
	require.NoError(t, err)

	require.NoError(t, env.events.Delete(ctx, event.ID))

	_, err = env.events.Get(ctx, event.ID)
	requireKind(t, err, apperr.KindNotFound)
	_, err = env.store.FindTicket(ctx, ticket.ID)
	requireKind(t, err, apperr.KindNotFound)
	_, err = env.store.FindFeedback(ctx, fb.ID)
	requireKind(t, err, apperr.KindNotFound)
	_, err = env.users.Get(ctx, "alice")
	assert.NoError(t, err)
}

func TestEventServiceList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createEvent(t, nil, "One")
	env.createEvent(t, nil, "Two")

	events, total, err := env.events.List(ctx, repositories.EventFilter{Location: "jakarta"}, repositories.Page{Number: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, events, 1)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, _, err = env.events.List(ctx, repositories.EventFilter{From: &from, To: &to}, repositories.Page{})
	requireKind(t, err, apperr.KindInvalidArgument)
}

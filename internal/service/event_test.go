package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/kinshipapp/kinship-server/internal/errors"
)

func TestEventService_CreateEvent(t *testing.T) {
	env := setupTestEnv(t)
	contacts := env.contactService()
	svc := NewEventService(env.store, env.logger)
	owner := createTestOwner(t, env.store)
	other := createTestOwner(t, env.store)
	ctx := context.Background()

	maya, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Maya"})
	require.NoError(t, err)
	alan, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Alan"})
	require.NoError(t, err)

	start := time.Now().AddDate(0, 0, 7)

	t.Run("creates event with contact links", func(t *testing.T) {
		event, err := svc.CreateEvent(ctx, owner.ID, EventRequest{
			Title:      "Reunion dinner",
			Location:   "Luigi's",
			StartDate:  start,
			ContactIDs: []string{maya.ID, alan.ID},
		})
		require.NoError(t, err)

		assert.NotEmpty(t, event.ID)
		require.Len(t, event.Contacts, 2)
	})

	t.Run("rejects unknown contact before writing anything", func(t *testing.T) {
		before, err := svc.ListEvents(ctx, owner.ID)
		require.NoError(t, err)

		_, err = svc.CreateEvent(ctx, owner.ID, EventRequest{
			Title:      "Ghost party",
			StartDate:  start,
			ContactIDs: []string{"con-missing"},
		})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

		after, err := svc.ListEvents(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("rejects another owner's contact", func(t *testing.T) {
		_, err := svc.CreateEvent(ctx, other.ID, EventRequest{
			Title:      "Borrowed friends",
			StartDate:  start,
			ContactIDs: []string{maya.ID},
		})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	})

	t.Run("rejects end before start", func(t *testing.T) {
		end := start.AddDate(0, 0, -1)
		_, err := svc.CreateEvent(ctx, owner.ID, EventRequest{
			Title:     "Time traveler meetup",
			StartDate: start,
			EndDate:   &end,
		})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	env := setupTestEnv(t)
	contacts := env.contactService()
	svc := NewEventService(env.store, env.logger)
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	maya, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Maya"})
	require.NoError(t, err)
	alan, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Alan"})
	require.NoError(t, err)

	start := time.Now().AddDate(0, 0, 3)
	event, err := svc.CreateEvent(ctx, owner.ID, EventRequest{
		Title:      "Coffee",
		StartDate:  start,
		ContactIDs: []string{maya.ID},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateEvent(ctx, owner.ID, event.ID, EventRequest{
		Title:      "Coffee and cake",
		StartDate:  start.AddDate(0, 0, 1),
		ContactIDs: []string{alan.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Coffee and cake", updated.Title)
	require.Len(t, updated.Contacts, 1)
	assert.Equal(t, alan.ID, updated.Contacts[0].ID)
}

func TestEventService_ListUpcomingEvents(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewEventService(env.store, env.logger)
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	now := time.Now()
	for _, offset := range []int{-7, 2, 30} {
		_, err := svc.CreateEvent(ctx, owner.ID, EventRequest{
			Title:     "Event",
			StartDate: now.AddDate(0, 0, offset),
		})
		require.NoError(t, err)
	}

	upcoming, err := svc.ListUpcomingEvents(ctx, owner.ID, now, 10)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.True(t, upcoming[0].StartDate.Before(upcoming[1].StartDate))
	for _, e := range upcoming {
		assert.NotNil(t, e.Contacts)
	}
}

func TestEventService_DeleteEvent(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewEventService(env.store, env.logger)
	owner := createTestOwner(t, env.store)
	other := createTestOwner(t, env.store)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, owner.ID, EventRequest{
		Title:     "Doomed",
		StartDate: time.Now(),
	})
	require.NoError(t, err)

	t.Run("other owners cannot delete it", func(t *testing.T) {
		err := svc.DeleteEvent(ctx, other.ID, event.ID)
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	})

	t.Run("owner can delete it", func(t *testing.T) {
		require.NoError(t, svc.DeleteEvent(ctx, owner.ID, event.ID))

		_, err := svc.GetEvent(ctx, owner.ID, event.ID)
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	})
}

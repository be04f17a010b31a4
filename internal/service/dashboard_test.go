package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_GetDashboard(t *testing.T) {
	env := setupTestEnv(t)
	contacts := env.contactService()
	events := NewEventService(env.store, env.logger)
	svc := NewDashboardService(env.store, events, env.logger)
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	now := time.Now()
	monthly := 1

	// Overdue: last contact four months ago on a monthly reminder.
	overdue, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{
		FirstName: "Overdue",
		Tags:      []string{"friends"},
	})
	require.NoError(t, err)
	_, err = contacts.RecordInteraction(ctx, owner.ID, overdue.ID, RecordInteractionRequest{
		ContactDate:       now.AddDate(0, -4, 0),
		ContactType:       "call",
		FrequencyOverride: &monthly,
	})
	require.NoError(t, err)

	// Soon: contacted three weeks ago, due again in about a week.
	soon, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{
		FirstName: "Soon",
	})
	require.NoError(t, err)
	_, err = contacts.RecordInteraction(ctx, owner.ID, soon.ID, RecordInteractionRequest{
		ContactDate:       now.AddDate(0, 0, -21),
		ContactType:       "text",
		FrequencyOverride: &monthly,
	})
	require.NoError(t, err)

	// Far: just contacted, not due for three months.
	far, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{
		FirstName: "Far",
	})
	require.NoError(t, err)
	_, err = contacts.RecordInteraction(ctx, owner.ID, far.ID, RecordInteractionRequest{
		ContactDate: now,
		ContactType: "meetup",
	})
	require.NoError(t, err)

	// Never contacted, no schedule.
	_, err = contacts.CreateContact(ctx, owner.ID, CreateContactRequest{
		FirstName: "Untouched",
	})
	require.NoError(t, err)

	_, err = events.CreateEvent(ctx, owner.ID, EventRequest{
		Title:      "Birthday dinner",
		StartDate:  now.AddDate(0, 0, 5),
		ContactIDs: []string{overdue.ID},
	})
	require.NoError(t, err)

	dashboard, err := svc.GetDashboard(ctx, owner.ID, now)
	require.NoError(t, err)

	require.Len(t, dashboard.DueContacts, 1)
	assert.Equal(t, "Overdue", dashboard.DueContacts[0].FirstName)
	require.Len(t, dashboard.DueContacts[0].Tags, 1)

	require.Len(t, dashboard.UpcomingContacts, 1)
	assert.Equal(t, "Soon", dashboard.UpcomingContacts[0].FirstName)

	// Recent contacts ordered by most recent interaction.
	require.NotEmpty(t, dashboard.RecentContacts)
	assert.Equal(t, "Far", dashboard.RecentContacts[0].FirstName)

	require.Len(t, dashboard.PopularTags, 1)
	assert.Equal(t, "friends", dashboard.PopularTags[0].Slug)

	require.Len(t, dashboard.UpcomingEvents, 1)
	assert.Equal(t, "Birthday dinner", dashboard.UpcomingEvents[0].Title)
	require.Len(t, dashboard.UpcomingEvents[0].Contacts, 1)
}

func TestDashboardService_ListDueContacts(t *testing.T) {
	env := setupTestEnv(t)
	contacts := env.contactService()
	events := NewEventService(env.store, env.logger)
	svc := NewDashboardService(env.store, events, env.logger)
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	now := time.Now()
	monthly := 1

	mostOverdue, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Ancient"})
	require.NoError(t, err)
	_, err = contacts.RecordInteraction(ctx, owner.ID, mostOverdue.ID, RecordInteractionRequest{
		ContactDate:       now.AddDate(0, -6, 0),
		ContactType:       "call",
		FrequencyOverride: &monthly,
	})
	require.NoError(t, err)

	slightlyOverdue, err := contacts.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Recent"})
	require.NoError(t, err)
	_, err = contacts.RecordInteraction(ctx, owner.ID, slightlyOverdue.ID, RecordInteractionRequest{
		ContactDate:       now.AddDate(0, -2, 0),
		ContactType:       "call",
		FrequencyOverride: &monthly,
	})
	require.NoError(t, err)

	due, err := svc.ListDueContacts(ctx, owner.ID, now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Soonest reminder date first, so the most overdue contact leads.
	assert.Equal(t, "Ancient", due[0].FirstName)
	assert.Equal(t, "Recent", due[1].FirstName)
}

func TestDashboardService_EmptyState(t *testing.T) {
	env := setupTestEnv(t)
	events := NewEventService(env.store, env.logger)
	svc := NewDashboardService(env.store, events, env.logger)
	owner := createTestOwner(t, env.store)

	dashboard, err := svc.GetDashboard(context.Background(), owner.ID, time.Now())
	require.NoError(t, err)

	assert.Empty(t, dashboard.DueContacts)
	assert.Empty(t, dashboard.UpcomingContacts)
	assert.Empty(t, dashboard.RecentContacts)
	assert.Empty(t, dashboard.PopularTags)
	assert.Empty(t, dashboard.UpcomingEvents)
	assert.NotNil(t, dashboard.DueContacts)
}

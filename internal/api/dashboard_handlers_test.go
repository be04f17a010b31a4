package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordInteractionAt logs an interaction with reset_reminder so the
// contact's next reminder lands at contactDate plus its cadence.
func recordInteractionAt(t *testing.T, ts *apiTestServer, token, contactID string, contactDate time.Time) {
	t.Helper()

	resp := ts.api.Post("/api/v1/contacts/"+contactID+"/interactions", "Authorization: Bearer "+token, map[string]any{
		"contact_date":   contactDate,
		"contact_type":   "call",
		"reset_reminder": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestDashboard(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	// Due: reminder landed five months ago.
	dueID := ts.createTestContact(t, token, map[string]any{
		"first_name":                "Overdue",
		"reminder_frequency_months": 1,
		"tags":                      []string{"Friend"},
	})
	recordInteractionAt(t, ts, token, dueID, time.Now().AddDate(0, -6, 0))

	// Upcoming: contacted three weeks ago on a monthly cadence, so the
	// reminder falls inside the two week window.
	upcomingID := ts.createTestContact(t, token, map[string]any{
		"first_name":                "Soon",
		"reminder_frequency_months": 1,
	})
	recordInteractionAt(t, ts, token, upcomingID, time.Now().AddDate(0, 0, -21))

	// Not scheduled at all.
	ts.createTestContact(t, token, map[string]any{"first_name": "Quiet"})

	resp := ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"title":      "Coffee",
		"start_date": time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/dashboard", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[DashboardResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.DueContacts, 1)
	assert.Equal(t, dueID, envelope.Data.DueContacts[0].ID)
	assert.Len(t, envelope.Data.DueContacts[0].Tags, 1)

	require.Len(t, envelope.Data.UpcomingContacts, 1)
	assert.Equal(t, upcomingID, envelope.Data.UpcomingContacts[0].ID)

	assert.NotEmpty(t, envelope.Data.RecentContacts)
	assert.NotEmpty(t, envelope.Data.PopularTags)

	require.Len(t, envelope.Data.UpcomingEvents, 1)
	assert.Equal(t, "Coffee", envelope.Data.UpcomingEvents[0].Title)
}

func TestDashboardEmpty(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	resp := ts.api.Get("/api/v1/dashboard", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[DashboardResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Empty(t, envelope.Data.DueContacts)
	assert.Empty(t, envelope.Data.UpcomingContacts)
	assert.Empty(t, envelope.Data.RecentContacts)
	assert.Empty(t, envelope.Data.UpcomingEvents)
}

func TestListDueContacts(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	laterID := ts.createTestContact(t, token, map[string]any{
		"first_name":                "Later",
		"reminder_frequency_months": 1,
	})
	recordInteractionAt(t, ts, token, laterID, time.Now().AddDate(0, -2, 0))

	soonerID := ts.createTestContact(t, token, map[string]any{
		"first_name":                "Sooner",
		"reminder_frequency_months": 1,
	})
	recordInteractionAt(t, ts, token, soonerID, time.Now().AddDate(0, -4, 0))

	resp := ts.api.Get("/api/v1/dashboard/due", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ListContactsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Contacts, 2)

	// Soonest reminder first.
	assert.Equal(t, soonerID, envelope.Data.Contacts[0].ID)
	assert.Equal(t, laterID, envelope.Data.Contacts[1].ID)
}

func TestListDueContactsAsOfCutoff(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	// Contacted two weeks ago at a one month cadence, so the reminder
	// lands about two weeks from now.
	contactID := ts.createTestContact(t, token, map[string]any{
		"first_name":                "Pending",
		"reminder_frequency_months": 1,
	})
	recordInteractionAt(t, ts, token, contactID, time.Now().AddDate(0, 0, -14))

	resp := ts.api.Get("/api/v1/dashboard/due", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ListContactsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Contacts)

	// A delivery job querying a month ahead sees the contact as due.
	cutoff := url.QueryEscape(time.Now().AddDate(0, 1, 0).Format(time.RFC3339))
	resp = ts.api.Get("/api/v1/dashboard/due?as_of="+cutoff, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope = testEnvelope[ListContactsResponse]{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Contacts, 1)
	assert.Equal(t, contactID, envelope.Data.Contacts[0].ID)
}

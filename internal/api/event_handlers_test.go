package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEvent(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	contactID := ts.createTestContact(t, token, map[string]any{"first_name": "Ada"})

	start := time.Now().Add(48 * time.Hour)
	resp := ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"title":            "Birthday dinner",
		"description":      "Table for four",
		"location":         "Luigi's",
		"start_date":       start,
		"reminder_minutes": 60,
		"contact_ids":      []string{contactID},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[EventResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, "Birthday dinner", envelope.Data.Title)
	require.NotNil(t, envelope.Data.ReminderMinutes)
	assert.Equal(t, 60, *envelope.Data.ReminderMinutes)
	require.Len(t, envelope.Data.Contacts, 1)
	assert.Equal(t, contactID, envelope.Data.Contacts[0].ID)
}

func TestCreateEventValidation(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	// Missing title is rejected by the request schema.
	resp := ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"start_date": time.Now(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	// End before start
	start := time.Now().Add(24 * time.Hour)
	end := start.Add(-time.Hour)
	resp = ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"title":      "Backwards",
		"start_date": start,
		"end_date":   end,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestCreateEventUnknownContact(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	resp := ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"title":       "Ghost party",
		"start_date":  time.Now().Add(time.Hour),
		"contact_ids": []string{"con_missing"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestListEvents(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	for _, title := range []string{"One", "Two"} {
		resp := ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
			"title":      title,
			"start_date": time.Now().Add(time.Hour),
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/events", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ListEventsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Events, 2)
}

func TestListUpcomingEventsSkipsPast(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	resp := ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"title":      "Long gone",
		"start_date": time.Now().Add(-72 * time.Hour),
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"title":      "Soon",
		"start_date": time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/events/upcoming", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ListEventsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Events, 1)
	assert.Equal(t, "Soon", envelope.Data.Events[0].Title)
}

func TestUpdateEvent(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	start := time.Now().Add(time.Hour)
	resp := ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"title":      "Draft",
		"start_date": start,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var created testEnvelope[EventResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	resp = ts.api.Put("/api/v1/events/"+created.Data.ID, "Authorization: Bearer "+token, map[string]any{
		"title":      "Final",
		"location":   "Office",
		"start_date": start,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated testEnvelope[EventResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))

	assert.Equal(t, "Final", updated.Data.Title)
	assert.Equal(t, "Office", updated.Data.Location)
}

func TestDeleteEvent(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t)

	resp := ts.api.Post("/api/v1/events", "Authorization: Bearer "+token, map[string]any{
		"title":      "Doomed",
		"start_date": time.Now().Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var created testEnvelope[EventResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	resp = ts.api.Delete("/api/v1/events/"+created.Data.ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/events/"+created.Data.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

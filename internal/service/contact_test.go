package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinshipapp/kinship-server/internal/domain"
	domainerrors "github.com/kinshipapp/kinship-server/internal/errors"
)

func TestContactService_CreateContact(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.contactService()
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	t.Run("creates contact with defaults and tags", func(t *testing.T) {
		result, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{
			FirstName: "Maya",
			LastName:  "Okafor",
			Company:   "Acme",
			Tags:      []string{"College Friends", "book club"},
		})
		require.NoError(t, err)

		assert.NotEmpty(t, result.ID)
		assert.Equal(t, owner.ID, result.OwnerID)
		assert.Equal(t, domain.DefaultReminderFrequencyMonths, result.ReminderFrequencyMonths)
		assert.Equal(t, domain.TrendStable, result.ContactTrend)
		assert.Nil(t, result.NextContactDate)

		require.Len(t, result.Tags, 2)
		slugs := []string{result.Tags[0].Slug, result.Tags[1].Slug}
		assert.Contains(t, slugs, "college-friends")
		assert.Contains(t, slugs, "book-club")
	})

	t.Run("new contact is searchable", func(t *testing.T) {
		_, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{
			FirstName: "Zelda",
			LastName:  "Quintero",
		})
		require.NoError(t, err)

		result, err := env.searchService().Search(ctx, owner.ID, "zelda", nil, 0, 0)
		require.NoError(t, err)
		require.NotEmpty(t, result.Hits)
		assert.Equal(t, "Zelda Quintero", result.Hits[0].Name)
	})

	t.Run("rejects missing first name", func(t *testing.T) {
		_, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{
			LastName: "Nameless",
		})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	})

	t.Run("converts html notes to markdown", func(t *testing.T) {
		result, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{
			FirstName: "Noted",
			Notes:     "<p>Met at <strong>the conference</strong></p>",
		})
		require.NoError(t, err)
		assert.Contains(t, result.Notes, "**the conference**")
		assert.NotContains(t, result.Notes, "<p>")
	})
}

func TestContactService_GetContact(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.contactService()
	owner := createTestOwner(t, env.store)
	other := createTestOwner(t, env.store)
	ctx := context.Background()

	created, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{
		FirstName: "Maya",
		Tags:      []string{"friends"},
	})
	require.NoError(t, err)

	t.Run("returns full detail", func(t *testing.T) {
		detail, err := svc.GetContact(ctx, owner.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Maya", detail.FirstName)
		require.Len(t, detail.Tags, 1)
		assert.NotNil(t, detail.Logs)
		assert.Empty(t, detail.Logs)
	})

	t.Run("other owners cannot see it", func(t *testing.T) {
		_, err := svc.GetContact(ctx, other.ID, created.ID)
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	})
}

func TestContactService_UpdateContact(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.contactService()
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	created, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{
		FirstName: "Maya",
		Company:   "Acme",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateContact(ctx, owner.ID, created.ID, UpdateContactRequest{
		FirstName:               "Maya",
		LastName:                "Okafor",
		Company:                 "Initech",
		ReminderFrequencyMonths: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, "Okafor", updated.LastName)
	assert.Equal(t, "Initech", updated.Company)
	assert.Equal(t, 6, updated.ReminderFrequencyMonths)

	// Search reflects the new company.
	result, err := env.searchService().Search(ctx, owner.ID, "initech", nil, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, created.ID, result.Hits[0].ID)
}

func TestContactService_RecordInteraction(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.contactService()
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	newContact := func(t *testing.T) *domain.ContactWithTags {
		t.Helper()
		c, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Maya"})
		require.NoError(t, err)
		return c
	}

	t.Run("first interaction schedules next reminder", func(t *testing.T) {
		c := newContact(t)
		contactDate := time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)

		updated, err := svc.RecordInteraction(ctx, owner.ID, c.ID, RecordInteractionRequest{
			ContactDate: contactDate,
			ContactType: "call",
			GotResponse: true,
		})
		require.NoError(t, err)

		require.NotNil(t, updated.LastContactDate)
		assert.True(t, updated.LastContactDate.Equal(contactDate))
		require.NotNil(t, updated.LastResponseDate)

		// Jan 31 + 3 months clamps to Apr 30.
		require.NotNil(t, updated.NextContactDate)
		assert.Equal(t, time.April, updated.NextContactDate.Month())
		assert.Equal(t, 30, updated.NextContactDate.Day())

		require.NotNil(t, updated.MetricsUpdatedAt)

		logs, err := svc.ListInteractions(ctx, owner.ID, c.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "call", logs[0].ContactType)
	})

	t.Run("interaction logged now with response scores 85", func(t *testing.T) {
		c := newContact(t)

		updated, err := svc.RecordInteraction(ctx, owner.ID, c.ID, RecordInteractionRequest{
			ContactDate: time.Now(),
			ContactType: "meetup",
			GotResponse: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 85, updated.RelationshipScore)
	})

	t.Run("explicit no-reset leaves the schedule untouched", func(t *testing.T) {
		c := newContact(t)
		noReset := false

		updated, err := svc.RecordInteraction(ctx, owner.ID, c.ID, RecordInteractionRequest{
			ContactDate:   time.Now().AddDate(0, 0, -2),
			ContactType:   "text",
			ResetReminder: &noReset,
		})
		require.NoError(t, err)
		assert.Nil(t, updated.NextContactDate)
		assert.NotNil(t, updated.LastContactDate)
	})

	t.Run("frequency override persists", func(t *testing.T) {
		c := newContact(t)
		override := 1

		updated, err := svc.RecordInteraction(ctx, owner.ID, c.ID, RecordInteractionRequest{
			ContactDate:       time.Now(),
			ContactType:       "call",
			FrequencyOverride: &override,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.ReminderFrequencyMonths)
	})

	t.Run("rejects zero contact date", func(t *testing.T) {
		c := newContact(t)

		_, err := svc.RecordInteraction(ctx, owner.ID, c.ID, RecordInteractionRequest{
			ContactType: "call",
		})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

		logs, err := svc.ListInteractions(ctx, owner.ID, c.ID)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("unknown contact", func(t *testing.T) {
		_, err := svc.RecordInteraction(ctx, owner.ID, "con-missing", RecordInteractionRequest{
			ContactDate: time.Now(),
			ContactType: "call",
		})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	})
}

func TestContactService_DeleteInteraction(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.contactService()
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	c, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Maya"})
	require.NoError(t, err)

	_, err = svc.RecordInteraction(ctx, owner.ID, c.ID, RecordInteractionRequest{
		ContactDate: time.Now().AddDate(0, 0, -1),
		ContactType: "call",
		GotResponse: true,
	})
	require.NoError(t, err)

	logs, err := svc.ListInteractions(ctx, owner.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	require.NoError(t, svc.DeleteInteraction(ctx, owner.ID, c.ID, logs[0].ID))

	// Derived metrics reset when the last log goes away.
	detail, err := svc.GetContact(ctx, owner.ID, c.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Logs)
	assert.Equal(t, 0, detail.RelationshipScore)
	assert.Equal(t, 0, detail.ContactFrequencyDays)
	assert.Equal(t, domain.TrendStable, detail.ContactTrend)
}

func TestContactService_DeleteContact(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.contactService()
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	c, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{
		FirstName: "Maya",
		LastName:  "Okafor",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContact(ctx, owner.ID, c.ID))

	_, err = svc.GetContact(ctx, owner.ID, c.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	// Gone from search too.
	result, err := env.searchService().Search(ctx, owner.ID, "maya", nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestContactService_Avatar(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.contactService()
	owner := createTestOwner(t, env.store)
	ctx := context.Background()

	c, err := svc.CreateContact(ctx, owner.ID, CreateContactRequest{FirstName: "Maya"})
	require.NoError(t, err)

	data := testAvatarPNG(t)

	t.Run("upload sets path and blurhash", func(t *testing.T) {
		updated, err := svc.UploadAvatar(ctx, owner.ID, c.ID, data)
		require.NoError(t, err)
		assert.NotEmpty(t, updated.AvatarPath)
		assert.NotEmpty(t, updated.AvatarBlurhash)
	})

	t.Run("get returns stored bytes with etag", func(t *testing.T) {
		got, etag, err := svc.GetAvatar(ctx, owner.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.NotEmpty(t, etag)
	})

	t.Run("rejects garbage upload", func(t *testing.T) {
		_, err := svc.UploadAvatar(ctx, owner.ID, c.ID, []byte("not an image"))
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	})

	t.Run("delete clears avatar", func(t *testing.T) {
		require.NoError(t, svc.DeleteAvatar(ctx, owner.ID, c.ID))

		_, _, err := svc.GetAvatar(ctx, owner.ID, c.ID)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	domainerrors "github.com/kinshipapp/kinship-server/internal/errors"
	"github.com/kinshipapp/kinship-server/internal/id"
	"github.com/kinshipapp/kinship-server/internal/media/avatars"
	"github.com/kinshipapp/kinship-server/internal/relationship"
	"github.com/kinshipapp/kinship-server/internal/search"
	"github.com/kinshipapp/kinship-server/internal/store"
	"github.com/kinshipapp/kinship-server/internal/util"
)

// ContactService orchestrates contact CRUD, interaction logging, and the
// derived relationship metrics that follow from the log history.
type ContactService struct {
	store   store.Store
	index   *search.SearchIndex
	avatars *avatars.Processor
	logger  *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(
	store store.Store,
	index *search.SearchIndex,
	avatarProcessor *avatars.Processor,
	logger *slog.Logger,
) *ContactService {
	return &ContactService{
		store:   store,
		index:   index,
		avatars: avatarProcessor,
		logger:  logger,
	}
}

// CreateContactRequest contains the data for a new contact.
type CreateContactRequest struct {
	FirstName               string     `json:"first_name" validate:"required,max=100"`
	LastName                string     `json:"last_name" validate:"max=100"`
	Nickname                string     `json:"nickname" validate:"max=100"`
	Company                 string     `json:"company" validate:"max=200"`
	JobTitle                string     `json:"job_title" validate:"max=200"`
	Email                   string     `json:"email" validate:"omitempty,email"`
	Phone                   string     `json:"phone" validate:"max=50"`
	Notes                   string     `json:"notes"`
	Birthday                *time.Time `json:"birthday"`
	ReminderFrequencyMonths int        `json:"reminder_frequency_months" validate:"omitempty,min=1,max=120"`
	Tags                    []string   `json:"tags"`
}

// UpdateContactRequest contains the replacement profile for an existing
// contact. Schedule and derived metric fields are managed by the server
// and cannot be set here.
type UpdateContactRequest struct {
	FirstName               string     `json:"first_name" validate:"required,max=100"`
	LastName                string     `json:"last_name" validate:"max=100"`
	Nickname                string     `json:"nickname" validate:"max=100"`
	Company                 string     `json:"company" validate:"max=200"`
	JobTitle                string     `json:"job_title" validate:"max=200"`
	Email                   string     `json:"email" validate:"omitempty,email"`
	Phone                   string     `json:"phone" validate:"max=50"`
	Notes                   string     `json:"notes"`
	Birthday                *time.Time `json:"birthday"`
	ReminderFrequencyMonths int        `json:"reminder_frequency_months" validate:"omitempty,min=1,max=120"`
}

// RecordInteractionRequest describes one logged interaction with a contact.
//
// ResetReminder and FrequencyOverride parameterize the scheduling side
// effect of the write and are not stored on the log. ResetReminder left
// nil means true: logging contact normally restarts the reminder clock,
// and only an explicit false backfills history without rescheduling.
type RecordInteractionRequest struct {
	ContactDate       time.Time  `json:"contact_date" validate:"required"`
	ContactType       string     `json:"contact_type" validate:"required,max=50"`
	Notes             string     `json:"notes"`
	GotResponse       bool       `json:"got_response"`
	ResponseDate      *time.Time `json:"response_date"`
	ResetReminder     *bool      `json:"reset_reminder"`
	FrequencyOverride *int       `json:"frequency_override" validate:"omitempty,min=1,max=120"`
}

// CreateContact creates a contact with optional initial tags.
func (s *ContactService) CreateContact(ctx context.Context, ownerID string, req CreateContactRequest) (*domain.ContactWithTags, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	contactID, err := id.Generate(id.PrefixContact)
	if err != nil {
		return nil, fmt.Errorf("generate contact ID: %w", err)
	}

	frequency := req.ReminderFrequencyMonths
	if frequency == 0 {
		frequency = domain.DefaultReminderFrequencyMonths
	}

	contact := &domain.Contact{
		Entity: domain.Entity{
			ID: contactID,
		},
		OwnerID:                 ownerID,
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		Nickname:                req.Nickname,
		Company:                 req.Company,
		JobTitle:                req.JobTitle,
		Email:                   req.Email,
		Phone:                   req.Phone,
		Notes:                   util.NormalizeNotes(req.Notes),
		Birthday:                req.Birthday,
		ReminderFrequencyMonths: frequency,
		ContactTrend:            domain.TrendStable,
	}
	contact.InitTimestamps()

	if err := s.store.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	tags, err := s.applyTags(ctx, contact, req.Tags)
	if err != nil {
		return nil, err
	}

	s.reindex(contact, tags)

	if s.logger != nil {
		s.logger.Info("Contact created",
			"contact_id", contactID,
			"owner_id", ownerID,
		)
	}

	return &domain.ContactWithTags{Contact: *contact, Tags: tags}, nil
}

// GetContact returns the full aggregate view of one contact.
func (s *ContactService) GetContact(ctx context.Context, ownerID, contactID string) (*domain.ContactDetail, error) {
	if _, err := s.ownedContact(ctx, ownerID, contactID); err != nil {
		return nil, err
	}

	detail, err := s.store.GetContactDetail(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("get contact detail: %w", err)
	}
	return detail, nil
}

// ListContacts returns all of the owner's contacts with their tags.
func (s *ContactService) ListContacts(ctx context.Context, ownerID string) ([]domain.ContactWithTags, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return s.store.HydrateContacts(ctx, contacts)
}

// UpdateContact replaces a contact's profile fields.
func (s *ContactService) UpdateContact(ctx context.Context, ownerID, contactID string, req UpdateContactRequest) (*domain.ContactWithTags, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	contact, err := s.ownedContact(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Nickname = req.Nickname
	contact.Company = req.Company
	contact.JobTitle = req.JobTitle
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Notes = util.NormalizeNotes(req.Notes)
	contact.Birthday = req.Birthday
	if req.ReminderFrequencyMonths != 0 {
		contact.ReminderFrequencyMonths = req.ReminderFrequencyMonths
	}
	contact.Touch()

	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}

	tags, err := s.contactTags(ctx, contactID)
	if err != nil {
		return nil, err
	}

	s.reindex(contact, tags)

	return &domain.ContactWithTags{Contact: *contact, Tags: tags}, nil
}

// DeleteContact removes a contact, its logs, tag links, event links,
// search document, and stored avatar.
func (s *ContactService) DeleteContact(ctx context.Context, ownerID, contactID string) error {
	if _, err := s.ownedContact(ctx, ownerID, contactID); err != nil {
		return err
	}

	if err := s.store.DeleteContact(ctx, contactID); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if s.index != nil {
		if err := s.index.DeleteContact(contactID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to remove contact from search index",
				"contact_id", contactID,
				"error", err,
			)
		}
	}

	if s.avatars != nil {
		if err := s.avatars.Remove(contactID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to remove contact avatar",
				"contact_id", contactID,
				"error", err,
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("Contact deleted",
			"contact_id", contactID,
			"owner_id", ownerID,
		)
	}

	return nil
}

// RecordInteraction logs an interaction, reschedules the reminder when
// requested, and recomputes the contact's derived metrics. The log and the
// contact update are persisted in a single transaction, so either both land
// or neither does.
func (s *ContactService) RecordInteraction(ctx context.Context, ownerID, contactID string, req RecordInteractionRequest) (*domain.Contact, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	contact, err := s.ownedContact(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	logs, err := s.store.ListContactLogs(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("list contact logs: %w", err)
	}

	logID, err := id.Generate(id.PrefixLog)
	if err != nil {
		return nil, fmt.Errorf("generate log ID: %w", err)
	}

	entry := domain.ContactLog{
		ID:           logID,
		ContactID:    contactID,
		ContactDate:  req.ContactDate,
		ContactType:  req.ContactType,
		Notes:        util.NormalizeNotes(req.Notes),
		GotResponse:  req.GotResponse,
		ResponseDate: req.ResponseDate,
		CreatedAt:    time.Now(),
	}

	opts := relationship.ScheduleOptions{
		ResetReminder:     req.ResetReminder == nil || *req.ResetReminder,
		FrequencyOverride: req.FrequencyOverride,
	}
	if err := relationship.ApplyInteraction(contact, entry, opts); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	now := time.Now()
	if derived, ok := relationship.Recompute(append(logs, entry), contact.ReminderFrequencyMonths, now); ok {
		contact.RelationshipScore = derived.RelationshipScore
		contact.ContactFrequencyDays = derived.ContactFrequencyDays
		contact.ContactTrend = derived.ContactTrend
		contact.MetricsUpdatedAt = &now
	}
	contact.Touch()

	if err := s.store.RecordInteraction(ctx, contact, &entry); err != nil {
		return nil, fmt.Errorf("record interaction: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Interaction recorded",
			"contact_id", contactID,
			"log_id", logID,
			"type", entry.ContactType,
			"score", contact.RelationshipScore,
		)
	}

	return contact, nil
}

// ListInteractions returns a contact's log history, oldest first.
func (s *ContactService) ListInteractions(ctx context.Context, ownerID, contactID string) ([]domain.ContactLog, error) {
	if _, err := s.ownedContact(ctx, ownerID, contactID); err != nil {
		return nil, err
	}
	return s.store.ListContactLogs(ctx, contactID)
}

// DeleteInteraction removes a log entry and recomputes the contact's
// derived metrics from the remaining history. When the last log is
// deleted, the derived fields reset to their defaults. The log delete
// and the contact update commit in one transaction, like the insert
// path.
func (s *ContactService) DeleteInteraction(ctx context.Context, ownerID, contactID, logID string) error {
	contact, err := s.ownedContact(ctx, ownerID, contactID)
	if err != nil {
		return err
	}

	entry, err := s.store.GetContactLogByID(ctx, logID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("interaction log not found")
		}
		return fmt.Errorf("get contact log: %w", err)
	}
	if entry.ContactID != contactID {
		return domainerrors.NotFound("interaction log not found")
	}

	logs, err := s.store.ListContactLogs(ctx, contactID)
	if err != nil {
		return fmt.Errorf("list contact logs: %w", err)
	}

	remaining := make([]domain.ContactLog, 0, len(logs))
	for _, l := range logs {
		if l.ID != logID {
			remaining = append(remaining, l)
		}
	}

	now := time.Now()
	if derived, ok := relationship.Recompute(remaining, contact.ReminderFrequencyMonths, now); ok {
		contact.RelationshipScore = derived.RelationshipScore
		contact.ContactFrequencyDays = derived.ContactFrequencyDays
		contact.ContactTrend = derived.ContactTrend
	} else {
		contact.RelationshipScore = 0
		contact.ContactFrequencyDays = 0
		contact.ContactTrend = domain.TrendStable
	}
	contact.MetricsUpdatedAt = &now
	contact.Touch()

	if err := s.store.DeleteInteraction(ctx, contact, logID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("interaction log not found")
		}
		return fmt.Errorf("delete interaction: %w", err)
	}

	return nil
}

// UploadAvatar validates and stores an avatar image for a contact and
// records its BlurHash placeholder.
func (s *ContactService) UploadAvatar(ctx context.Context, ownerID, contactID string, data []byte) (*domain.Contact, error) {
	contact, err := s.ownedContact(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	result, err := s.avatars.Process(contactID, data)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	contact.AvatarPath = result.Path
	contact.AvatarBlurhash = result.BlurHash
	contact.Touch()

	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}

	return contact, nil
}

// GetAvatar returns a contact's avatar bytes and a hash usable as an ETag.
func (s *ContactService) GetAvatar(ctx context.Context, ownerID, contactID string) ([]byte, string, error) {
	contact, err := s.ownedContact(ctx, ownerID, contactID)
	if err != nil {
		return nil, "", err
	}
	if contact.AvatarPath == "" {
		return nil, "", domainerrors.NotFound("contact has no avatar")
	}

	data, err := s.avatars.Get(contactID)
	if err != nil {
		return nil, "", domainerrors.NotFound("contact has no avatar").WithCause(err)
	}

	etag, err := s.avatars.Hash(contactID)
	if err != nil {
		return nil, "", fmt.Errorf("hash avatar: %w", err)
	}

	return data, etag, nil
}

// DeleteAvatar removes a contact's avatar and clears its placeholder.
func (s *ContactService) DeleteAvatar(ctx context.Context, ownerID, contactID string) error {
	contact, err := s.ownedContact(ctx, ownerID, contactID)
	if err != nil {
		return err
	}

	if err := s.avatars.Remove(contactID); err != nil {
		return fmt.Errorf("remove avatar: %w", err)
	}

	contact.AvatarPath = ""
	contact.AvatarBlurhash = ""
	contact.Touch()

	if err := s.store.UpdateContact(ctx, contact); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	return nil
}

// Reindex pushes one contact's current state into the search index.
// Used after tag changes, which live outside this service.
func (s *ContactService) Reindex(ctx context.Context, contactID string) error {
	contact, err := s.store.GetContactByID(ctx, contactID)
	if err != nil {
		return fmt.Errorf("get contact: %w", err)
	}

	tags, err := s.contactTags(ctx, contactID)
	if err != nil {
		return err
	}

	s.reindex(contact, tags)
	return nil
}

// ContactTags returns the tags on a contact. Ownership is not checked,
// callers must have resolved the contact first.
func (s *ContactService) ContactTags(ctx context.Context, contactID string) ([]domain.Tag, error) {
	return s.contactTags(ctx, contactID)
}

// ownedContact loads a contact and verifies it belongs to the owner.
// Returns a not found error for other owners' contacts so IDs don't leak.
func (s *ContactService) ownedContact(ctx context.Context, ownerID, contactID string) (*domain.Contact, error) {
	contact, err := s.store.GetContactByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("contact not found")
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if contact.OwnerID != ownerID {
		return nil, domainerrors.NotFound("contact not found")
	}
	return contact, nil
}

// applyTags find-or-creates the named tags and links them to the contact.
func (s *ContactService) applyTags(ctx context.Context, contact *domain.Contact, names []string) ([]domain.Tag, error) {
	if len(names) == 0 {
		return []domain.Tag{}, nil
	}

	tagIDs := make([]string, 0, len(names))
	tags := make([]domain.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		slug := util.NormalizeTagSlug(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, _, err := s.store.FindOrCreateTag(ctx, contact.OwnerID, slug)
		if err != nil {
			return nil, fmt.Errorf("find or create tag %q: %w", slug, err)
		}
		tagIDs = append(tagIDs, tag.ID)
		tags = append(tags, *tag)
	}

	if err := s.store.SetContactTags(ctx, contact.ID, tagIDs); err != nil {
		return nil, fmt.Errorf("set contact tags: %w", err)
	}

	return tags, nil
}

func (s *ContactService) contactTags(ctx context.Context, contactID string) ([]domain.Tag, error) {
	byContact, err := s.store.TagsForContacts(ctx, []string{contactID})
	if err != nil {
		return nil, fmt.Errorf("load contact tags: %w", err)
	}
	tags := byContact[contactID]
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

// reindex updates the search document for a contact. Index failures are
// logged, not returned: search staleness shouldn't fail a write.
func (s *ContactService) reindex(contact *domain.Contact, tags []domain.Tag) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexContact(search.ContactToDocument(contact, tags)); err != nil && s.logger != nil {
		s.logger.Warn("Failed to index contact",
			"contact_id", contact.ID,
			"error", err,
		)
	}
}

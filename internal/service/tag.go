package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kinshipapp/kinship-server/internal/domain"
	domainerrors "github.com/kinshipapp/kinship-server/internal/errors"
	"github.com/kinshipapp/kinship-server/internal/store"
	"github.com/kinshipapp/kinship-server/internal/util"
)

// TagService orchestrates tag operations. Tags are owned per user and
// identified by their normalized slug.
type TagService struct {
	store    store.Store
	contacts *ContactService
	logger   *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, contacts *ContactService, logger *slog.Logger) *TagService {
	return &TagService{
		store:    store,
		contacts: contacts,
		logger:   logger,
	}
}

// ListTags returns all of the owner's tags.
func (s *TagService) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx, ownerID)
}

// ListPopularTags returns the owner's tags ordered by how many contacts
// carry them.
func (s *TagService) ListPopularTags(ctx context.Context, ownerID string, limit int) ([]domain.TagWithCount, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.ListPopularTags(ctx, ownerID, limit)
}

// CreateTag creates a tag from a display name. The name is normalized to
// a slug; creating a tag that already exists returns the existing one.
func (s *TagService) CreateTag(ctx context.Context, ownerID, name string) (*domain.Tag, error) {
	slug := util.NormalizeTagSlug(name)
	if slug == "" {
		return nil, domainerrors.Validation("tag name is empty after normalization")
	}

	tag, created, err := s.store.FindOrCreateTag(ctx, ownerID, slug)
	if err != nil {
		return nil, fmt.Errorf("find or create tag: %w", err)
	}

	if created && s.logger != nil {
		s.logger.Info("Tag created",
			"tag_id", tag.ID,
			"slug", slug,
			"owner_id", ownerID,
		)
	}

	return tag, nil
}

// DeleteTag removes a tag and all its contact links.
func (s *TagService) DeleteTag(ctx context.Context, ownerID, tagID string) error {
	tag, err := s.ownedTag(ctx, ownerID, tagID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTag(ctx, tag.ID); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Tag deleted", "tag_id", tagID, "slug", tag.Slug)
	}

	return nil
}

// SetContactTags replaces a contact's tag set with the named tags,
// creating any that don't exist yet, and refreshes the contact's search
// document.
func (s *TagService) SetContactTags(ctx context.Context, ownerID, contactID string, names []string) ([]domain.Tag, error) {
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

	tagIDs := make([]string, 0, len(names))
	tags := make([]domain.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		slug := util.NormalizeTagSlug(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, _, err := s.store.FindOrCreateTag(ctx, ownerID, slug)
		if err != nil {
			return nil, fmt.Errorf("find or create tag %q: %w", slug, err)
		}
		tagIDs = append(tagIDs, tag.ID)
		tags = append(tags, *tag)
	}

	if err := s.store.SetContactTags(ctx, contactID, tagIDs); err != nil {
		return nil, fmt.Errorf("set contact tags: %w", err)
	}

	if s.contacts != nil {
		if err := s.contacts.Reindex(ctx, contactID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to reindex contact after tag change",
				"contact_id", contactID,
				"error", err,
			)
		}
	}

	return tags, nil
}

// ownedTag loads a tag and verifies it belongs to the owner.
func (s *TagService) ownedTag(ctx context.Context, ownerID, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	if tag.OwnerID != ownerID {
		return nil, domainerrors.NotFound("tag not found")
	}
	return tag, nil
}

package sqlite

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/store"
)

// makeTestTag creates a domain.Tag with sensible defaults for testing.
func makeTestTag(id, ownerID, slug string) *domain.Tag {
	now := time.Now()
	return &domain.Tag{
		ID:        id,
		OwnerID:   ownerID,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	tag := makeTestTag("tag-1", "user-1", "college-friends")

	if err := s.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	got, err := s.GetTagByID(ctx, "tag-1")
	if err != nil {
		t.Fatalf("GetTagByID: %v", err)
	}
	if got.Slug != "college-friends" {
		t.Errorf("Slug: got %q", got.Slug)
	}
	if got.OwnerID != "user-1" {
		t.Errorf("OwnerID: got %q", got.OwnerID)
	}
	if got.CreatedAt.Unix() != tag.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, tag.CreatedAt)
	}
}

func TestCreateTagDuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	makeTestUser(t, s, "user-2")

	if err := s.CreateTag(ctx, makeTestTag("tag-1", "user-1", "family")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	// Same slug, same owner: conflict.
	err := s.CreateTag(ctx, makeTestTag("tag-2", "user-1", "family"))
	if err != store.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// Same slug, different owner: fine.
	if err := s.CreateTag(ctx, makeTestTag("tag-3", "user-2", "family")); err != nil {
		t.Errorf("cross-owner slug should not conflict: %v", err)
	}
}

func TestFindOrCreateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	tag, created, err := s.FindOrCreateTag(ctx, "user-1", "neighbors")
	if err != nil {
		t.Fatalf("FindOrCreateTag: %v", err)
	}
	if !created {
		t.Error("expected created=true on first call")
	}

	again, created, err := s.FindOrCreateTag(ctx, "user-1", "neighbors")
	if err != nil {
		t.Fatalf("FindOrCreateTag (second): %v", err)
	}
	if created {
		t.Error("expected created=false on second call")
	}
	if again.ID != tag.ID {
		t.Errorf("expected same tag, got %q vs %q", again.ID, tag.ID)
	}
}

func TestSetContactTagsReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	makeTestContact(t, s, "con-1", "user-1", "Maya")

	for _, id := range []string{"tag-1", "tag-2", "tag-3"} {
		if err := s.CreateTag(ctx, makeTestTag(id, "user-1", "slug-"+id)); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}

	if err := s.SetContactTags(ctx, "con-1", []string{"tag-1", "tag-2"}); err != nil {
		t.Fatalf("SetContactTags: %v", err)
	}
	if err := s.SetContactTags(ctx, "con-1", []string{"tag-3"}); err != nil {
		t.Fatalf("SetContactTags (replace): %v", err)
	}

	tagIDs, err := s.GetContactTagIDs(ctx, "con-1")
	if err != nil {
		t.Fatalf("GetContactTagIDs: %v", err)
	}
	if len(tagIDs) != 1 || tagIDs[0] != "tag-3" {
		t.Errorf("expected [tag-3], got %v", tagIDs)
	}
}

func TestSetContactTagsEmptyClears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	makeTestContact(t, s, "con-1", "user-1", "Maya")

	if err := s.CreateTag(ctx, makeTestTag("tag-1", "user-1", "family")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.SetContactTags(ctx, "con-1", []string{"tag-1"}); err != nil {
		t.Fatalf("SetContactTags: %v", err)
	}
	if err := s.SetContactTags(ctx, "con-1", nil); err != nil {
		t.Fatalf("SetContactTags (clear): %v", err)
	}

	tagIDs, err := s.GetContactTagIDs(ctx, "con-1")
	if err != nil {
		t.Fatalf("GetContactTagIDs: %v", err)
	}
	if len(tagIDs) != 0 {
		t.Errorf("expected no tags, got %v", tagIDs)
	}
}

func TestDeleteTagCascadesJunctionOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")
	makeTestContact(t, s, "con-1", "user-1", "Maya")

	if err := s.CreateTag(ctx, makeTestTag("tag-1", "user-1", "family")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.SetContactTags(ctx, "con-1", []string{"tag-1"}); err != nil {
		t.Fatalf("SetContactTags: %v", err)
	}

	if err := s.DeleteTag(ctx, "tag-1"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM contact_tags WHERE tag_id = 'tag-1'`).Scan(&n); err != nil {
		t.Fatalf("count contact_tags: %v", err)
	}
	if n != 0 {
		t.Errorf("expected junction rows gone, got %d", n)
	}

	// The contact is untouched.
	if _, err := s.GetContactByID(ctx, "con-1"); err != nil {
		t.Errorf("contact should remain: %v", err)
	}
}

func TestListPopularTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	makeTestContact(t, s, "con-1", "user-1", "A")
	makeTestContact(t, s, "con-2", "user-1", "B")
	makeTestContact(t, s, "con-3", "user-1", "C")

	for _, id := range []string{"tag-1", "tag-2", "tag-3"} {
		if err := s.CreateTag(ctx, makeTestTag(id, "user-1", "slug-"+id)); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}

	// tag-1 on all three contacts, tag-2 on one, tag-3 unused.
	if err := s.SetContactTags(ctx, "con-1", []string{"tag-1", "tag-2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetContactTags(ctx, "con-2", []string{"tag-1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetContactTags(ctx, "con-3", []string{"tag-1"}); err != nil {
		t.Fatal(err)
	}

	popular, err := s.ListPopularTags(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListPopularTags: %v", err)
	}
	if len(popular) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(popular))
	}
	if popular[0].ID != "tag-1" || popular[0].ContactCount != 3 {
		t.Errorf("top tag: got %q count %d", popular[0].ID, popular[0].ContactCount)
	}
	if popular[2].ContactCount != 0 {
		t.Errorf("unused tag count: got %d", popular[2].ContactCount)
	}

	// Limit applies.
	top, err := s.ListPopularTags(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("ListPopularTags: %v", err)
	}
	if len(top) != 1 {
		t.Errorf("expected 1 tag, got %d", len(top))
	}
}

func TestListTagsSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	slugs := []string{"zeta", "alpha", "mid"}
	for i, slug := range slugs {
		if err := s.CreateTag(ctx, makeTestTag("tag-"+string(rune('1'+i)), "user-1", slug)); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}

	tags, err := s.ListTags(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}

	got := make([]string, len(tags))
	for i, tag := range tags {
		got[i] = tag.Slug
	}
	if !sort.StringsAreSorted(got) {
		t.Errorf("tags not sorted by slug: %v", got)
	}
}

package domain

import "time"

// Tag is an owner-scoped label for grouping contacts.
// Slug is the source of truth; clients transform for display: "college-friends" → "College Friends".
// Uniqueness is enforced per (owner, slug).
type Tag struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Slug      string    `json:"slug"` // Canonical form: lowercase, hyphenated
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// ContactTag represents the many-to-many relationship between contacts and tags.
type ContactTag struct {
	ContactID string    `json:"contact_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TagWithCount is a tag annotated with how many contacts carry it.
type TagWithCount struct {
	Tag
	ContactCount int `json:"contact_count"`
}

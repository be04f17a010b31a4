// Package search provides full-text contact search using Bleve.
// It covers names, company details and notes with fuzzy matching so a
// half-remembered name still finds the right person.
package search

import (
	"strings"

	"github.com/kinshipapp/kinship-server/internal/domain"
)

// ContactDocument is the document structure for the Bleve index.
//
// Tag slugs are denormalized into the document so a tag filter doesn't need
// a database round trip at query time. The index is rebuilt from the store
// on every mapping change, so staleness is bounded by write-path reindexing.
type ContactDocument struct {
	ID       string   `json:"id"`
	OwnerID  string   `json:"owner_id"`
	Name     string   `json:"name"` // first + last, the primary search target
	Nickname string   `json:"nickname,omitempty"`
	Company  string   `json:"company,omitempty"`
	JobTitle string   `json:"job_title,omitempty"`
	Email    string   `json:"email,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	// Unix millis, for sorting by recency.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve uses Go struct field names by default, but the index mapping is
// declared with lowercase names, so we convert explicitly.
func (d *ContactDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Nickname != "" {
		m["nickname"] = d.Nickname
	}
	if d.Company != "" {
		m["company"] = d.Company
	}
	if d.JobTitle != "" {
		m["job_title"] = d.JobTitle
	}
	if d.Email != "" {
		m["email"] = d.Email
	}
	if d.Notes != "" {
		m["notes"] = d.Notes
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// ContactToDocument converts a domain Contact plus its tag slugs to a
// ContactDocument. Tag slugs are passed in by the caller, the search
// package shouldn't depend on store.
func ContactToDocument(c *domain.Contact, tags []domain.Tag) *ContactDocument {
	slugs := make([]string, len(tags))
	for i, t := range tags {
		slugs[i] = t.Slug
	}

	name := c.FirstName
	if c.LastName != "" {
		name = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}

	return &ContactDocument{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      name,
		Nickname:  c.Nickname,
		Company:   c.Company,
		JobTitle:  c.JobTitle,
		Email:     c.Email,
		Notes:     c.Notes,
		Tags:      slugs,
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/id"
	"github.com/kinshipapp/kinship-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, owner_id, slug, created_at, updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Slug,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on duplicate (owner, slug).
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, owner_id, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID,
		t.OwnerID,
		t.Slug,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTagByID retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, tagID)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagBySlug retrieves an owner's tag by slug.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagBySlug(ctx context.Context, ownerID, slug string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? AND slug = ?`, ownerID, slug)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all of an owner's tags ordered by slug.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? ORDER BY slug ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// FindOrCreateTag finds an owner's tag by slug or creates a new one.
// Returns (tag, created, error) where created is true if a new tag was made.
func (s *Store) FindOrCreateTag(ctx context.Context, ownerID, slug string) (*domain.Tag, bool, error) {
	existing, err := s.GetTagBySlug(ctx, ownerID, slug)
	if err == nil {
		return existing, false, nil
	}
	if err != store.ErrNotFound {
		return nil, false, err
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}

	now := time.Now().UTC()
	t := &domain.Tag{
		ID:        tagID,
		OwnerID:   ownerID,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.CreateTag(ctx, t); err != nil {
		if err == store.ErrAlreadyExists {
			// Race: another request created it between the lookup and insert.
			existing, err := s.GetTagBySlug(ctx, ownerID, slug)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return t, true, nil
}

// DeleteTag removes a tag. Junction rows cascade; contacts stay untouched.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetContactTags replaces all tags for a contact in a single transaction.
// It deletes existing contact_tags rows and inserts the new set.
func (s *Store) SetContactTags(ctx context.Context, contactID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contact_tags WHERE contact_id = ?`, contactID); err != nil {
		return fmt.Errorf("delete contact_tags: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contact_tags (contact_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			contactID,
			tagID,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert contact_tag: %w", err)
		}
	}

	return tx.Commit()
}

// GetContactTagIDs returns the tag IDs associated with a contact.
func (s *Store) GetContactTagIDs(ctx context.Context, contactID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_id FROM contact_tags WHERE contact_id = ?`, contactID)
	if err != nil {
		return nil, fmt.Errorf("query contact_tags: %w", err)
	}
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan contact_tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return tagIDs, nil
}

// ListPopularTags returns an owner's tags with their contact counts,
// most used first.
func (s *Store) ListPopularTags(ctx context.Context, ownerID string, limit int) ([]domain.TagWithCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.owner_id, t.slug, t.created_at, t.updated_at, COUNT(ct.contact_id) AS contact_count
		FROM tags t
		LEFT JOIN contact_tags ct ON ct.tag_id = t.id
		WHERE t.owner_id = ?
		GROUP BY t.id
		ORDER BY contact_count DESC, t.slug ASC
		LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.TagWithCount{}
	for rows.Next() {
		var (
			tc        domain.TagWithCount
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&tc.ID, &tc.OwnerID, &tc.Slug, &createdAt, &updatedAt, &tc.ContactCount); err != nil {
			return nil, err
		}
		if tc.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if tc.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

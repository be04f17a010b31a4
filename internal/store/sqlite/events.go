package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/store"
)

// eventColumns is the ordered list of columns selected in event queries.
// Must match the scan order in scanEvent.
const eventColumns = `id, created_at, updated_at, owner_id, title, description,
	location, start_date, end_date, reminder_minutes`

func scanEvent(scanner interface{ Scan(dest ...any) error }) (*domain.CalendarEvent, error) {
	var e domain.CalendarEvent

	var (
		createdAt       string
		updatedAt       string
		description     sql.NullString
		location        sql.NullString
		startDate       string
		endDate         sql.NullString
		reminderMinutes sql.NullInt64
	)

	err := scanner.Scan(
		&e.ID,
		&createdAt,
		&updatedAt,
		&e.OwnerID,
		&e.Title,
		&description,
		&location,
		&startDate,
		&endDate,
		&reminderMinutes,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	e.Description = description.String
	e.Location = location.String
	e.StartDate, err = parseTime(startDate)
	if err != nil {
		return nil, err
	}
	if e.EndDate, err = parseNullableTime(endDate); err != nil {
		return nil, err
	}
	if reminderMinutes.Valid {
		m := int(reminderMinutes.Int64)
		e.ReminderMinutes = &m
	}

	return &e, nil
}

// CreateEvent inserts a new calendar event.
func (s *Store) CreateEvent(ctx context.Context, e *domain.CalendarEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, created_at, updated_at, owner_id, title, description,
			location, start_date, end_date, reminder_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
		e.OwnerID,
		e.Title,
		nullString(e.Description),
		nullString(e.Location),
		formatTime(e.StartDate),
		nullTimeString(e.EndDate),
		nullableInt(e.ReminderMinutes),
	)
	return err
}

// GetEventByID retrieves an event by ID.
// Returns store.ErrNotFound if the event does not exist.
func (s *Store) GetEventByID(ctx context.Context, eventID string) (*domain.CalendarEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, eventID)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEvents returns all of an owner's events ordered by start date.
func (s *Store) ListEvents(ctx context.Context, ownerID string) ([]*domain.CalendarEvent, error) {
	return s.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE owner_id = ?
		ORDER BY start_date ASC`, ownerID)
}

// ListUpcomingEvents returns the owner's events starting at or after the
// given time, soonest first.
func (s *Store) ListUpcomingEvents(ctx context.Context, ownerID string, from time.Time, limit int) ([]*domain.CalendarEvent, error) {
	return s.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE owner_id = ? AND start_date >= ?
		ORDER BY start_date ASC
		LIMIT ?`, ownerID, formatTime(from), limit)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		events = []*domain.CalendarEvent{}
	}
	return events, nil
}

// UpdateEvent writes all mutable fields of an event.
func (s *Store) UpdateEvent(ctx context.Context, e *domain.CalendarEvent) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET
			updated_at = ?, title = ?, description = ?, location = ?,
			start_date = ?, end_date = ?, reminder_minutes = ?
		WHERE id = ?`,
		formatTime(e.UpdatedAt),
		e.Title,
		nullString(e.Description),
		nullString(e.Location),
		formatTime(e.StartDate),
		nullTimeString(e.EndDate),
		nullableInt(e.ReminderMinutes),
		e.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event. Contact links cascade; contacts stay.
func (s *Store) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetEventContacts replaces all contact links for an event in a single transaction.
func (s *Store) SetEventContacts(ctx context.Context, eventID string, contactIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_contacts WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("delete event_contacts: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, contactID := range contactIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO event_contacts (event_id, contact_id, created_at)
			VALUES (?, ?, ?)`,
			eventID,
			contactID,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert event_contact: %w", err)
		}
	}

	return tx.Commit()
}

// GetEventContactIDs returns the contact IDs linked to an event.
func (s *Store) GetEventContactIDs(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contact_id FROM event_contacts WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query event_contacts: %w", err)
	}
	defer rows.Close()

	var contactIDs []string
	for rows.Next() {
		var contactID string
		if err := rows.Scan(&contactID); err != nil {
			return nil, fmt.Errorf("scan event_contact: %w", err)
		}
		contactIDs = append(contactIDs, contactID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return contactIDs, nil
}

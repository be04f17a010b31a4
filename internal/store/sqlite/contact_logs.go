package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/store"
)

// logColumns is the ordered list of columns selected in contact log queries.
// Must match the scan order in scanContactLog.
const logColumns = `id, contact_id, contact_date, contact_type, notes, got_response, response_date, created_at`

func scanContactLog(scanner interface{ Scan(dest ...any) error }) (*domain.ContactLog, error) {
	var l domain.ContactLog

	var (
		contactDate  string
		notes        sql.NullString
		gotResponse  int
		responseDate sql.NullString
		createdAt    string
	)

	err := scanner.Scan(
		&l.ID,
		&l.ContactID,
		&contactDate,
		&l.ContactType,
		&notes,
		&gotResponse,
		&responseDate,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	l.ContactDate, err = parseTime(contactDate)
	if err != nil {
		return nil, err
	}
	l.Notes = notes.String
	l.GotResponse = gotResponse != 0
	if l.ResponseDate, err = parseNullableTime(responseDate); err != nil {
		return nil, err
	}
	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// GetContactLogByID retrieves a single log entry.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetContactLogByID(ctx context.Context, logID string) (*domain.ContactLog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM contact_logs WHERE id = ?`, logID)

	l, err := scanContactLog(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListContactLogs returns a contact's full log history, oldest first.
func (s *Store) ListContactLogs(ctx context.Context, contactID string) ([]domain.ContactLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM contact_logs WHERE contact_id = ? ORDER BY contact_date ASC`,
		contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []domain.ContactLog{}
	for rows.Next() {
		l, err := scanContactLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteInteraction removes a log entry and persists the contact's
// recomputed derived fields in the same transaction, mirroring
// RecordInteraction on the insert path. The caller recomputes the
// contact from the remaining history before calling this.
func (s *Store) DeleteInteraction(ctx context.Context, c *domain.Contact, logID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM contact_logs WHERE id = ?`, logID)
	if err != nil {
		return fmt.Errorf("delete contact_log: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE contacts SET
			updated_at = ?,
			last_contact_date = ?, next_contact_date = ?, last_response_date = ?,
			reminder_frequency_months = ?, relationship_score = ?,
			contact_frequency_days = ?, contact_trend = ?, metrics_updated_at = ?
		WHERE id = ?`,
		formatTime(c.UpdatedAt),
		nullTimeString(c.LastContactDate),
		nullTimeString(c.NextContactDate),
		nullTimeString(c.LastResponseDate),
		c.ReminderFrequencyMonths,
		c.RelationshipScore,
		c.ContactFrequencyDays,
		string(c.ContactTrend),
		nullTimeString(c.MetricsUpdatedAt),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// CountContactLogs returns the number of logs recorded for a contact.
func (s *Store) CountContactLogs(ctx context.Context, contactID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contact_logs WHERE contact_id = ?`, contactID).Scan(&count)
	return count, err
}

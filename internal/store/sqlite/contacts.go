package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/store"
)

// contactColumns is the ordered list of columns selected in contact queries.
// Must match the scan order in scanContact.
const contactColumns = `id, created_at, updated_at, owner_id, first_name, last_name,
	nickname, company, job_title, email, phone, notes, birthday,
	avatar_path, avatar_blurhash,
	last_contact_date, next_contact_date, last_response_date,
	reminder_frequency_months, relationship_score, contact_frequency_days,
	contact_trend, metrics_updated_at`

// scanContact scans a sql.Row (or sql.Rows via its Scan method) into a domain.Contact.
func scanContact(scanner interface{ Scan(dest ...any) error }) (*domain.Contact, error) {
	var c domain.Contact

	var (
		createdAt        string
		updatedAt        string
		lastName         sql.NullString
		nickname         sql.NullString
		company          sql.NullString
		jobTitle         sql.NullString
		email            sql.NullString
		phone            sql.NullString
		notes            sql.NullString
		birthday         sql.NullString
		avatarPath       sql.NullString
		avatarBlurhash   sql.NullString
		lastContactDate  sql.NullString
		nextContactDate  sql.NullString
		lastResponseDate sql.NullString
		trend            string
		metricsUpdatedAt sql.NullString
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.OwnerID,
		&c.FirstName,
		&lastName,
		&nickname,
		&company,
		&jobTitle,
		&email,
		&phone,
		&notes,
		&birthday,
		&avatarPath,
		&avatarBlurhash,
		&lastContactDate,
		&nextContactDate,
		&lastResponseDate,
		&c.ReminderFrequencyMonths,
		&c.RelationshipScore,
		&c.ContactFrequencyDays,
		&trend,
		&metricsUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	c.LastName = lastName.String
	c.Nickname = nickname.String
	c.Company = company.String
	c.JobTitle = jobTitle.String
	c.Email = email.String
	c.Phone = phone.String
	c.Notes = notes.String
	c.AvatarPath = avatarPath.String
	c.AvatarBlurhash = avatarBlurhash.String
	c.ContactTrend = domain.Trend(trend)

	if c.Birthday, err = parseNullableTime(birthday); err != nil {
		return nil, err
	}
	if c.LastContactDate, err = parseNullableTime(lastContactDate); err != nil {
		return nil, err
	}
	if c.NextContactDate, err = parseNullableTime(nextContactDate); err != nil {
		return nil, err
	}
	if c.LastResponseDate, err = parseNullableTime(lastResponseDate); err != nil {
		return nil, err
	}
	if c.MetricsUpdatedAt, err = parseNullableTime(metricsUpdatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateContact inserts a new contact.
func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, created_at, updated_at, owner_id, first_name, last_name,
			nickname, company, job_title, email, phone, notes, birthday,
			avatar_path, avatar_blurhash,
			last_contact_date, next_contact_date, last_response_date,
			reminder_frequency_months, relationship_score, contact_frequency_days,
			contact_trend, metrics_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		c.OwnerID,
		c.FirstName,
		nullString(c.LastName),
		nullString(c.Nickname),
		nullString(c.Company),
		nullString(c.JobTitle),
		nullString(c.Email),
		nullString(c.Phone),
		nullString(c.Notes),
		nullTimeString(c.Birthday),
		nullString(c.AvatarPath),
		nullString(c.AvatarBlurhash),
		nullTimeString(c.LastContactDate),
		nullTimeString(c.NextContactDate),
		nullTimeString(c.LastResponseDate),
		c.ReminderFrequencyMonths,
		c.RelationshipScore,
		c.ContactFrequencyDays,
		string(c.ContactTrend),
		nullTimeString(c.MetricsUpdatedAt),
	)
	return err
}

// GetContactByID retrieves a contact by ID.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) GetContactByID(ctx context.Context, contactID string) (*domain.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, contactID)

	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListContacts returns all of an owner's contacts ordered by first name.
func (s *Store) ListContacts(ctx context.Context, ownerID string) ([]*domain.Contact, error) {
	return s.queryContacts(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE owner_id = ?
		ORDER BY first_name COLLATE NOCASE ASC, last_name COLLATE NOCASE ASC`, ownerID)
}

// ListDueContacts returns every contact of the owner with a scheduled
// reminder, soonest first. Callers apply the "overdue" cutoff themselves.
func (s *Store) ListDueContacts(ctx context.Context, ownerID string) ([]*domain.Contact, error) {
	return s.queryContacts(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE owner_id = ? AND next_contact_date IS NOT NULL
		ORDER BY next_contact_date ASC`, ownerID)
}

// ListRecentContacts returns contacts with a recorded interaction, most
// recent first.
func (s *Store) ListRecentContacts(ctx context.Context, ownerID string, limit int) ([]*domain.Contact, error) {
	return s.queryContacts(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE owner_id = ? AND last_contact_date IS NOT NULL
		ORDER BY last_contact_date DESC
		LIMIT ?`, ownerID, limit)
}

// GetContactsByIDs returns the contacts matching the given ID set, in one query.
func (s *Store) GetContactsByIDs(ctx context.Context, contactIDs []string) ([]*domain.Contact, error) {
	if len(contactIDs) == 0 {
		return []*domain.Contact{}, nil
	}
	args := make([]any, len(contactIDs))
	for i, id := range contactIDs {
		args[i] = id
	}
	return s.queryContacts(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id IN (`+placeholders(len(contactIDs))+`)`,
		args...)
}

func (s *Store) queryContacts(ctx context.Context, query string, args ...any) ([]*domain.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	return contacts, nil
}

// UpdateContact writes all mutable fields of a contact.
func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET
			updated_at = ?, first_name = ?, last_name = ?, nickname = ?,
			company = ?, job_title = ?, email = ?, phone = ?, notes = ?,
			birthday = ?, avatar_path = ?, avatar_blurhash = ?,
			last_contact_date = ?, next_contact_date = ?, last_response_date = ?,
			reminder_frequency_months = ?, relationship_score = ?,
			contact_frequency_days = ?, contact_trend = ?, metrics_updated_at = ?
		WHERE id = ?`,
		formatTime(c.UpdatedAt),
		c.FirstName,
		nullString(c.LastName),
		nullString(c.Nickname),
		nullString(c.Company),
		nullString(c.JobTitle),
		nullString(c.Email),
		nullString(c.Phone),
		nullString(c.Notes),
		nullTimeString(c.Birthday),
		nullString(c.AvatarPath),
		nullString(c.AvatarBlurhash),
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
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteContact removes a contact. Logs, tag links and event links go with
// it via foreign key cascades; tags and events themselves stay.
func (s *Store) DeleteContact(ctx context.Context, contactID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, contactID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// RecordInteraction persists a new log and the contact's updated schedule
// and derived fields in one transaction. A crash can never leave the log
// recorded without the matching contact state, or the other way around.
func (s *Store) RecordInteraction(ctx context.Context, c *domain.Contact, log *domain.ContactLog) error {
	if log.ContactID != c.ID {
		return fmt.Errorf("log contact id %q does not match contact %q", log.ContactID, c.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contact_logs (id, contact_id, contact_date, contact_type, notes, got_response, response_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.ContactID,
		formatTime(log.ContactDate),
		log.ContactType,
		nullString(log.Notes),
		boolToInt(log.GotResponse),
		nullTimeString(log.ResponseDate),
		formatTime(log.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert contact_log: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
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

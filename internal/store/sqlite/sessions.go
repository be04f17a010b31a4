package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/kinshipapp/kinship-server/internal/domain"
	"github.com/kinshipapp/kinship-server/internal/store"
)

// sessionColumns is the ordered list of columns selected in session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, user_id, refresh_token_hash, device_name, expires_at, created_at, last_used_at`

func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.AuthSession, error) {
	var sess domain.AuthSession

	var (
		deviceName sql.NullString
		expiresAt  string
		createdAt  string
		lastUsedAt string
	)

	err := scanner.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.RefreshTokenHash,
		&deviceName,
		&expiresAt,
		&createdAt,
		&lastUsedAt,
	)
	if err != nil {
		return nil, err
	}

	if deviceName.Valid {
		sess.DeviceName = deviceName.String
	}
	sess.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	sess.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sess.LastUsedAt, err = parseTime(lastUsedAt)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// CreateSession inserts a new auth session.
func (s *Store) CreateSession(ctx context.Context, sess *domain.AuthSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, user_id, refresh_token_hash, device_name, expires_at, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.UserID,
		sess.RefreshTokenHash,
		nullString(sess.DeviceName),
		formatTime(sess.ExpiresAt),
		formatTime(sess.CreatedAt),
		formatTime(sess.LastUsedAt),
	)
	return err
}

// GetSessionByTokenHash looks up a session by its refresh token hash.
// Returns store.ErrNotFound if no session matches.
func (s *Store) GetSessionByTokenHash(ctx context.Context, hash string) (*domain.AuthSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM auth_sessions WHERE refresh_token_hash = ?`, hash)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// RotateSession swaps the refresh token hash and bumps usage timestamps.
func (s *Store) RotateSession(ctx context.Context, sessionID, newHash string, expiresAt, usedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auth_sessions
		SET refresh_token_hash = ?, expires_at = ?, last_used_at = ?
		WHERE id = ?`,
		newHash, formatTime(expiresAt), formatTime(usedAt), sessionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteSession removes a session (logout).
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry. Returns the
// number of rows deleted.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < ?`, formatTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shindakun/storefront/internal/models"
)

// ErrSessionNotFound is returned when no row matches the requested session id
var ErrSessionNotFound = errors.New("session not found")

// SaveSession inserts or replaces a session row
func SaveSession(ctx context.Context, db *sql.DB, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, username, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			token = excluded.token,
			expires_at = excluded.expires_at
	`

	_, err := db.ExecContext(ctx, query,
		session.ID,
		session.Username,
		session.Token,
		session.ExpiresAt.Unix(),
		session.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession loads a session by id
func GetSession(ctx context.Context, db *sql.DB, id string) (*models.Session, error) {
	query := `
		SELECT id, username, token, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`

	var (
		session   models.Session
		expiresAt int64
		createdAt int64
	)
	err := db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Username,
		&session.Token,
		&expiresAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}
	session.ExpiresAt = time.Unix(expiresAt, 0)
	session.CreatedAt = time.Unix(createdAt, 0)

	return &session, nil
}

// DeleteSession removes a session by id. Deleting a missing session is not an error.
func DeleteSession(ctx context.Context, db *sql.DB, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session that expired before now and
// returns how many rows were removed
func DeleteExpiredSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// CountSessions returns the number of stored sessions
func CountSessions(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

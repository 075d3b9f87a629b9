package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"solardryer/internal/models"
)

// ErrSessionNotFound indicates a missing session id.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository handles persistence of dryer sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session. The server timestamp is assigned by the
// database and written back into the model.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	const query = `
		INSERT INTO sessions (id, name, status, device_id, created_at, created_at_client)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		RETURNING created_at
	`
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query,
		session.ID,
		session.Name,
		session.Status,
		session.DeviceID,
		session.CreatedAtClient,
	).Scan(&createdAt)
	if err != nil {
		return err
	}
	session.CreatedAt = &createdAt
	return nil
}

// Stop marks a session stopped with the given end time.
func (r *SessionRepository) Stop(ctx context.Context, id string, endedAt time.Time) error {
	const query = `
		UPDATE sessions
		SET status = $2,
		    ended_at = $3
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, models.StatusStopped, endedAt.UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetRunning returns the most recently created running session, or nil when
// none is running.
func (r *SessionRepository) GetRunning(ctx context.Context) (*models.Session, error) {
	const query = `
		SELECT id, name, status, device_id, created_at, created_at_client, ended_at
		FROM sessions
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, models.StatusRunning)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns one session by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	const query = `
		SELECT id, name, status, device_id, created_at, created_at_client, ended_at
		FROM sessions
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// List returns all sessions, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	const query = `
		SELECT id, name, status, device_id, created_at, created_at_client, ended_at
		FROM sessions
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Delete removes a session and its samples.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_samples WHERE session_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		s         models.Session
		createdAt sql.NullTime
		endedAt   sql.NullTime
		clientMs  sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Status, &s.DeviceID, &createdAt, &clientMs, &endedAt); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		t := createdAt.Time
		s.CreatedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	if clientMs.Valid {
		s.CreatedAtClient = clientMs.Int64
	}
	return &s, nil
}

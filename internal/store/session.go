package store

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Session describes one run of the tracking loop.
type Session struct {
	ID        string
	Source    string
	TrailMode string
	MinArea   float64
	Samples   int
	StartedAt time.Time
	EndedAt   *time.Time
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session. StartedAt defaults to now.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, source, trail_mode, min_area, samples, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Source, sess.TrailMode, sess.MinArea, sess.Samples, sess.StartedAt,
	)
	return errors.Wrapf(err, "create session %s", sess.ID)
}

// Finish stamps the end time and the final sample count.
func (r *SessionRepository) Finish(id string, samples int, endedAt time.Time) error {
	res, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, samples = ? WHERE id = ?`,
		endedAt, samples, id,
	)
	if err != nil {
		return errors.Wrapf(err, "finish session %s", id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "finish session %s", id)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "session %s", id)
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, source, trail_mode, min_area, samples, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Source, &sess.TrailMode, &sess.MinArea, &sess.Samples, &sess.StartedAt, &ended)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "session %s", id)
		}
		return nil, errors.Wrapf(err, "get session %s", id)
	}

	if ended.Valid {
		sess.EndedAt = &ended.Time
	}
	return sess, nil
}

// List returns all sessions, newest first.
func (r *SessionRepository) List() ([]Session, error) {
	rows, err := r.db.Query(
		`SELECT id, source, trail_mode, min_area, samples, started_at, ended_at
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var ended sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.Source, &sess.TrailMode, &sess.MinArea, &sess.Samples, &sess.StartedAt, &ended); err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		if ended.Valid {
			t := ended.Time
			sess.EndedAt = &t
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}

	return sessions, nil
}

// Delete removes a session and, through the cascade, its samples.
func (r *SessionRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete session %s", id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete session %s", id)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "session %s", id)
	}
	return nil
}

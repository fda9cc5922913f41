package store

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Sample is one accepted centroid recorded during a session.
type Sample struct {
	ID         int64
	SessionID  string
	Seq        int
	X          int
	Y          int
	Area       float64
	Drawn      bool
	CapturedAt time.Time
}

// SampleRepository provides operations on recorded samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Append inserts a sample. CapturedAt defaults to now.
func (r *SampleRepository) Append(smp *Sample) error {
	if smp.CapturedAt.IsZero() {
		smp.CapturedAt = time.Now()
	}

	res, err := r.db.Exec(
		`INSERT INTO samples (session_id, seq, x, y, area, drawn, captured_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		smp.SessionID, smp.Seq, smp.X, smp.Y, smp.Area, smp.Drawn, smp.CapturedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "append sample %d to session %s", smp.Seq, smp.SessionID)
	}

	smp.ID, err = res.LastInsertId()
	return errors.Wrap(err, "sample id")
}

// ListBySession retrieves all samples of a session in capture order.
func (r *SampleRepository) ListBySession(sessionID string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, seq, x, y, area, drawn, captured_at
		 FROM samples
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "list samples of session %s", sessionID)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Seq, &s.X, &s.Y, &s.Area, &s.Drawn, &s.CapturedAt); err != nil {
			return nil, errors.Wrap(err, "scan sample")
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "list samples of session %s", sessionID)
	}

	return samples, nil
}

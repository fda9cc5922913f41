package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wirefeed/holetrack/internal/log"
	"github.com/wirefeed/holetrack/internal/store"
	"github.com/wirefeed/holetrack/internal/tracker"
)

// SessionRecorder writes accepted centroids of one run to the store.
type SessionRecorder struct {
	store   *store.Store
	session string
	seq     int
}

// NewSessionRecorder opens a new session row and returns a recorder for it.
func NewSessionRecorder(st *store.Store, source string, mode tracker.Mode, minArea float64) (*SessionRecorder, error) {
	id := uuid.NewString()

	err := st.Sessions().Create(&store.Session{
		ID:        id,
		Source:    source,
		TrailMode: string(mode),
		MinArea:   minArea,
	})
	if err != nil {
		return nil, errors.Wrap(err, "start recording")
	}

	return &SessionRecorder{store: st, session: id}, nil
}

// SessionRecorderFunc returns a RecorderFunc that starts a new session in st
// for whichever source the loop opens.
func SessionRecorderFunc(st *store.Store, mode tracker.Mode, minArea float64) RecorderFunc {
	return func(source string) (Recorder, error) {
		rec, err := NewSessionRecorder(st, source, mode, minArea)
		if err != nil {
			return nil, err
		}
		log.Info("recording session", "id", rec.SessionID(), "db", st.Path())
		return rec, nil
	}
}

// SessionID returns the id of the session being recorded.
func (r *SessionRecorder) SessionID() string {
	return r.session
}

// Record appends obs as the next sample. Rejected observations are skipped.
func (r *SessionRecorder) Record(obs tracker.Observation) error {
	if !obs.Accepted {
		return nil
	}

	err := r.store.Samples().Append(&store.Sample{
		SessionID: r.session,
		Seq:       r.seq,
		X:         obs.Centroid.X,
		Y:         obs.Centroid.Y,
		Area:      obs.Area,
		Drawn:     obs.Mark != nil,
	})
	if err != nil {
		return err
	}

	r.seq++
	return nil
}

// Close marks the session finished. The store itself stays open.
func (r *SessionRecorder) Close() error {
	return r.store.Sessions().Finish(r.session, r.seq, time.Now())
}

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wirefeed/holetrack/internal/store"
)

// SamplesHandler serves GET /api/sessions/{id}/samples.
type SamplesHandler struct {
	store *store.Store
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
func NewSamplesHandler(s *store.Store) *SamplesHandler {
	return &SamplesHandler{store: s}
}

type sampleResponse struct {
	Seq        int     `json:"seq"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Area       float64 `json:"area"`
	Drawn      bool    `json:"drawn"`
	CapturedAt string  `json:"captured_at"`
}

type listSamplesResponse struct {
	SessionID string           `json:"session_id"`
	Samples   []sampleResponse `json:"samples"`
}

// ServeHTTP lists the samples of one session in capture order.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id = strings.TrimSuffix(id, "/samples")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	samples, err := h.store.Samples().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{
		SessionID: id,
		Samples:   make([]sampleResponse, 0, len(samples)),
	}
	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			Seq:        s.Seq,
			X:          s.X,
			Y:          s.Y,
			Area:       s.Area,
			Drawn:      s.Drawn,
			CapturedAt: s.CapturedAt.Format(time.RFC3339Nano),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

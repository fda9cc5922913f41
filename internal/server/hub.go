package server

import (
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/wirefeed/holetrack/internal/log"
	"github.com/wirefeed/holetrack/internal/tracker"
)

// eventBuffer is how many centroid events a slow websocket client may lag
// behind before events are dropped for it.
const eventBuffer = 64

// Event is the JSON form of a tracker observation.
type Event struct {
	Seq       uint64  `json:"seq"`
	Accepted  bool    `json:"accepted"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Area      float64 `json:"area"`
	Drawn     bool    `json:"drawn"`
	Timestamp int64   `json:"timestamp"`
}

// Hub hands frames and events from the tracking loop to HTTP clients.
// Publish methods are called on the loop goroutine and never block on the
// network: frames are encoded to JPEG before they leave the loop and events
// are queued per subscriber.
type Hub struct {
	mu       sync.RWMutex
	jpeg     []byte
	frameSeq uint64
	viewers  int
	eventSeq uint64
	subs     map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// PublishFrame stores frame as the latest JPEG. Encoding is skipped while
// nobody is watching the stream.
func (h *Hub) PublishFrame(frame gocv.Mat) {
	h.mu.RLock()
	viewers := h.viewers
	h.mu.RUnlock()
	if viewers == 0 || frame.Empty() {
		return
	}

	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		log.Debug("jpeg encode failed", "err", err)
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	h.mu.Lock()
	h.jpeg = data
	h.frameSeq++
	h.mu.Unlock()
}

// PublishObservation fans obs out to all event subscribers.
func (h *Hub) PublishObservation(obs tracker.Observation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.eventSeq++
	ev := Event{
		Seq:       h.eventSeq,
		Accepted:  obs.Accepted,
		X:         obs.Centroid.X,
		Y:         obs.Centroid.Y,
		Area:      obs.Area,
		Drawn:     obs.Mark != nil,
		Timestamp: time.Now().UnixMilli(),
	}

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Latest returns the most recent JPEG and its sequence number.
func (h *Hub) Latest() ([]byte, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.jpeg, h.frameSeq
}

// Watch registers a stream viewer. Call the returned func when done.
func (h *Hub) Watch() func() {
	h.mu.Lock()
	h.viewers++
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.viewers--
			h.mu.Unlock()
		})
	}
}

// Subscribe returns a channel of events and a func that unsubscribes and closes it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, eventBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of event subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

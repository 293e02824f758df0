package ingest

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

// CameraFrame is the latest camera image as served by /api/camera.
type CameraFrame struct {
	// Image is a data URL (data:image/jpeg;base64,...).
	Image      string    `json:"image"`
	Names      []string  `json:"names,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Store holds the latest sensor reading and camera frame. Reads return
// copies and never clear the stored values. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	reading   telemetry.Reading
	readingAt time.Time
	frame     *CameraFrame
	readings  uint64
	frames    uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetReading replaces the latest sensor reading.
func (s *Store) SetReading(r telemetry.Reading, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading = maps.Clone(r)
	s.readingAt = at
	s.readings++
}

// Reading returns a copy of the latest reading and when it arrived. Before
// the first message it returns an empty, non-nil reading.
func (s *Store) Reading() (telemetry.Reading, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.reading == nil {
		return telemetry.Reading{}, time.Time{}
	}
	return maps.Clone(s.reading), s.readingAt
}

// SetFrame replaces the latest camera frame.
func (s *Store) SetFrame(f CameraFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Names = slices.Clone(f.Names)
	s.frame = &f
	s.frames++
}

// Frame returns the latest camera frame, or false before the first one.
func (s *Store) Frame() (CameraFrame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frame == nil {
		return CameraFrame{}, false
	}
	f := *s.frame
	f.Names = slices.Clone(f.Names)
	return f, true
}

// Counts returns how many readings and frames have been stored.
func (s *Store) Counts() (readings, frames uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readings, s.frames
}

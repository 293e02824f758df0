package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// RollingSeries is a bounded multi-channel time series.
//
// Storage is a ring per channel sharing one head and count, so every
// channel and the timestamp ring always hold the same number of entries.
type RollingSeries struct {
	mu       sync.RWMutex
	channels []Channel
	capacity int

	timestamps []time.Time
	values     map[string][]float64
	head       int // next write position
	count      int // number of valid entries
}

// NewRollingSeries creates an empty series for the given channel set.
//
// Returns ErrInvalidCapacity, ErrNoChannels or ErrInvalidChannel when the
// arguments cannot describe a series.
func NewRollingSeries(capacity int, channels []Channel) (*RollingSeries, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	values := make(map[string][]float64, len(channels))
	for _, ch := range channels {
		if ch.Key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidChannel)
		}
		if _, dup := values[ch.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidChannel, ch.Key)
		}
		values[ch.Key] = make([]float64, capacity)
	}

	chs := make([]Channel, len(channels))
	copy(chs, channels)

	return &RollingSeries{
		channels:   chs,
		capacity:   capacity,
		timestamps: make([]time.Time, capacity),
		values:     values,
	}, nil
}

// Append records a sample. Channels missing from the sample are stored as
// 0 and keys outside the channel set are ignored. When the series is full
// the oldest entry is overwritten in every channel within the same lock.
func (s *RollingSeries) Append(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timestamps[s.head] = sample.Timestamp
	for _, ch := range s.channels {
		s.values[ch.Key][s.head] = sample.Values[ch.Key]
	}

	s.head = (s.head + 1) % s.capacity
	if s.count < s.capacity {
		s.count++
	}
}

// Snapshot returns a copy of the current contents in chronological order.
func (s *RollingSeries) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Channels:   make([]Channel, len(s.channels)),
		Timestamps: make([]time.Time, s.count),
		Series:     make(map[string][]float64, len(s.channels)),
	}
	copy(snap.Channels, s.channels)

	start := (s.head - s.count + s.capacity) % s.capacity
	for i := 0; i < s.count; i++ {
		snap.Timestamps[i] = s.timestamps[(start+i)%s.capacity]
	}
	for _, ch := range s.channels {
		ring := s.values[ch.Key]
		out := make([]float64, s.count)
		for i := 0; i < s.count; i++ {
			out[i] = ring[(start+i)%s.capacity]
		}
		snap.Series[ch.Key] = out
	}

	return snap
}

// Len returns the number of samples currently held.
func (s *RollingSeries) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Capacity returns the maximum number of samples held.
func (s *RollingSeries) Capacity() int {
	return s.capacity
}

// Channels returns a copy of the channel set.
func (s *RollingSeries) Channels() []Channel {
	out := make([]Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// Snapshot is an isolated, read-only view of a RollingSeries.
type Snapshot struct {
	Channels   []Channel
	Timestamps []time.Time
	Series     map[string][]float64
}

// Len returns the number of samples in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Timestamps)
}

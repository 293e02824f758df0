package poller

import (
	"sync"
	"time"
)

// Job names, also used as log and metrics labels.
const (
	JobSensor = "sensor"
	JobCamera = "camera"
	JobLogs   = "logs"
)

// JobStats counts the outcomes of one periodic job.
type JobStats struct {
	Successes   uint64     `json:"successes"`
	Failures    uint64     `json:"failures"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// stats is the per-job counter set.
type stats struct {
	mu   sync.Mutex
	jobs map[string]*JobStats
}

func newStats() *stats {
	return &stats{jobs: map[string]*JobStats{
		JobSensor: {},
		JobCamera: {},
		JobLogs:   {},
	}}
}

func (s *stats) success(job string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	js := s.jobs[job]
	js.Successes++
	js.LastSuccess = &at
	js.LastError = ""
}

func (s *stats) failure(job string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	js := s.jobs[job]
	js.Failures++
	js.LastError = err.Error()
}

func (s *stats) snapshot() map[string]JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]JobStats, len(s.jobs))
	for name, js := range s.jobs {
		cp := *js
		if js.LastSuccess != nil {
			t := *js.LastSuccess
			cp.LastSuccess = &t
		}
		out[name] = cp
	}
	return out
}

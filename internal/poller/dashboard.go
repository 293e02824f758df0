package poller

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

// Dashboard is the state the dashboard page renders. Safe for concurrent use.
type Dashboard struct {
	series *telemetry.RollingSeries

	mu       sync.RWMutex
	latest   telemetry.Reading
	latestAt time.Time
	camera   string
	cameraAt time.Time
	logs     []string
	logsAt   time.Time
}

// State is a point-in-time copy of everything on the dashboard.
type State struct {
	Latest   telemetry.Reading   `json:"latest"`
	LatestAt *time.Time          `json:"latest_at,omitempty"`
	Camera   string              `json:"camera,omitempty"`
	CameraAt *time.Time          `json:"camera_at,omitempty"`
	Logs     []string            `json:"logs"`
	LogsAt   *time.Time          `json:"logs_at,omitempty"`
	Chart    telemetry.ChartData `json:"chart"`
	Capacity int                 `json:"capacity"`
}

// NewDashboard wraps series; the series capacity and channels are fixed there.
func NewDashboard(series *telemetry.RollingSeries) *Dashboard {
	return &Dashboard{series: series}
}

// RecordSensor keeps reading as the current values and appends it to the
// series stamped with at.
func (d *Dashboard) RecordSensor(reading telemetry.Reading, at time.Time) {
	d.mu.Lock()
	d.latest = maps.Clone(reading)
	d.latestAt = at
	d.mu.Unlock()

	d.series.Append(reading.SampleAt(at))
}

// RecordCamera stores image for display and reports whether it changed
// anything. An empty image keeps the previous one. Plain URLs get a
// ?t=<unix ms> cache buster; data URLs are stored unchanged.
func (d *Dashboard) RecordCamera(image string, at time.Time) bool {
	if image == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.camera = cacheBust(image, at)
	d.cameraAt = at
	return true
}

// RecordLogs replaces the log listing as received.
func (d *Dashboard) RecordLogs(names []string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logs = slices.Clone(names)
	d.logsAt = at
}

// Snapshot returns an isolated copy of the rolling series.
func (d *Dashboard) Snapshot() telemetry.Snapshot {
	return d.series.Snapshot()
}

// Series returns the underlying rolling series.
func (d *Dashboard) Series() *telemetry.RollingSeries {
	return d.series
}

// Latest returns a copy of the last sensor reading, empty before the first.
func (d *Dashboard) Latest() telemetry.Reading {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.latest == nil {
		return telemetry.Reading{}
	}
	return maps.Clone(d.latest)
}

// Camera returns the current image reference, empty before the first frame.
func (d *Dashboard) Camera() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.camera
}

// Logs returns a copy of the current log listing.
func (d *Dashboard) Logs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.logs == nil {
		return []string{}
	}
	return slices.Clone(d.logs)
}

// State returns a copy of the whole dashboard.
func (d *Dashboard) State() State {
	chart := d.series.Snapshot().Chart()

	d.mu.RLock()
	defer d.mu.RUnlock()

	st := State{
		Latest:   maps.Clone(d.latest),
		Camera:   d.camera,
		Logs:     slices.Clone(d.logs),
		Chart:    chart,
		Capacity: d.series.Capacity(),
	}
	if st.Latest == nil {
		st.Latest = telemetry.Reading{}
	}
	if st.Logs == nil {
		st.Logs = []string{}
	}
	st.LatestAt = timePtr(d.latestAt)
	st.CameraAt = timePtr(d.cameraAt)
	st.LogsAt = timePtr(d.logsAt)
	return st
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// cacheBust appends t=<unix ms> so the browser refetches a plain URL.
func cacheBust(image string, at time.Time) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	sep := "?"
	if strings.Contains(image, "?") {
		sep = "&"
	}
	return image + sep + "t=" + strconv.FormatInt(at.UnixMilli(), 10)
}

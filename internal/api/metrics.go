package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/poller"
)

// SystemMetrics is the /api/v1/metrics response.
type SystemMetrics struct {
	Timestamp     string                     `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Runtime       RuntimeMetrics             `json:"runtime"`
	WebSocket     WSMetrics                  `json:"websocket"`
	MQTT          MQTTMetrics                `json:"mqtt"`
	Database      *DatabaseMetrics           `json:"database,omitempty"`
	Buffer        BufferMetrics              `json:"buffer"`
	Poller        map[string]poller.JobStats `json:"poller,omitempty"`
	Ingest        *IngestMetrics             `json:"ingest,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// BufferMetrics describes the rolling series fill.
type BufferMetrics struct {
	Samples  int `json:"samples"`
	Capacity int `json:"capacity"`
	Channels int `json:"channels"`
}

// IngestMetrics counts messages taken from the broker.
type IngestMetrics struct {
	Readings uint64 `json:"readings"`
	Frames   uint64 `json:"frames"`
}

// handleMetrics returns runtime and component statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	series := s.dashboard.Series()
	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(timeFormat),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Buffer: BufferMetrics{
			Samples:  series.Len(),
			Capacity: series.Capacity(),
			Channels: len(series.Channels()),
		},
	}

	if s.mqtt != nil {
		metrics.MQTT.Connected = s.mqtt.IsConnected()
	}
	if s.hub != nil {
		metrics.WebSocket.ConnectedClients = s.hub.ClientCount()
	}
	if s.poller != nil {
		metrics.Poller = s.poller.Stats()
	}
	if s.store != nil {
		readings, frames := s.store.Counts()
		metrics.Ingest = &IngestMetrics{Readings: readings, Frames: frames}
	}
	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}

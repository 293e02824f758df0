package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/history"
	"github.com/nerrad567/uav-groundstation/internal/poller"
	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

type fakePollStats map[string]poller.JobStats

func (f fakePollStats) Stats() map[string]poller.JobStats { return f }

func TestSeries(t *testing.T) {
	env := newTestEnv(t)
	at := time.Date(2026, 3, 1, 12, 0, 5, 0, time.Local)
	env.dash.RecordSensor(telemetry.Reading{"Temperature": 20, "Humidity": 41}, at)

	chart := decode[telemetry.ChartData](t, env.get(t, "/api/v1/series"))
	if chart.Title != telemetry.ChartTitle {
		t.Errorf("title = %q", chart.Title)
	}
	if len(chart.Labels) != 1 || chart.Labels[0] != "12:00:05" {
		t.Errorf("labels = %v", chart.Labels)
	}
	if len(chart.Datasets) != len(telemetry.DefaultChannels()) {
		t.Fatalf("datasets = %d, want %d", len(chart.Datasets), len(telemetry.DefaultChannels()))
	}
	if ds := chart.Datasets[0]; ds.Key != "Temperature" || ds.Data[0] != 20 || ds.Fill {
		t.Errorf("first dataset = %+v", ds)
	}
}

func TestDashboardState(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	env.dash.RecordSensor(telemetry.Reading{"Light": 300}, now)
	env.dash.RecordCamera("http://uav.local/frame.jpg", now)
	env.dash.RecordLogs([]string{"sensor_20260301_120000.txt"}, now)

	state := decode[poller.State](t, env.get(t, "/api/v1/dashboard"))
	if state.Latest["Light"] != 300 {
		t.Errorf("latest = %v", state.Latest)
	}
	if state.Camera == "" || len(state.Logs) != 1 {
		t.Errorf("state = %+v", state)
	}
	if state.Capacity != telemetry.DefaultCapacity || len(state.Chart.Labels) != 1 {
		t.Errorf("capacity = %d labels = %v", state.Capacity, state.Chart.Labels)
	}
}

func TestListReadings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		sample := telemetry.Sample{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Values:    map[string]float64{"Temperature": float64(20 + i)},
		}
		if err := env.history.RecordReading(ctx, "uav-001", sample); err != nil {
			t.Fatalf("RecordReading() error: %v", err)
		}
	}

	list := decode[history.ReadingList](t, env.get(t, "/api/v1/readings?limit=2"))
	if list.Total != 3 || len(list.Readings) != 2 || list.Limit != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list.Readings[0].Values["Temperature"] != 22 {
		t.Errorf("newest = %+v", list.Readings[0])
	}

	since := base.Add(90 * time.Second).Format(time.RFC3339)
	list = decode[history.ReadingList](t, env.get(t, "/api/v1/readings?since="+since))
	if list.Total != 1 {
		t.Errorf("since filter total = %d, want 1", list.Total)
	}
}

func TestListReadings_BadSince(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/api/v1/readings?since=yesterday")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListReadings_NoHistory(t *testing.T) {
	env := newTestEnv(t)
	env.srv.history = nil

	for _, path := range []string{"/api/v1/readings", "/api/v1/frames"} {
		if w := env.get(t, path); w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, want 503", path, w.Code)
		}
	}
}

func TestListFrames(t *testing.T) {
	env := newTestEnv(t)
	frame := history.Frame{
		SiteID:     "uav-001",
		ReceivedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SizeBytes:  1024,
		Names:      []string{"person", "car"},
	}
	if err := env.history.RecordFrame(context.Background(), frame); err != nil {
		t.Fatalf("RecordFrame() error: %v", err)
	}

	got := decode[struct {
		Frames []history.Frame `json:"frames"`
	}](t, env.get(t, "/api/v1/frames"))
	if len(got.Frames) != 1 || got.Frames[0].SizeBytes != 1024 || len(got.Frames[0].Names) != 2 {
		t.Errorf("frames = %+v", got.Frames)
	}
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.srv.poller = fakePollStats{poller.JobSensor: {Successes: 4, Failures: 1}}
	env.store.SetReading(telemetry.Reading{"Temperature": 1}, time.Now())
	env.dash.RecordSensor(telemetry.Reading{"Temperature": 1}, time.Now())

	m := decode[SystemMetrics](t, env.get(t, "/api/v1/metrics"))
	if m.Version != "test" || m.Runtime.Goroutines == 0 {
		t.Errorf("metrics = %+v", m)
	}
	if m.Buffer.Samples != 1 || m.Buffer.Capacity != telemetry.DefaultCapacity || m.Buffer.Channels != 7 {
		t.Errorf("buffer = %+v", m.Buffer)
	}
	if m.Poller[poller.JobSensor].Successes != 4 {
		t.Errorf("poller = %+v", m.Poller)
	}
	if m.Ingest == nil || m.Ingest.Readings != 1 {
		t.Errorf("ingest = %+v", m.Ingest)
	}
	if m.Database == nil || m.Database.OpenConnections < 0 {
		t.Errorf("database = %+v", m.Database)
	}
	if m.MQTT.Connected {
		t.Error("mqtt connected without a client")
	}
}

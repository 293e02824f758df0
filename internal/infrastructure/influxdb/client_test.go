package influxdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/infrastructure/config"
	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

// fakeServer answers /ping with 204 and records write bodies.
type fakeServer struct {
	mu     sync.Mutex
	writes []string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/ping"):
		w.WriteHeader(http.StatusNoContent)
	case strings.HasSuffix(r.URL.Path, "/api/v2/write"):
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.writes = append(f.writes, string(body))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) bodies() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.writes, "\n")
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "uav-dev-token",
		Org:           "uav",
		Bucket:        "telemetry",
		BatchSize:     10,
		FlushInterval: 1,
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8086")
	cfg.Enabled = false

	_, err := Connect(context.Background(), cfg)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), testConfig("http://127.0.0.1:59999"))
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_WriteReading(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = 0
	cfg.FlushInterval = 0

	client, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	client.WriteReading("uav-001", telemetry.Sample{
		Timestamp: time.Unix(1700000000, 0),
		Values:    map[string]float64{"Temperature": 21.5},
	})
	client.Flush()

	body := fake.bodies()
	if !strings.Contains(body, "air_quality,site=uav-001") {
		t.Errorf("write body = %q, want air_quality point", body)
	}
	if !strings.Contains(body, "Temperature=21.5") {
		t.Errorf("write body = %q, want Temperature field", body)
	}
}

func TestClose(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() after Close() = %v, want ErrNotConnected", err)
	}

	// Writes and flushes after close are no-ops.
	client.WriteReading("uav-001", telemetry.Sample{Values: map[string]float64{"Light": 1}})
	client.Flush()

	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
}

func TestReadingPoint(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	point := readingPoint("uav-001", telemetry.Sample{
		Timestamp: ts,
		Values:    map[string]float64{"Temperature": 21.5, "Reducing Gas": 3},
	})
	if point == nil {
		t.Fatal("readingPoint() = nil")
	}

	if point.Name() != MeasurementAirQuality {
		t.Errorf("Name() = %q, want %q", point.Name(), MeasurementAirQuality)
	}
	if !point.Time().Equal(ts) {
		t.Errorf("Time() = %v, want %v", point.Time(), ts)
	}

	tags := point.TagList()
	if len(tags) != 1 || tags[0].Key != "site" || tags[0].Value != "uav-001" {
		t.Errorf("tags = %+v", tags)
	}

	fields := map[string]interface{}{}
	for _, f := range point.FieldList() {
		fields[f.Key] = f.Value
	}
	if fields["Temperature"] != 21.5 || fields["Reducing Gas"] != 3.0 {
		t.Errorf("fields = %v", fields)
	}
}

func TestReadingPoint_Empty(t *testing.T) {
	if p := readingPoint("uav-001", telemetry.Sample{}); p != nil {
		t.Errorf("readingPoint() on empty sample = %v, want nil", p)
	}
}

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/history"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/config"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/database"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/logging"
	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("UAVGS_CONFIG", configPath)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("UAVGS_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies validation stops startup.
func TestRun_MissingDatabasePath(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
database:
  path: ""
mqtt:
  enabled: false
ingest:
  enabled: false
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_DashboardOnly starts without a broker, polling a backend that is
// not there, and shuts down cleanly when the context ends.
func TestRun_DashboardOnly(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, fmt.Sprintf(`
site:
  id: test-site
database:
  path: %q
mqtt:
  enabled: false
ingest:
  enabled: false
influxdb:
  enabled: false
logging:
  level: error
  format: text
  output: stdout
api:
  host: "127.0.0.1"
  port: %d
poller:
  base_url: "http://127.0.0.1:1"
  sensor_interval: 50ms
  camera_interval: 50ms
  logs_interval: 50ms
  timeout: 100ms
`, filepath.Join(dir, "test.db"), freePort(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestRun_WithBroker runs the full backend and dashboard.
// Requires MQTT broker at 127.0.0.1:1883.
func TestRun_WithBroker(t *testing.T) {
	conn, err := net.DialTimeout("tcp", "127.0.0.1:1883", 200*time.Millisecond)
	if err != nil {
		t.Skip("no MQTT broker on 127.0.0.1:1883")
	}
	conn.Close()

	dir := t.TempDir()
	writeConfig(t, fmt.Sprintf(`
site:
  id: test-site
database:
  path: %q
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "uavgs-test-run"
ingest:
  log_dir: %q
logging:
  level: error
api:
  host: "127.0.0.1"
  port: %d
`, filepath.Join(dir, "test.db"), filepath.Join(dir, "logs"), freePort(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("UAVGS_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("UAVGS_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestHealthCheck_OptionalClients verifies disabled MQTT and InfluxDB are skipped.
func TestHealthCheck_OptionalClients(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: ":memory:", BusyTimeout: 1})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer db.Close()

	if err := healthCheck(ctx, db, nil, nil); err != nil {
		t.Errorf("healthCheck() error = %v", err)
	}
}

type countingPruner struct {
	history.Repository
	calls atomic.Int32
}

func (c *countingPruner) Prune(context.Context, time.Duration) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestPruneHistory_RunsAtStartupAndStops(t *testing.T) {
	repo := &countingPruner{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		pruneHistory(ctx, repo, time.Hour, logging.Discard())
		close(done)
	}()

	deadline := time.After(time.Second)
	for repo.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("prune did not run at startup")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruneHistory did not return after cancel")
	}
}

// TestDefaultTelemetryConfigBuildsSeries verifies a config without a
// telemetry section yields a usable series.
func TestDefaultTelemetryConfigBuildsSeries(t *testing.T) {
	cfg := config.Default()
	if _, err := telemetry.NewRollingSeries(cfg.Telemetry.Capacity, cfg.Telemetry.Channels); err != nil {
		t.Errorf("NewRollingSeries(defaults) error = %v", err)
	}
}

package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/history"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/config"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/logging"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/mqtt"
	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

type fakeSubscriber struct {
	topics []string
	failOn string
}

func (f *fakeSubscriber) Subscribe(topic string, _ byte, _ mqtt.MessageHandler) error {
	if topic == f.failOn {
		return mqtt.ErrNotConnected
	}
	f.topics = append(f.topics, topic)
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	readings []telemetry.Sample
	frames   []history.Frame
	err      error
}

func (f *fakeRecorder) RecordReading(_ context.Context, _ string, s telemetry.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings = append(f.readings, s)
	return f.err
}

func (f *fakeRecorder) RecordFrame(_ context.Context, fr history.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return f.err
}

type fakeExporter struct {
	samples []telemetry.Sample
	site    string
}

func (f *fakeExporter) WriteReading(site string, s telemetry.Sample) {
	f.site = site
	f.samples = append(f.samples, s)
}

type fakeLogs struct {
	written []map[string]float64
	err     error
}

func (f *fakeLogs) Write(_ time.Time, values map[string]float64) (string, error) {
	f.written = append(f.written, values)
	return "sensor_x.txt", f.err
}

func testConfig() config.IngestConfig {
	return config.IngestConfig{
		Enabled:     true,
		SensorTopic: "uav/telemetry/sensor",
		CameraTopic: "uav/telemetry/camera",
		LogDir:      "unused",
	}
}

type harness struct {
	svc      *Service
	store    *Store
	recorder *fakeRecorder
	exporter *fakeExporter
	logs     *fakeLogs
	now      time.Time
}

func newHarness() *harness {
	h := &harness{
		store:    NewStore(),
		recorder: &fakeRecorder{},
		exporter: &fakeExporter{},
		logs:     &fakeLogs{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.svc = NewService(testConfig(), h.store, Options{
		SiteID:   "uav-001",
		QoS:      1,
		Logs:     h.logs,
		Recorder: h.recorder,
		Exporter: h.exporter,
		Logger:   logging.Discard(),
	})
	h.svc.now = func() time.Time { return h.now }
	return h
}

func TestStart(t *testing.T) {
	h := newHarness()
	sub := &fakeSubscriber{}

	if err := h.svc.Start(sub); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if strings.Join(sub.topics, ",") != "uav/telemetry/sensor,uav/telemetry/camera" {
		t.Errorf("subscribed to %v", sub.topics)
	}
}

func TestStart_NoCameraTopic(t *testing.T) {
	cfg := testConfig()
	cfg.CameraTopic = ""
	svc := NewService(cfg, NewStore(), Options{Logger: logging.Discard()})
	sub := &fakeSubscriber{}

	if err := svc.Start(sub); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(sub.topics) != 1 {
		t.Errorf("subscribed to %v, want sensor only", sub.topics)
	}
}

func TestStart_SubscribeError(t *testing.T) {
	h := newHarness()
	err := h.svc.Start(&fakeSubscriber{failOn: "uav/telemetry/camera"})
	if !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("Start() error = %v, want ErrNotConnected", err)
	}
}

func TestHandleSensor(t *testing.T) {
	h := newHarness()

	err := h.svc.HandleSensor("uav/telemetry/sensor", []byte(`{"Temperature":21.5,"Humidity":40,"status":"ok"}`))
	if err != nil {
		t.Fatalf("HandleSensor() error = %v", err)
	}

	reading, at := h.store.Reading()
	if reading["Temperature"] != 21.5 || reading["Humidity"] != 40 {
		t.Errorf("stored reading = %v", reading)
	}
	if _, ok := reading["status"]; ok {
		t.Error("non-numeric field should be dropped")
	}
	if !at.Equal(h.now) {
		t.Errorf("reading time = %v, want %v", at, h.now)
	}

	if len(h.logs.written) != 1 {
		t.Errorf("log files written = %d, want 1", len(h.logs.written))
	}
	if len(h.recorder.readings) != 1 || !h.recorder.readings[0].Timestamp.Equal(h.now) {
		t.Errorf("recorded readings = %+v", h.recorder.readings)
	}
	if len(h.exporter.samples) != 1 || h.exporter.site != "uav-001" {
		t.Errorf("exported = %+v site=%q", h.exporter.samples, h.exporter.site)
	}
}

func TestHandleSensor_InvalidJSON(t *testing.T) {
	h := newHarness()

	err := h.svc.HandleSensor("t", []byte(`not json`))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("error = %v, want ErrInvalidPayload", err)
	}
	if readings, _ := h.store.Counts(); readings != 0 {
		t.Error("invalid payload should not update the store")
	}
}

func TestHandleSensor_SinkErrorsStillStore(t *testing.T) {
	h := newHarness()
	h.logs.err = errors.New("disk full")
	h.recorder.err = errors.New("db locked")

	err := h.svc.HandleSensor("t", []byte(`{"Light":300}`))
	if err == nil || !strings.Contains(err.Error(), "disk full") || !strings.Contains(err.Error(), "db locked") {
		t.Errorf("error = %v, want both sink errors", err)
	}

	reading, _ := h.store.Reading()
	if reading["Light"] != 300 {
		t.Errorf("store not updated: %v", reading)
	}
	if len(h.exporter.samples) != 1 {
		t.Error("exporter should still receive the reading")
	}
}

func TestHandleSensor_NoSinks(t *testing.T) {
	store := NewStore()
	svc := NewService(testConfig(), store, Options{Logger: logging.Discard()})

	if err := svc.HandleSensor("t", []byte(`{"Nh3":0.2}`)); err != nil {
		t.Fatalf("HandleSensor() error = %v", err)
	}
	if r, _ := store.Reading(); r["Nh3"] != 0.2 {
		t.Errorf("reading = %v", r)
	}
}

func TestHandleCamera(t *testing.T) {
	h := newHarness()
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}
	encoded := base64.StdEncoding.EncodeToString(jpeg)

	err := h.svc.HandleCamera("uav/telemetry/camera", []byte(`{"image":"`+encoded+`","names":["person","car"]}`))
	if err != nil {
		t.Fatalf("HandleCamera() error = %v", err)
	}

	frame, ok := h.store.Frame()
	if !ok {
		t.Fatal("no frame stored")
	}
	if frame.Image != "data:image/jpeg;base64,"+encoded {
		t.Errorf("Image = %q", frame.Image)
	}
	if len(frame.Names) != 2 {
		t.Errorf("Names = %v", frame.Names)
	}

	if len(h.recorder.frames) != 1 || h.recorder.frames[0].SizeBytes != len(jpeg) {
		t.Errorf("recorded frames = %+v", h.recorder.frames)
	}
}

func TestHandleCamera_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not json", `nope`, ErrInvalidPayload},
		{"empty image", `{"image":""}`, ErrInvalidImage},
		{"bad base64", `{"image":"%%%"}`, ErrInvalidImage},
		{"data url without comma", `{"image":"data:image/jpeg;base64"}`, ErrInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			if err := h.svc.HandleCamera("t", []byte(tt.payload)); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if _, ok := h.store.Frame(); ok {
				t.Error("invalid frame should not be stored")
			}
		})
	}
}

func TestToDataURL_PassesThroughDataURL(t *testing.T) {
	in := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))
	out, size, err := toDataURL(in)
	if err != nil {
		t.Fatalf("toDataURL() error = %v", err)
	}
	if out != in || size != 3 {
		t.Errorf("toDataURL() = %q, %d", out, size)
	}
}

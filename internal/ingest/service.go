package ingest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/history"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/config"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/logging"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/mqtt"
	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

const (
	// jpegDataURLPrefix is prepended to base64 camera frames.
	jpegDataURLPrefix = "data:image/jpeg;base64,"

	recordTimeout = 5 * time.Second
)

// Subscriber is the part of the MQTT client ingest needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Recorder persists readings and frame metadata.
type Recorder interface {
	RecordReading(ctx context.Context, siteID string, sample telemetry.Sample) error
	RecordFrame(ctx context.Context, frame history.Frame) error
}

// Exporter forwards readings to a time-series store.
type Exporter interface {
	WriteReading(siteID string, sample telemetry.Sample)
}

// LogWriter writes one sensor log file per reading.
type LogWriter interface {
	Write(t time.Time, values map[string]float64) (string, error)
}

// Options wires the optional sinks. Nil sinks are skipped.
type Options struct {
	SiteID   string
	QoS      byte
	Logs     LogWriter
	Recorder Recorder
	Exporter Exporter
	Logger   *logging.Logger
}

// Service turns MQTT messages into Store updates and persisted records.
type Service struct {
	cfg   config.IngestConfig
	store *Store
	opts  Options
	log   *logging.Logger
	now   func() time.Time
}

// cameraMessage is the camera task's MQTT payload.
type cameraMessage struct {
	Image string   `json:"image"`
	Names []string `json:"names"`
}

// NewService builds an ingest service writing into store.
func NewService(cfg config.IngestConfig, store *Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		cfg:   cfg,
		store: store,
		opts:  opts,
		log:   logger.With("component", "ingest"),
		now:   time.Now,
	}
}

// Start subscribes to the sensor topic and, when configured, the camera topic.
func (s *Service) Start(sub Subscriber) error {
	if err := sub.Subscribe(s.cfg.SensorTopic, s.opts.QoS, s.HandleSensor); err != nil {
		return fmt.Errorf("subscribing to %s: %w", s.cfg.SensorTopic, err)
	}
	if s.cfg.CameraTopic != "" {
		if err := sub.Subscribe(s.cfg.CameraTopic, s.opts.QoS, s.HandleCamera); err != nil {
			return fmt.Errorf("subscribing to %s: %w", s.cfg.CameraTopic, err)
		}
	}
	s.log.Info("ingest subscribed",
		"sensor_topic", s.cfg.SensorTopic,
		"camera_topic", s.cfg.CameraTopic,
	)
	return nil
}

// HandleSensor stores a sensor reading and fans it out to the sinks. The
// Store is updated even if a sink fails; sink errors are joined and returned.
func (s *Service) HandleSensor(_ string, payload []byte) error {
	var reading telemetry.Reading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return fmt.Errorf("%w: sensor: %w", ErrInvalidPayload, err)
	}

	now := s.now()
	s.store.SetReading(reading, now)
	sample := reading.SampleAt(now)

	var errs []error
	if s.opts.Logs != nil {
		if _, err := s.opts.Logs.Write(now, reading); err != nil {
			errs = append(errs, err)
		}
	}
	if s.opts.Recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := s.opts.Recorder.RecordReading(ctx, s.opts.SiteID, sample)
		cancel()
		if err != nil {
			errs = append(errs, err)
		}
	}
	if s.opts.Exporter != nil {
		s.opts.Exporter.WriteReading(s.opts.SiteID, sample)
	}

	return errors.Join(errs...)
}

// HandleCamera validates a base64 frame and stores it as a data URL.
func (s *Service) HandleCamera(_ string, payload []byte) error {
	var msg cameraMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: camera: %w", ErrInvalidPayload, err)
	}

	image, size, err := toDataURL(msg.Image)
	if err != nil {
		return err
	}

	now := s.now()
	s.store.SetFrame(CameraFrame{Image: image, Names: msg.Names, ReceivedAt: now})

	if s.opts.Recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		return s.opts.Recorder.RecordFrame(ctx, history.Frame{
			SiteID:     s.opts.SiteID,
			ReceivedAt: now,
			SizeBytes:  size,
			Names:      msg.Names,
		})
	}
	return nil
}

// toDataURL returns the JPEG data URL for a base64 image and its decoded
// size. Images already in data URL form are passed through.
func toDataURL(image string) (string, int, error) {
	if image == "" {
		return "", 0, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	encoded := image
	if strings.HasPrefix(image, "data:") {
		_, after, ok := strings.Cut(image, ",")
		if !ok {
			return "", 0, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		encoded = after
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	if encoded == image {
		image = jpegDataURLPrefix + encoded
	}
	return image, len(raw), nil
}

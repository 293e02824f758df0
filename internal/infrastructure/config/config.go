package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

// Config is the root configuration structure for the ground station.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Poller    PollerConfig    `yaml:"poller"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// SiteConfig identifies the vehicle or deployment.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// Retention is how long reading history is kept. Zero keeps everything.
	Retention time.Duration `yaml:"retention"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	// WebDir serves the dashboard page from disk instead of the embedded copy.
	WebDir string `yaml:"web_dir"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TelemetryConfig describes the rolling chart buffer.
type TelemetryConfig struct {
	// Capacity is the number of samples kept per channel.
	Capacity int `yaml:"capacity"`

	// Channels is the fixed channel set, in chart order.
	Channels []telemetry.Channel `yaml:"channels"`
}

// PollerConfig controls how the dashboard polls the vehicle backend.
type PollerConfig struct {
	// BaseURL is the backend serving /api/sensor, /api/camera and /api/logs.
	// Empty means this process's own API listener.
	BaseURL string `yaml:"base_url"`

	SensorInterval time.Duration `yaml:"sensor_interval"`
	CameraInterval time.Duration `yaml:"camera_interval"`
	LogsInterval   time.Duration `yaml:"logs_interval"`

	// Timeout bounds a single fetch.
	Timeout time.Duration `yaml:"timeout"`
}

// IngestConfig controls the vehicle-side ingest of MQTT telemetry.
type IngestConfig struct {
	Enabled     bool   `yaml:"enabled"`
	SensorTopic string `yaml:"sensor_topic"`
	CameraTopic string `yaml:"camera_topic"`
	// LogDir is the parent directory for per-session sensor log folders.
	LogDir string `yaml:"log_dir"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern UAVGS_SECTION_KEY,
// for example UAVGS_API_PORT or UAVGS_POLLER_BASE_URL.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration. It is valid without a file.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "uav-001",
			Name: "UAV Ground Station",
		},
		Database: DatabaseConfig{
			Path:        "./data/groundstation.db",
			WALMode:     true,
			BusyTimeout: 5,
			Retention:   7 * 24 * time.Hour,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "uav-groundstation",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 5000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			Org:           "uav",
			Bucket:        "telemetry",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			Capacity: telemetry.DefaultCapacity,
			Channels: telemetry.DefaultChannels(),
		},
		Poller: PollerConfig{
			SensorInterval: 2 * time.Second,
			CameraInterval: 5 * time.Second,
			LogsInterval:   10 * time.Second,
			Timeout:        5 * time.Second,
		},
		Ingest: IngestConfig{
			Enabled:     true,
			SensorTopic: "uav/telemetry/sensor",
			CameraTopic: "uav/telemetry/camera",
			LogDir:      "./logs",
		},
	}
}

// applyEnvOverrides applies UAVGS_* environment variables to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("UAVGS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("UAVGS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("UAVGS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("UAVGS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("UAVGS_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("UAVGS_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("UAVGS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("UAVGS_POLLER_BASE_URL"); v != "" {
		cfg.Poller.BaseURL = v
	}

	if v := os.Getenv("UAVGS_LOG_DIR"); v != "" {
		cfg.Ingest.LogDir = v
	}
}

// Validate checks the configuration for errors.
// All problems are reported together rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.Retention < 0 {
		errs = append(errs, "database.retention must not be negative")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	errs = append(errs, c.Telemetry.validate()...)
	errs = append(errs, c.Poller.validate()...)

	if c.Ingest.Enabled {
		if c.Ingest.SensorTopic == "" {
			errs = append(errs, "ingest.sensor_topic is required")
		}
		if c.Ingest.LogDir == "" {
			errs = append(errs, "ingest.log_dir is required")
		}
		if !c.MQTT.Enabled {
			errs = append(errs, "ingest requires mqtt.enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (t TelemetryConfig) validate() []string {
	var errs []string
	if t.Capacity <= 0 {
		errs = append(errs, "telemetry.capacity must be greater than 0")
	}
	if len(t.Channels) == 0 {
		errs = append(errs, "telemetry.channels must not be empty")
	}
	seen := make(map[string]bool, len(t.Channels))
	for i, ch := range t.Channels {
		if ch.Key == "" {
			errs = append(errs, fmt.Sprintf("telemetry.channels[%d].key is required", i))
			continue
		}
		if seen[ch.Key] {
			errs = append(errs, fmt.Sprintf("telemetry.channels: duplicate key %q", ch.Key))
		}
		seen[ch.Key] = true
	}
	return errs
}

func (p PollerConfig) validate() []string {
	var errs []string
	if p.BaseURL != "" {
		if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, "poller.base_url must be an absolute URL")
		}
	}
	if p.SensorInterval <= 0 || p.CameraInterval <= 0 || p.LogsInterval <= 0 {
		errs = append(errs, "poller intervals must be positive")
	}
	if p.Timeout < 0 {
		errs = append(errs, "poller.timeout must not be negative")
	}
	return errs
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// UpstreamURL returns the backend base URL the pollers use. When no base
// URL is configured it points at this process's own listener.
func (c *Config) UpstreamURL() string {
	if c.Poller.BaseURL != "" {
		return strings.TrimRight(c.Poller.BaseURL, "/")
	}
	host := c.API.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, c.API.Port)
}

// UAV Ground Station
//
// Entry point for the ground station service. One process can play both
// roles of the UAV web interface:
//   - backend: ingests airframe telemetry and camera frames from MQTT, writes
//     sensor log files, keeps reading history in SQLite (and optionally
//     InfluxDB) and serves /api/sensor, /api/camera and /api/logs
//   - dashboard: polls a backend on fixed intervals into a rolling series and
//     serves the live page, its JSON endpoints and the WebSocket feed
//
// With poller.base_url unset the dashboard polls this process's own backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/api"
	"github.com/nerrad567/uav-groundstation/internal/history"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/config"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/database"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/influxdb"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/logging"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/mqtt"
	"github.com/nerrad567/uav-groundstation/internal/ingest"
	"github.com/nerrad567/uav-groundstation/internal/poller"
	"github.com/nerrad567/uav-groundstation/internal/sensorlog"
	"github.com/nerrad567/uav-groundstation/internal/telemetry"
	"github.com/nerrad567/uav-groundstation/internal/upstream"
	"github.com/nerrad567/uav-groundstation/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// pruneInterval is how often history older than database.retention is removed.
	pruneInterval = time.Hour
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled. Deferred
// closes run in reverse start order.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	log := logging.Default()
	log.Info("starting UAV ground station",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	historyRepo := history.NewSQLiteRepository(db.DB)
	if cfg.Database.Retention > 0 {
		go pruneHistory(ctx, historyRepo, cfg.Database.Retention, log)
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Backend side: MQTT ingest feeding the /api/sensor family.
	var (
		store  *ingest.Store
		logDir *sensorlog.Dir
		logSrc api.LogSource
	)
	if cfg.Ingest.Enabled {
		store = ingest.NewStore()
		logDir, err = sensorlog.NewSession(cfg.Ingest.LogDir, time.Now())
		if err != nil {
			return fmt.Errorf("creating sensor log session: %w", err)
		}
		logSrc = logDir
		log.Info("sensor log session created", "path", logDir.Path(), "session_id", logDir.SessionID())

		opts := ingest.Options{
			SiteID:   cfg.Site.ID,
			QoS:      byte(cfg.MQTT.QoS),
			Logs:     logDir,
			Recorder: historyRepo,
			Logger:   log,
		}
		if influxClient != nil {
			opts.Exporter = influxClient
		}
		if err := ingest.NewService(cfg.Ingest, store, opts).Start(mqttClient); err != nil {
			return fmt.Errorf("starting ingest: %w", err)
		}
	} else {
		log.Info("ingest disabled, serving dashboard only")
	}

	// Dashboard side: rolling series fed by the pollers.
	series, err := telemetry.NewRollingSeries(cfg.Telemetry.Capacity, cfg.Telemetry.Channels)
	if err != nil {
		return fmt.Errorf("creating rolling series: %w", err)
	}
	dashboard := poller.NewDashboard(series)

	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	upstreamURL := cfg.UpstreamURL()
	dashPoller := poller.New(dashboard, upstream.NewClient(upstreamURL, cfg.Poller.Timeout), cfg.Poller,
		poller.WithLogger(log),
		poller.WithNotifier(hub.Broadcast),
	)

	apiServer, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Logger:    log,
		Dashboard: dashboard,
		Poller:    dashPoller,
		Store:     store,
		Logs:      logSrc,
		History:   historyRepo,
		DB:        db,
		MQTT:      mqttClient,
		Hub:       hub,
		SiteID:    cfg.Site.ID,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	dashPoller.Start(ctx)
	defer dashPoller.Stop()
	log.Info("dashboard polling", "upstream", upstreamURL)

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred closes: poller, API server, InfluxDB, MQTT, database.
	log.Info("UAV ground station stopped")
	return nil
}

// getConfigPath returns UAVGS_CONFIG when set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("UAVGS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies every enabled dependency. mqttClient and
// influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// pruneHistory deletes history older than retention once at startup and
// then every pruneInterval until ctx is cancelled.
func pruneHistory(ctx context.Context, repo history.Repository, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		removed, err := repo.Prune(ctx, retention)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("history prune failed", "error", err)
		case removed > 0:
			log.Info("history pruned", "rows", removed, "retention", retention)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/history"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/config"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/database"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/logging"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/mqtt"
	"github.com/nerrad567/uav-groundstation/internal/ingest"
	"github.com/nerrad567/uav-groundstation/internal/poller"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// PollStats reports per-job poll counters. *poller.Poller implements it.
type PollStats interface {
	Stats() map[string]poller.JobStats
}

// LogSource lists and reads sensor log files. *sensorlog.Dir implements it.
type LogSource interface {
	List() ([]string, error)
	Read(name string) ([]byte, error)
}

// Deps holds the dependencies required by the API server. Only Logger and
// Dashboard are required.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Logger    *logging.Logger
	Dashboard *poller.Dashboard
	Poller    PollStats
	Store     *ingest.Store
	Logs      LogSource
	History   history.Repository
	DB        *database.DB
	MQTT      *mqtt.Client
	Hub       *Hub // If set, the server uses this hub instead of creating its own
	SiteID    string
	Version   string
}

// Server is the HTTP server for the dashboard and backend endpoints.
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	dashboard *poller.Dashboard
	poller    PollStats
	store     *ingest.Store
	logs      LogSource
	history   history.Repository
	db        *database.DB
	mqtt      *mqtt.Client
	siteID    string
	version   string
	startTime time.Time
	server    *http.Server
	hub       *Hub
	cancel    context.CancelFunc
}

// New creates a new API server. It does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Dashboard == nil {
		return nil, fmt.Errorf("dashboard is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger.With("component", "api"),
		dashboard: deps.Dashboard,
		poller:    deps.Poller,
		store:     deps.Store,
		logs:      deps.Logs,
		history:   deps.History,
		db:        deps.DB,
		mqtt:      deps.MQTT,
		hub:       deps.Hub,
		siteID:    deps.SiteID,
		version:   deps.Version,
		startTime: time.Now(),
	}
	if s.hub != nil {
		s.hub.SetCurrent(s.currentEvent)
	}
	return s, nil
}

// Start launches the HTTP listener in a background goroutine. The hub is
// run until Close when the server created it.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		s.hub.SetCurrent(s.currentEvent)
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

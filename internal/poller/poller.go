package poller

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/infrastructure/config"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/logging"
	"github.com/nerrad567/uav-groundstation/internal/telemetry"
	"github.com/nerrad567/uav-groundstation/internal/upstream"
)

// Events passed to the notifier after a successful tick.
const (
	EventSeries = "telemetry.series"
	EventCamera = "camera.updated"
	EventLogs   = "logs.updated"
)

// SeriesUpdate is the EventSeries payload.
type SeriesUpdate struct {
	Latest telemetry.Reading   `json:"latest"`
	Chart  telemetry.ChartData `json:"chart"`
}

// Fetcher is the backend the jobs poll. *upstream.Client implements it.
type Fetcher interface {
	Sensor(ctx context.Context) upstream.Result[telemetry.Reading]
	Camera(ctx context.Context) upstream.Result[upstream.Camera]
	Logs(ctx context.Context) upstream.Result[[]string]
}

// Notifier is told about dashboard changes, e.g. to push them to websocket
// clients. It must not block.
type Notifier func(event string, payload any)

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the logger. Without it the poller logs through logging.Default.
func WithLogger(l *logging.Logger) Option {
	return func(p *Poller) { p.log = l.With("component", "poller") }
}

// WithNotifier sets the change notifier.
func WithNotifier(n Notifier) Option {
	return func(p *Poller) { p.notify = n }
}

// Poller runs the sensor, camera and logs jobs.
type Poller struct {
	dash    *Dashboard
	fetch   Fetcher
	cfg     config.PollerConfig
	timeout time.Duration
	log     *logging.Logger
	notify  Notifier
	stats   *stats
	now     func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New builds a poller; call Start to begin polling.
func New(dash *Dashboard, fetch Fetcher, cfg config.PollerConfig, opts ...Option) *Poller {
	p := &Poller{
		dash:    dash,
		fetch:   fetch,
		cfg:     cfg,
		timeout: cfg.Timeout,
		log:     logging.Default().With("component", "poller"),
		notify:  func(string, any) {},
		stats:   newStats(),
		now:     time.Now,
	}
	if p.timeout <= 0 {
		p.timeout = upstream.DefaultTimeout
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the three jobs. The first fetch of each happens one
// interval after Start. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	jobs := []struct {
		name     string
		interval time.Duration
		tick     func(context.Context) bool
	}{
		{JobSensor, p.cfg.SensorInterval, p.PollSensor},
		{JobCamera, p.cfg.CameraInterval, p.PollCamera},
		{JobLogs, p.cfg.LogsInterval, p.PollLogs},
	}
	for _, job := range jobs {
		p.wg.Add(1)
		go p.run(ctx, job.name, job.interval, job.tick)
	}

	p.log.Info("poller started",
		"sensor_interval", p.cfg.SensorInterval,
		"camera_interval", p.cfg.CameraInterval,
		"logs_interval", p.cfg.LogsInterval,
		"timeout", p.timeout,
	)
}

// Stop cancels the jobs and waits for in-flight fetches to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info("poller stopped")
}

// Stats returns per-job success and failure counters.
func (p *Poller) Stats() map[string]JobStats {
	return p.stats.snapshot()
}

func (p *Poller) run(ctx context.Context, name string, interval time.Duration, tick func(context.Context) bool) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// PollSensor performs one sensor tick and reports whether it succeeded.
func (p *Poller) PollSensor(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := p.fetch.Sensor(ctx)
	if !p.check(JobSensor, res.Err) {
		return false
	}

	p.dash.RecordSensor(res.Value, p.now())
	p.notify(EventSeries, SeriesUpdate{Latest: p.dash.Latest(), Chart: p.dash.Snapshot().Chart()})
	return true
}

// PollCamera performs one camera tick. A null image counts as success but
// leaves the displayed frame unchanged.
func (p *Poller) PollCamera(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := p.fetch.Camera(ctx)
	if !p.check(JobCamera, res.Err) {
		return false
	}

	if res.Value.Image != nil && p.dash.RecordCamera(*res.Value.Image, p.now()) {
		p.notify(EventCamera, map[string]string{"image": p.dash.Camera()})
	}
	return true
}

// PollLogs performs one logs tick.
func (p *Poller) PollLogs(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := p.fetch.Logs(ctx)
	if !p.check(JobLogs, res.Err) {
		return false
	}

	p.dash.RecordLogs(res.Value, p.now())
	p.notify(EventLogs, p.dash.Logs())
	return true
}

// check records the outcome and logs failures; true means apply the result.
func (p *Poller) check(job string, err error) bool {
	if err != nil {
		p.stats.failure(job, err)
		p.log.Warn("fetch failed, skipping tick", "job", job, "error", err)
		return false
	}
	p.stats.success(job, p.now())
	return true
}

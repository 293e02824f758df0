// Package poller keeps the dashboard's view of the airframe up to date.
//
// A Dashboard owns the rolling sensor series plus the latest reading,
// camera image and log listing. A Poller runs three independent periodic
// jobs against the backend (sensor every 2s, camera every 5s, logs every
// 10s by default) and applies each successful fetch to the Dashboard. A
// failed fetch is logged and the tick skipped; the next tick runs as
// scheduled regardless of how the previous one went.
//
// Usage:
//
//	series, _ := telemetry.NewRollingSeries(30, telemetry.DefaultChannels())
//	dash := poller.NewDashboard(series)
//	p := poller.New(dash, upstream.NewClient(baseURL, 5*time.Second), cfg.Poller,
//	    poller.WithLogger(logger), poller.WithNotifier(hub.Broadcast))
//	p.Start(ctx)
//	defer p.Stop()
package poller

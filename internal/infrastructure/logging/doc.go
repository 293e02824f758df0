// Package logging provides structured logging for the ground station.
//
// It wraps log/slog with the configuration and default fields every
// component shares.
//
// # Features
//
//   - JSON output for deployment, text output for the bench
//   - Default fields (service, version) on every entry
//   - Level-based filtering (debug, info, warn, error)
//   - Per-component child loggers via With
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	pollLog := logger.With("component", "poller")
//	pollLog.Warn("sensor fetch failed, skipping tick", "error", err)
//
// Never log the MQTT password or the InfluxDB token.
package logging

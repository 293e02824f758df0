// Package telemetry holds the rolling sensor time series that feeds the
// ground station's live chart.
//
// A RollingSeries tracks a fixed set of channels in lockstep. Each Append
// records one value per channel under a shared timestamp and, once the
// buffer is full, evicts the oldest entry from every channel at once:
//
//	series, err := telemetry.NewRollingSeries(30, telemetry.DefaultChannels())
//	series.Append(telemetry.Sample{Timestamp: time.Now(), Values: reading})
//	chart := series.Snapshot().Chart()
//
// # Lenient input
//
// Channels absent from a sample are recorded as 0 and keys that are not
// part of the channel set are ignored. Append never fails.
//
// # Thread Safety
//
// Append and Snapshot are safe for concurrent use. A Snapshot is a copy
// and is never modified by later appends.
package telemetry

// Package history persists ingested sensor readings and camera frame
// metadata in SQLite.
//
// The rolling chart only ever holds the last few dozen samples; this
// package is where the longer record lives. It backs /api/v1/readings and
// is pruned on a retention schedule.
package history

// Package upstream fetches sensor, camera and log data from the backend
// HTTP API.
//
// Every fetch returns a Result: either a decoded value or the reason it
// failed. Callers inspect Result.Err and skip the tick on failure; there
// is no retry or backoff here.
//
//	GET /api/sensor  → {"Temperature": 21.5, ...}
//	GET /api/camera  → {"image": "<url|data-url|null>"}
//	GET /api/logs    → ["sensor_20260301_093001.txt", ...]
package upstream

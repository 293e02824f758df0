// Package api implements the HTTP and WebSocket surface of the ground station.
//
// It serves two audiences from one chi router:
//   - the backend endpoints the dashboard polls (/api/sensor, /api/camera,
//     /api/logs), backed by the MQTT ingest store and the session log directory
//   - the dashboard itself: the embedded page, the /api/v1 JSON endpoints
//     (series, dashboard state, history, health, metrics) and the /ws hub
//     that pushes poller updates to open pages
//
// Backend routes are only mounted when their source is configured, so a
// dashboard pointed at a remote backend serves just the /api/v1 surface.
package api

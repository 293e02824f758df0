// Package ingest receives airframe telemetry from MQTT and makes it
// available to the backend HTTP endpoints.
//
// The sensor task publishes a JSON object of channel readings; the camera
// task publishes a base64 JPEG plus the names it detected. Ingest keeps the
// latest of each in a Store (reads never drain it) and fans sensor
// readings out to the session log directory, the SQLite history and,
// when enabled, InfluxDB.
//
//	uav/telemetry/sensor ─┬─ Store (latest)
//	                      ├─ sensorlog.Dir
//	                      ├─ history.Repository
//	                      └─ influxdb.Client
//	uav/telemetry/camera ─┬─ Store (latest, as data URL)
//	                      └─ history.Repository (metadata)
package ingest

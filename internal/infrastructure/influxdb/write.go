package influxdb

import (
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/uav-groundstation/internal/telemetry"
)

// MeasurementAirQuality is the measurement every reading is written to.
const MeasurementAirQuality = "air_quality"

// WriteReading queues one sample for export. Non-blocking; dropped
// silently when the client is closed.
func (c *Client) WriteReading(siteID string, sample telemetry.Sample) {
	if !c.IsConnected() {
		return
	}
	point := readingPoint(siteID, sample)
	if point == nil {
		return
	}
	c.writeAPI.WritePoint(point)
}

// readingPoint builds the air_quality point for a sample, or nil when the
// sample carries no values (InfluxDB rejects field-less points).
func readingPoint(siteID string, sample telemetry.Sample) *write.Point {
	if len(sample.Values) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(sample.Values))
	for key, value := range sample.Values {
		fields[key] = value
	}

	return write.NewPoint(
		MeasurementAirQuality,
		map[string]string{"site": siteID},
		fields,
		sample.Timestamp,
	)
}

package telemetry

import (
	"encoding/json"
	"time"
)

// Sample is one timestamped set of channel readings.
type Sample struct {
	Timestamp time.Time
	Values    map[string]float64
}

// Reading is the raw JSON object produced by the sensor task: channel key
// to numeric value.
type Reading map[string]float64

// UnmarshalJSON decodes a sensor object, dropping fields that are not
// numbers (null, strings, nested objects). Dropped fields are treated as
// absent and therefore recorded as 0 by the series.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Reading, len(raw))
	for key, v := range raw {
		if f, ok := v.(float64); ok {
			out[key] = f
		}
	}
	*r = out
	return nil
}

// SampleAt stamps a reading with the given time.
func (r Reading) SampleAt(t time.Time) Sample {
	return Sample{Timestamp: t, Values: r}
}

package telemetry

// DefaultCapacity is the number of samples kept by the dashboard chart.
const DefaultCapacity = 30

// Channel describes one named sensor stream.
type Channel struct {
	// Key is the field name used by the sensor payload (e.g. "Temperature").
	Key string `json:"key" yaml:"key"`

	// Label is the human-readable dataset label including the unit.
	Label string `json:"label" yaml:"label"`

	// Color is the chart line colour.
	Color string `json:"color" yaml:"color"`
}

// DefaultChannels returns the UAV air-quality channel set in chart order.
func DefaultChannels() []Channel {
	return []Channel{
		{Key: "Temperature", Label: "Temperature (°C)", Color: "red"},
		{Key: "Humidity", Label: "Humidity (%)", Color: "blue"},
		{Key: "Pressure", Label: "Pressure (Pa)", Color: "green"},
		{Key: "Light", Label: "Light (lux)", Color: "orange"},
		{Key: "Reducing Gas", Label: "Reducing Gas (ppm)", Color: "purple"},
		{Key: "Oxidizing Gas", Label: "Oxidizing Gas (ppm)", Color: "pink"},
		{Key: "Nh3", Label: "NH3 (ppm)", Color: "brown"},
	}
}

// ChannelKeys returns the keys of the given channels in order.
func ChannelKeys(channels []Channel) []string {
	keys := make([]string, len(channels))
	for i, ch := range channels {
		keys[i] = ch.Key
	}
	return keys
}

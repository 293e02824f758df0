package mqtt

// Topic roots shared with the airframe tasks.
const (
	// TopicPrefixTelemetry is the root of everything the airframe publishes.
	TopicPrefixTelemetry = "uav/telemetry"

	// TopicPrefixSystem is the root of presence and housekeeping topics.
	TopicPrefixSystem = "uav/system"
)

// Topics builds the ground station's MQTT topic names.
//
//	topics := mqtt.Topics{}
//	topics.Sensor() // "uav/telemetry/sensor"
type Topics struct{}

// Sensor is the topic carrying one JSON object of channel readings per message.
func (Topics) Sensor() string {
	return TopicPrefixTelemetry + "/sensor"
}

// Camera is the topic carrying base64 JPEG frames plus detected names.
func (Topics) Camera() string {
	return TopicPrefixTelemetry + "/camera"
}

// AllTelemetry matches every telemetry topic.
func (Topics) AllTelemetry() string {
	return TopicPrefixTelemetry + "/#"
}

// SystemStatus is the retained presence topic, also used for the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

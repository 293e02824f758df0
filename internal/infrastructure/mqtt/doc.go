// Package mqtt connects the ground station to the airframe's MQTT broker.
//
// The airframe tasks publish sensor readings and camera frames under
// uav/telemetry/*; the ground station subscribes to them and announces its
// own presence on uav/system/status.
//
//	Airframe tasks → MQTT broker → ground station ingest
//
// The client wraps paho.mqtt.golang with:
//   - auto-reconnect with the configured backoff bounds
//   - Last Will and Testament so a crash shows as offline
//   - subscription tracking, restored after every reconnect
//   - panic-safe message handlers
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.Sensor(), 1,
//	    func(topic string, payload []byte) error {
//	        return store.HandleSensor(payload)
//	    })
package mqtt

// Package config handles loading and validating ground station configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with UAVGS_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Secrets (MQTT password, InfluxDB token) should be supplied through the
// environment rather than committed to the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Poller.SensorInterval)
package config

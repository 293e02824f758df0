// Package influxdb exports ingested sensor readings to InfluxDB v2.
//
// Export is optional (influxdb.enabled). Writes go through the client's
// non-blocking WriteAPI, so a slow or unreachable server never stalls
// ingest; failures surface through the SetOnError callback.
//
// Each reading becomes one point:
//
//	air_quality,site=uav-001 Temperature=21.5,Humidity=40,... <ts>
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteReading(cfg.Site.ID, sample)
package influxdb

// Package telemetry records commlink message-traffic metrics in
// InfluxDB.
//
// The recorder is optional: when telemetry is disabled in config,
// Connect returns ErrDisabled and agents simply skip it. Writes use the
// InfluxDB non-blocking WriteAPI with batching, so recording a message
// event from the adapter's notification callback adds no blocking work
// to the MQTT delivery path.
//
// # Usage
//
//	recorder, err := telemetry.Connect(cfg.Telemetry)
//	if errors.Is(err, telemetry.ErrDisabled) {
//	    // metrics off, carry on
//	}
//	adapter.OnMessage(func(a *comms.Adapter, message string) {
//	    recorder.WriteMessageTraffic(a.ClientName(), telemetry.DirectionReceived, len(message))
//	})
package telemetry

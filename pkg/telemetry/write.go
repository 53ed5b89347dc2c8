package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Traffic directions recorded in the message_traffic measurement.
const (
	DirectionReceived  = "received"
	DirectionPublished = "published"
)

// WriteMessageTraffic records one message event.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - clientID: The adapter's client identifier
//   - direction: DirectionReceived or DirectionPublished
//   - bytes: Payload size in bytes
//
// Example:
//
//	recorder.WriteMessageTraffic("device-42", telemetry.DirectionReceived, len(msg))
func (c *Client) WriteMessageTraffic(clientID string, direction string, bytes int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"message_traffic",
		map[string]string{
			"client_id": clientID,
			"direction": direction,
		},
		map[string]interface{}{
			"count": 1,
			"bytes": bytes,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteConnectionEvent records a lifecycle event (connect, disconnect,
// connection_lost) for dashboarding session stability.
func (c *Client) WriteConnectionEvent(clientID string, event string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"connection_events",
		map[string]string{
			"client_id": clientID,
			"event":     event,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// Package comms provides MQTT connectivity with two-tier addressing
// for commlink agents.
//
// The adapter gives application code a uniform "send to one" / "send
// to many" / "receive what I subscribed to" abstraction without
// exposing broker topic syntax. Logical addresses map onto a flat
// three-segment topic scheme:
//
//	{prefix}/direct/{clientID}     point-to-point
//	{prefix}/broadcast/{category}  category fan-out
//
// # Lifecycle
//
// An adapter owns a single broker session. Connect allocates the client
// handle on first use, opens the session synchronously and subscribes
// to the adapter's own direct topic plus the requested broadcast
// categories in one request. Connect on a live session is a no-op.
// Disconnect closes the session; the adapter never reconnects on its
// own, so after a broker-initiated drop CanSend() turns false until the
// caller connects again.
//
// Connect and Disconnect must be serialized by the caller, the typical
// embedded usage being a single control goroutine. Inbound delivery
// arrives on a goroutine owned by the MQTT client; registered handlers
// must return quickly and do no blocking work.
//
// # Delivery
//
// Every subscription and publish requests at-least-once delivery
// (QoS 1): messages may arrive more than once but are never silently
// dropped by the broker. The adapter adds no persistence, ordering or
// retry on top of that.
//
// # Usage
//
//	adapter, err := comms.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	adapter.OnMessage(func(_ *comms.Adapter, message string) {
//	    fmt.Println("received:", message)
//	})
//	if err := adapter.Connect([]string{"status", "alerts"}); err != nil {
//	    log.Fatal(err)
//	}
//	adapter.Publish("pump online", "status")
//	adapter.Send("ping", "device-42")
//	adapter.Disconnect()
package comms

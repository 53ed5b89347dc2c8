package comms

import (
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked synchronously in registration order on a
// goroutine owned by the underlying MQTT client. They must return
// quickly and perform no blocking work, retries or further I/O.
//
// Parameters:
//   - sender: The adapter instance that received the message
//   - message: The payload decoded as text. Go's byte-to-string
//     conversion never fails; invalid UTF-8 sequences are passed
//     through unmodified.
type MessageHandler func(sender *Adapter, message string)

// listener pairs a handler with a registration id so it can be removed.
type listener struct {
	id      uint64
	handler MessageHandler
}

// OnMessage registers a handler for inbound messages and returns a
// function that removes it again.
//
// With zero handlers registered, inbound messages are dropped silently.
// Registration and removal are safe for concurrent use.
func (a *Adapter) OnMessage(handler MessageHandler) (remove func()) {
	a.listenerMu.Lock()
	a.listenerSeq++
	id := a.listenerSeq
	a.listeners = append(a.listeners, listener{id: id, handler: handler})
	a.listenerMu.Unlock()

	return func() {
		a.listenerMu.Lock()
		defer a.listenerMu.Unlock()
		for i, l := range a.listeners {
			if l.id == id {
				a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
				return
			}
		}
	}
}

// handleInbound bridges the MQTT client's asynchronous delivery into
// the adapter's MessageReceived notification.
//
// The topic of origin is debug-traced only; consumers see the decoded
// text. Handler panics are recovered so a misbehaving consumer cannot
// kill the client's network loop.
func (a *Adapter) handleInbound(_ pahomqtt.Client, msg pahomqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			if logger := a.getLogger(); logger != nil {
				logger.Error("message handler panic recovered",
					"topic", msg.Topic(),
					"panic", r,
				)
			}
		}
	}()

	if logger := a.getLogger(); logger != nil {
		logger.Debug("message received", "topic", msg.Topic(), "bytes", len(msg.Payload()))
	}

	text := string(msg.Payload())

	a.listenerMu.RLock()
	snapshot := make([]listener, len(a.listeners))
	copy(snapshot, a.listeners)
	a.listenerMu.RUnlock()

	for _, l := range snapshot {
		l.handler(a, text)
	}
}

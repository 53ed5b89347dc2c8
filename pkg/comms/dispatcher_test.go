package comms

import (
	"bytes"
	"testing"
)

func TestOnMessage_Roundtrip(t *testing.T) {
	adapter, fake := newTestAdapter(t, testConfig())

	var received []string
	adapter.OnMessage(func(sender *Adapter, message string) {
		if sender != adapter {
			t.Error("handler sender is not the adapter instance")
		}
		received = append(received, message)
	})

	if err := adapter.Connect([]string{"status"}); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	fake.handler(nil, &fakeMessage{
		topic:   "fleet/broadcast/status",
		payload: []byte("pump online"),
	})

	if len(received) != 1 || received[0] != "pump online" {
		t.Errorf("received = %v, want exactly [\"pump online\"]", received)
	}
}

func TestOnMessage_RegistrationOrder(t *testing.T) {
	adapter, fake := newTestAdapter(t, testConfig())

	var order []int
	adapter.OnMessage(func(*Adapter, string) { order = append(order, 1) })
	adapter.OnMessage(func(*Adapter, string) { order = append(order, 2) })
	adapter.OnMessage(func(*Adapter, string) { order = append(order, 3) })

	if err := adapter.Connect(nil); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	fake.handler(nil, &fakeMessage{topic: "fleet/direct/device-42", payload: []byte("x")})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("invocation order = %v, want [1 2 3]", order)
	}
}

func TestOnMessage_Remove(t *testing.T) {
	adapter, fake := newTestAdapter(t, testConfig())

	calls := 0
	remove := adapter.OnMessage(func(*Adapter, string) { calls++ })

	if err := adapter.Connect(nil); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	msg := &fakeMessage{topic: "fleet/direct/device-42", payload: []byte("x")}
	fake.handler(nil, msg)
	remove()
	fake.handler(nil, msg)

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1 (removed after first delivery)", calls)
	}

	// Removing twice is harmless.
	remove()
}

func TestHandleInbound_NoListeners(t *testing.T) {
	adapter, fake := newTestAdapter(t, testConfig())

	if err := adapter.Connect(nil); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// Must not panic with zero consumers registered.
	fake.handler(nil, &fakeMessage{topic: "fleet/direct/device-42", payload: []byte("x")})
}

func TestHandleInbound_PanicRecovered(t *testing.T) {
	adapter, fake := newTestAdapter(t, testConfig())

	adapter.OnMessage(func(*Adapter, string) { panic("consumer bug") })

	if err := adapter.Connect(nil); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// A panicking consumer must not escape into the client's event loop.
	fake.handler(nil, &fakeMessage{topic: "fleet/direct/device-42", payload: []byte("x")})
}

func TestHandleInbound_InvalidUTF8PassedThrough(t *testing.T) {
	adapter, fake := newTestAdapter(t, testConfig())

	raw := []byte{0xff, 0xfe, 'h', 'i'}
	var got string
	adapter.OnMessage(func(_ *Adapter, message string) { got = message })

	if err := adapter.Connect(nil); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	fake.handler(nil, &fakeMessage{topic: "fleet/direct/device-42", payload: raw})

	if !bytes.Equal([]byte(got), raw) {
		t.Errorf("received bytes = %v, want original payload %v unmodified", []byte(got), raw)
	}
}

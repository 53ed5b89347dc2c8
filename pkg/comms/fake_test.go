package comms

import (
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/arenfeld/commlink/pkg/config"
)

// fakeToken implements pahomqtt.Token with an immediate result.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// publishCall records one Publish invocation on the fake client.
type publishCall struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient is an in-memory brokerClient for tests.
type fakeClient struct {
	mu sync.Mutex

	connectCalls    int
	disconnectCalls int
	connectErr      error
	subscribeErr    error
	publishErr      error

	connected bool

	// subscriptions records the filter map of each SubscribeMultiple
	// call; handler is the last registered message callback.
	subscriptions []map[string]byte
	handler       pahomqtt.MessageHandler

	publishes []publishCall
}

func (f *fakeClient) Connect() pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	if f.connectErr == nil {
		f.connected = true
	}
	return &fakeToken{err: f.connectErr}
}

func (f *fakeClient) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnectCalls++
	f.connected = false
}

func (f *fakeClient) SubscribeMultiple(filters map[string]byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr == nil {
		copied := make(map[string]byte, len(filters))
		for k, v := range filters {
			copied[k] = v
		}
		f.subscriptions = append(f.subscriptions, copied)
		f.handler = callback
	}
	return &fakeToken{err: f.subscribeErr}
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr == nil {
		f.publishes = append(f.publishes, publishCall{
			topic:    topic,
			qos:      qos,
			retained: retained,
			payload:  payload.([]byte),
		})
	}
	return &fakeToken{err: f.publishErr}
}

func (f *fakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// fakeMessage implements pahomqtt.Message for dispatcher tests.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

// testConfig returns a valid adapter configuration for tests.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Broker.ClientID = "device-42"
	cfg.Topics.Prefix = "fleet"
	return cfg
}

// newTestAdapter builds an adapter wired to a fake broker client.
// The newBrokerClient factory is restored when the test finishes.
func newTestAdapter(t *testing.T, cfg *config.Config) (*Adapter, *fakeClient) {
	t.Helper()

	fake := &fakeClient{}
	original := newBrokerClient
	newBrokerClient = func(*pahomqtt.ClientOptions) brokerClient {
		return fake
	}
	t.Cleanup(func() { newBrokerClient = original })

	adapter, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return adapter, fake
}

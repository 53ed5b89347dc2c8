package comms

import (
	"crypto/tls"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/arenfeld/commlink/pkg/config"
)

// brokerClient is the subset of the paho client the adapter uses.
// Narrowing the dependency to an interface lets tests inject a fake
// broker without network access.
type brokerClient interface {
	Connect() pahomqtt.Token
	Disconnect(quiesce uint)
	SubscribeMultiple(filters map[string]byte, callback pahomqtt.MessageHandler) pahomqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	IsConnected() bool
}

// newBrokerClient creates the underlying MQTT client.
// Overridable in tests.
var newBrokerClient = func(opts *pahomqtt.ClientOptions) brokerClient {
	return pahomqtt.NewClient(opts)
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Adapter exchanges text messages with peers through an MQTT broker
// using two-tier addressing: direct point-to-point topics and broadcast
// category topics.
//
// It owns exactly one broker client handle. The handle is allocated
// lazily on the first Connect call, reused by later Connect calls, torn
// down by Disconnect, and never recreated automatically.
//
// Lifecycle calls (Connect, Disconnect) must be serialized by the
// caller; they are expected to come from a single control goroutine.
// Message delivery arrives on a goroutine owned by the MQTT client and
// only touches the listener registry and the immutable configuration.
type Adapter struct {
	cfg        *config.Config
	topics     Topics
	clientName string
	address    string
	tlsConfig  *tls.Config

	// client is nil until the first Connect call allocates it.
	// Reads and writes are published under connMu so CanSend can be
	// polled concurrently with the (externally serialized) lifecycle
	// calls.
	client brokerClient

	// connected tracks whether the last Connect completed, including
	// its subscribe request. Written by lifecycle calls and by the
	// connection-lost handler.
	connected bool
	connMu    sync.RWMutex

	listeners   []listener
	listenerSeq uint64
	listenerMu  sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates an Adapter from configuration.
//
// CA certificate material is loaded and parsed here, before any connect
// attempt; malformed material makes the adapter unusable and surfaces
// as ErrInvalidCertificate. The local IPv4 address is resolved once for
// the ClientAddress property.
//
// When no client id is configured, a random one is generated. Note that
// a generated id changes the adapter's direct address on every start.
func New(cfg *config.Config) (*Adapter, error) {
	clientName := cfg.Broker.ClientID
	if clientName == "" {
		clientName = fmt.Sprintf("commlink-%s", uuid.NewString()[:8])
	}

	a := &Adapter{
		cfg:        cfg,
		topics:     Topics{Prefix: cfg.Topics.Prefix},
		clientName: clientName,
		address:    firstIPv4(),
	}

	if cfg.Broker.TLS {
		tlsConfig, err := newTLSConfig(cfg.Broker)
		if err != nil {
			return nil, err
		}
		a.tlsConfig = tlsConfig
	}

	return a, nil
}

// Connect establishes the broker session and subscribes to the
// adapter's topic set: its own direct topic plus one broadcast topic
// per category, all at QoS 1, issued as a single subscribe request.
//
// The call blocks until the connection and the subscription complete or
// fail. Failures surface synchronously and are not retried; the adapter
// stays disconnected and the caller decides retry policy.
//
// Connect is idempotent: a call that finds a live session is a no-op,
// and the categories argument is ignored on that path even when it
// differs from the original set. This mirrors long-standing behaviour
// that callers depend on; re-subscription happens only after an
// explicit Disconnect or a broker-initiated connection loss.
func (a *Adapter) Connect(categories []string) error {
	if a.CanSend() {
		return nil
	}

	if a.client == nil {
		opts := buildClientOptions(a.cfg, a.clientName, a.tlsConfig, a.handleConnectionLost, a.handleInbound)
		// The handle assignment is published under connMu so that
		// CanSend polled from another goroutine never races it.
		a.connMu.Lock()
		a.client = newBrokerClient(opts)
		a.connMu.Unlock()
	}

	token := a.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := a.subscribe(categories); err != nil {
		// Session is open but the topic set is not active; tear the
		// session down so a later Connect starts clean.
		a.client.Disconnect(defaultDisconnectQuiesce)
		return err
	}

	a.setConnected(true)

	if logger := a.getLogger(); logger != nil {
		logger.Debug("adapter connected",
			"client_id", a.clientName,
			"broker", a.cfg.Broker.Host,
		)
	}

	return nil
}

// subscribe issues one subscribe request covering the whole
// subscription set at QoS 1. The filter map collapses duplicate
// categories into a single filter; the broker treats duplicate
// subscribe requests idempotently, so the observable result is the
// same either way.
func (a *Adapter) subscribe(categories []string) error {
	set := a.topics.SubscriptionSet(a.clientName, categories)

	filters := make(map[string]byte, len(set))
	for _, topic := range set {
		filters[topic] = qosAtLeastOnce
	}

	if logger := a.getLogger(); logger != nil {
		logger.Debug("subscribing", "topics", set)
	}

	token := a.client.SubscribeMultiple(filters, a.handleInbound)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Disconnect closes the broker session, blocking briefly for pending
// operations. The handle is kept, so a later Connect reuses it and
// re-subscribes with whatever categories that call passes.
//
// Calling Disconnect before the first Connect is a caller-contract
// violation and returns ErrNotConnected.
func (a *Adapter) Disconnect() error {
	if a.client == nil {
		return fmt.Errorf("%w: never connected", ErrNotConnected)
	}

	a.client.Disconnect(defaultDisconnectQuiesce)
	a.setConnected(false)

	if logger := a.getLogger(); logger != nil {
		logger.Debug("adapter disconnected", "client_id", a.clientName)
	}

	return nil
}

// Publish sends a text message to every peer subscribed to the given
// broadcast category. The call blocks until the client acknowledges
// submission at QoS 1; broker-side persistence is not awaited.
func (a *Adapter) Publish(message, category string) error {
	return a.publish(a.topics.Broadcast(category), message)
}

// Send delivers a text message to the single peer whose client id is
// recipientID. Per standard pub/sub semantics there is no verification
// that the recipient is online or subscribed; an unheard message is
// silently lost.
func (a *Adapter) Send(message, recipientID string) error {
	return a.publish(a.topics.Direct(recipientID), message)
}

func (a *Adapter) publish(topic, message string) error {
	if !a.CanSend() {
		return ErrNotConnected
	}

	if logger := a.getLogger(); logger != nil {
		logger.Debug("publishing", "topic", topic, "bytes", len(message))
	}

	token := a.client.Publish(topic, qosAtLeastOnce, false, []byte(message))
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// CanSend reports whether a live broker session with an active
// subscription set exists. It turns false after Disconnect and after a
// broker-initiated connection loss; the adapter never reconnects on its
// own. Unlike the lifecycle calls, CanSend may be polled from any
// goroutine.
func (a *Adapter) CanSend() bool {
	a.connMu.RLock()
	connected := a.connected
	client := a.client
	a.connMu.RUnlock()
	return connected && client != nil && client.IsConnected()
}

// ClientName returns the configured (or generated) client identifier.
// It is both the broker session id and the adapter's direct address.
func (a *Adapter) ClientName() string {
	return a.clientName
}

// ClientAddress returns the local machine's first IPv4 address,
// resolved once at construction, or 127.0.0.1 when none was found.
func (a *Adapter) ClientAddress() string {
	return a.address
}

// SetLogger sets a logger for debug traces of topic names and for
// handler error reporting. Traces are observability only and never
// alter control flow. If no logger is set, the adapter is silent.
func (a *Adapter) SetLogger(logger Logger) {
	a.loggerMu.Lock()
	a.logger = logger
	a.loggerMu.Unlock()
}

func (a *Adapter) getLogger() Logger {
	a.loggerMu.RLock()
	defer a.loggerMu.RUnlock()
	return a.logger
}

// handleConnectionLost is called by the MQTT client when the broker
// drops the session. Liveness simply becomes false; a later Connect
// re-establishes the session and its subscriptions.
func (a *Adapter) handleConnectionLost(_ pahomqtt.Client, err error) {
	a.setConnected(false)

	if logger := a.getLogger(); logger != nil {
		logger.Warn("connection lost", "client_id", a.clientName, "error", err)
	}
}

func (a *Adapter) setConnected(connected bool) {
	a.connMu.Lock()
	a.connected = connected
	a.connMu.Unlock()
}

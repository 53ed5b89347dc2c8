package comms

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/arenfeld/commlink/pkg/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for the initial
	// connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish and
	// subscribe acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending
	// operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// qosAtLeastOnce is requested for every subscription and publish.
	// Messages may be delivered more than once but are never silently
	// dropped.
	qosAtLeastOnce byte = 1

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from adapter config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID for identification and direct addressing
//   - Authentication credentials (only when a username is configured)
//   - TLS configuration (only when enabled)
//   - Clean session mode
//
// Auto-reconnect is off: connection loss surfaces as CanSend() turning
// false, and the caller decides when to Connect again.
func buildClientOptions(cfg *config.Config, clientID string, tlsConfig *tls.Config, onLost pahomqtt.ConnectionLostHandler, onMessage pahomqtt.MessageHandler) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	opts.SetClientID(clientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Start fresh on connect; the subscription set is rebuilt by
	// every Connect call, not by broker session state.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	opts.SetConnectionLostHandler(onLost)
	opts.SetDefaultPublishHandler(onMessage)

	if cfg.Broker.TLS && tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	return opts
}

// newTLSConfig builds the TLS configuration for broker connections.
//
// CA material may be supplied inline (CAPEM) or as a file path (CAFile);
// inline material wins when both are set. With neither, the system
// certificate pool is used. Unreadable or unparsable material fails
// here, before any connect attempt.
func newTLSConfig(cfg config.BrokerConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tlsMinVersion,
	}

	pem := []byte(cfg.CAPEM)
	if len(pem) == 0 && cfg.CAFile != "" {
		data, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidCertificate, cfg.CAFile, err)
		}
		pem = data
	}

	if len(pem) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no PEM certificates found", ErrInvalidCertificate)
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}

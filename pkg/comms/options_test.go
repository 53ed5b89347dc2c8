package comms

import (
	"testing"
)

func TestBuildClientOptions_Defaults(t *testing.T) {
	cfg := testConfig()

	opts := buildClientOptions(cfg, "device-42", nil, nil, nil)

	if opts.ClientID != "device-42" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "device-42")
	}
	if len(opts.Servers) != 1 {
		t.Fatalf("Servers length = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://localhost:1883" {
		t.Errorf("broker URL = %q, want %q", got, "tcp://localhost:1883")
	}
	if !opts.CleanSession {
		t.Error("CleanSession = false, want true")
	}
	if opts.AutoReconnect {
		t.Error("AutoReconnect = true, want false (caller owns retry policy)")
	}
	if opts.ConnectRetry {
		t.Error("ConnectRetry = true, want false")
	}
}

func TestBuildClientOptions_CredentialsGatedOnUsername(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = ""
	cfg.Auth.Password = "ignored-without-username"

	opts := buildClientOptions(cfg, "device-42", nil, nil, nil)

	if opts.Username != "" {
		t.Errorf("Username = %q, want empty when no username configured", opts.Username)
	}
	if opts.Password != "" {
		t.Errorf("Password = %q, want empty when no username configured", opts.Password)
	}

	cfg.Auth.Username = "device"
	cfg.Auth.Password = "secret"

	opts = buildClientOptions(cfg, "device-42", nil, nil, nil)

	if opts.Username != "device" {
		t.Errorf("Username = %q, want %q", opts.Username, "device")
	}
	if opts.Password != "secret" {
		t.Errorf("Password = %q, want %q", opts.Password, "secret")
	}
}

func TestBuildClientOptions_TLSScheme(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = "broker.local"
	cfg.Broker.Port = 8883
	cfg.Broker.TLS = true

	tlsConfig, err := newTLSConfig(cfg.Broker)
	if err != nil {
		t.Fatalf("newTLSConfig() error = %v", err)
	}

	opts := buildClientOptions(cfg, "device-42", tlsConfig, nil, nil)

	if got := opts.Servers[0].String(); got != "ssl://broker.local:8883" {
		t.Errorf("broker URL = %q, want %q", got, "ssl://broker.local:8883")
	}
	if opts.TLSConfig != tlsConfig {
		t.Error("TLSConfig not attached when TLS is enabled")
	}
}

func TestBuildClientOptions_NoTLSConfigWithoutTLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = false

	opts := buildClientOptions(cfg, "device-42", nil, nil, nil)

	if opts.TLSConfig != nil && opts.TLSConfig.RootCAs != nil {
		t.Error("TLSConfig carries a CA pool although TLS is disabled")
	}
}

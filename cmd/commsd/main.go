// commsd is a small relay agent built on the commlink adapter.
//
// It connects to the configured MQTT broker, joins the configured
// broadcast categories, logs every message it receives, optionally
// records traffic metrics in InfluxDB and publishes a periodic
// heartbeat until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/arenfeld/commlink/pkg/comms"
	"github.com/arenfeld/commlink/pkg/config"
	"github.com/arenfeld/commlink/pkg/logging"
	"github.com/arenfeld/commlink/pkg/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual agent logic, separated from main for testability.
func run(ctx context.Context) error {
	configPath := pflag.StringP("config", "c", "configs/config.yaml", "path to configuration file")
	clientID := pflag.String("client-id", "", "override the configured client id")
	categories := pflag.StringSlice("categories", nil, "override the configured broadcast categories")
	pflag.Parse()

	log := logging.Default()
	log.Info("starting commsd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *clientID != "" {
		cfg.Broker.ClientID = *clientID
	}
	if len(*categories) > 0 {
		cfg.Topics.Categories = *categories
	}
	log.Info("configuration loaded", "path", *configPath)

	log = logging.New(cfg.Logging, version)

	// Optional traffic metrics.
	recorder, err := telemetry.Connect(cfg.Telemetry)
	switch {
	case errors.Is(err, telemetry.ErrDisabled):
		log.Info("telemetry disabled")
	case err != nil:
		return fmt.Errorf("connecting telemetry: %w", err)
	default:
		defer func() {
			log.Info("closing telemetry")
			if closeErr := recorder.Close(); closeErr != nil {
				log.Error("error closing telemetry", "error", closeErr)
			}
		}()
		recorder.SetOnError(func(writeErr error) {
			log.Warn("telemetry write failed", "error", writeErr)
		})
		log.Info("telemetry connected", "url", cfg.Telemetry.URL)
	}

	adapter, err := comms.New(cfg)
	if err != nil {
		return fmt.Errorf("building adapter: %w", err)
	}
	adapter.SetLogger(log.With("component", "comms"))

	adapter.OnMessage(func(a *comms.Adapter, message string) {
		log.Info("message received", "client_id", a.ClientName(), "message", message)
		if recorder != nil {
			recorder.WriteMessageTraffic(a.ClientName(), telemetry.DirectionReceived, len(message))
		}
	})

	if err := adapter.Connect(cfg.Topics.Categories); err != nil {
		return fmt.Errorf("connecting adapter: %w", err)
	}
	log.Info("adapter connected",
		"client_id", adapter.ClientName(),
		"client_address", adapter.ClientAddress(),
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"categories", cfg.Topics.Categories,
	)
	if recorder != nil {
		recorder.WriteConnectionEvent(adapter.ClientName(), "connect")
	}

	if cfg.Heartbeat.Enabled {
		go heartbeat(ctx, adapter, recorder, cfg.Heartbeat, log)
	}

	<-ctx.Done()

	log.Info("shutting down")
	if recorder != nil {
		recorder.WriteConnectionEvent(adapter.ClientName(), "disconnect")
	}
	if err := adapter.Disconnect(); err != nil {
		return fmt.Errorf("disconnecting adapter: %w", err)
	}

	return nil
}

// heartbeat publishes a liveness message under the configured category
// until the context is cancelled. Publish failures are logged and the
// loop carries on; the adapter never retries on its own.
func heartbeat(ctx context.Context, adapter *comms.Adapter, recorder *telemetry.Client, cfg config.HeartbeatConfig, log *logging.Logger) {
	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			message := fmt.Sprintf("%s alive at %s", adapter.ClientName(), time.Now().UTC().Format(time.RFC3339))
			if err := adapter.Publish(message, cfg.Category); err != nil {
				log.Warn("heartbeat publish failed", "error", err)
				continue
			}
			if recorder != nil {
				recorder.WriteMessageTraffic(adapter.ClientName(), telemetry.DirectionPublished, len(message))
			}
		}
	}
}

// Package logging provides structured logging for commlink agents.
//
// It wraps Go's standard log/slog package to give every agent a
// consistent, structured log format.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("adapter connected", "broker", cfg.Broker.Host)
//
// Never log secrets: broker passwords and telemetry tokens must not
// appear in log output.
package logging

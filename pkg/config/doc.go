// Package config loads and validates commlink agent configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides (COMMLINK_* prefix). Defaults target a local unauthenticated
// Mosquitto broker so that development works with an empty file.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	adapter, err := comms.New(cfg)
//
// Secrets (broker password, telemetry token) should be supplied via
// environment variables rather than committed to the YAML file.
package config

// Package config loads the application configuration from a YAML file with
// environment variable overrides.
//
// Precedence, lowest to highest: built-in defaults, the config file, then
// PACER_* environment variables:
//
//	PACER_BACKEND        engine backend ("mock" or "replay")
//	PACER_SESSION        session fixture path for the replay backend
//	PACER_POLL_INTERVAL  watch polling interval (Go duration, e.g. "500ms")
//	PACER_WORKERS        dispatcher worker count (1 = serialize all calls)
//	PACER_CALL_TIMEOUT   per-engine-call timeout ("0s" = none)
//	PACER_LOG_LEVEL      operator log level (debug, info, warn, error)
//
// Example config file:
//
//	backend: replay
//	session: sessions/demo.yaml
//	poll_interval: 1s
//	workers: 1
//	log_level: debug
package config

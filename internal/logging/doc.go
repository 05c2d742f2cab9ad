// Package logging provides centralized structured logging configuration and
// utilities for the R-Type core.
//
// This package wraps logrus to provide consistent logging across the ECS,
// network, coordinator, gameplay and game-loop packages. It supports
// environment-based configuration, multiple formatters, and contextual
// logging.
//
// # Configuration
//
// The logger can be configured via environment variables:
//   - LOG_LEVEL: Sets the minimum log level (debug, info, warn, error, fatal). Default: info
//   - LOG_FORMAT: Sets the output format (json, text). Default: text
//   - LOG_FILE: Optional path to write logs to instead of stdout.
//
// # Usage
//
// Initialize the logger once per process at startup:
//
//	logger, err := logging.NewLogger(logging.Config{
//	    Level:     logging.InfoLevel,
//	    Format:    logging.TextFormat,
//	    AddCaller: true,
//	})
//
// Use category helpers for context:
//
//	logging.NetworkLogger(logger, "12", "connected").Info("accepted client")
package logging

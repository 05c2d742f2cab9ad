package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the minimum log level.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	JSONFormat LogFormat = "json"
	TextFormat LogFormat = "text"
)

// Config holds logger configuration.
type Config struct {
	// Level sets the minimum log level
	Level LogLevel

	// Format sets the output format (json or text)
	Format LogFormat

	// AddCaller adds file and line number to log entries
	AddCaller bool

	// EnableColor enables colored output for text format
	EnableColor bool

	// OutputPath, when non-empty, directs log output to this file instead
	// of stdout. Opened append-only, created if missing.
	OutputPath string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:       InfoLevel,
		Format:      TextFormat,
		AddCaller:   true,
		EnableColor: true,
	}
}

// NewLogger creates a new configured logger instance. Initialization is
// explicit and per-process: there is no package-level singleton and no
// thread-local fallback, so every caller must hold and pass on the
// returned *logrus.Logger.
func NewLogger(config Config) (*logrus.Logger, error) {
	logger := logrus.New()

	logger.SetLevel(parseLogLevel(config.Level))

	switch config.Format {
	case JSONFormat:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "caller",
			},
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FullTimestamp:   true,
			ForceColors:     config.EnableColor,
			DisableColors:   !config.EnableColor,
		})
	}

	logger.SetReportCaller(config.AddCaller)

	if config.OutputPath != "" {
		f, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		logger.SetOutput(f)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger, nil
}

// NewLoggerFromEnv creates a logger configured from environment variables.
// Reads LOG_LEVEL, LOG_FORMAT and LOG_FILE.
func NewLoggerFromEnv() (*logrus.Logger, error) {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = LogLevel(strings.ToLower(level))
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = LogFormat(strings.ToLower(format))
	}
	if path := os.Getenv("LOG_FILE"); path != "" {
		config.OutputPath = path
	}

	return NewLogger(config)
}

func parseLogLevel(level LogLevel) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// WithContext creates a logger with standard context fields.
func WithContext(logger *logrus.Logger, fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// EcsLogger creates a logger with ECS substrate context (entity/component
// lifecycle, system registration).
func EcsLogger(logger *logrus.Logger, subsystem string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"subsystem": subsystem,
		"category":  "ecs",
	})
}

// EntityLogger creates a logger with entity context.
func EntityLogger(logger *logrus.Logger, entityID uint32) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"entityID": entityID,
		"category": "ecs",
	})
}

// NetworkLogger creates a logger with network context.
func NetworkLogger(logger *logrus.Logger, playerID string, connectionState string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"playerID":        playerID,
		"connectionState": connectionState,
		"category":        "network",
	})
}

// CoordinatorLogger creates a logger with coordinator (ECS<->protocol
// bridge) context.
func CoordinatorLogger(logger *logrus.Logger, packetType string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"packetType": packetType,
		"category":   "coordinator",
	})
}

// GameLoopLogger creates a logger with game loop context.
func GameLoopLogger(logger *logrus.Logger, role string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"role":     role,
		"category": "gameloop",
	})
}

// PerformanceLogger creates a logger with performance metrics context.
func PerformanceLogger(logger *logrus.Logger, operation string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"operation": operation,
		"category":  "performance",
	})
}

package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/opd-ai/rtype/internal/logging"
)

// ServerFile is the optional TOML overlay for server settings
// (spec.md §6 "ambient addition: both CLI flags and an optional TOML
// configuration file are supported"). CLI flags always win over a
// loaded file's values.
type ServerFile struct {
	Port      uint16      `toml:"port"`
	MaxPlayer uint32      `toml:"max_player"`
	TickRate  uint32      `toml:"tick_rate"`
	Logging   LoggingFile `toml:"logging"`
}

// LoggingFile mirrors internal/logging.Config's file-facing fields.
type LoggingFile struct {
	Level       string `toml:"level"`
	Format      string `toml:"format"`
	AddCaller   bool   `toml:"add_caller"`
	EnableColor bool   `toml:"enable_color"`
	OutputPath  string `toml:"output_path"`
}

// Server is the fully-resolved server configuration, ready to hand to
// pkg/network.ServerConfig and internal/logging.NewLogger.
type Server struct {
	Port       uint16
	MaxPlayer  uint32
	TickRate   uint32
	ConfigFile string
	Logging    logging.Config
	Help       bool
}

// DefaultServer matches spec.md §6's documented server defaults.
func DefaultServer() Server {
	return Server{
		Port:      4242,
		MaxPlayer: 16,
		TickRate:  60,
		Logging:   logging.DefaultConfig(),
	}
}

// ParseServerArgs resolves a Server from defaults, an optional TOML
// file (-c/--config), and CLI flags in that order of precedence. A
// validation failure returns an error the caller should report and
// exit with code 84 (spec.md §6). Requesting -h/--help returns
// (cfg, true, nil); the flag set is not returned, so the caller prints
// its own usage text and exits 0.
func ParseServerArgs(args []string) (Server, bool, error) {
	cfg := DefaultServer()

	fs := flag.NewFlagSet("rtype-server", flag.ContinueOnError)
	var port uint
	var maxPlayer uint
	var tickRate uint
	var configPath string
	var logLevel, logFormat, logOutput string

	fs.UintVar(&port, "p", uint(cfg.Port), "listen port (1-65535)")
	fs.UintVar(&port, "port", uint(cfg.Port), "listen port (1-65535)")
	fs.UintVar(&maxPlayer, "mp", uint(cfg.MaxPlayer), "slot capacity (1-1000)")
	fs.UintVar(&maxPlayer, "maxplayer", uint(cfg.MaxPlayer), "slot capacity (1-1000)")
	fs.UintVar(&tickRate, "tr", uint(cfg.TickRate), "tick rate in Hz (1-1000)")
	fs.UintVar(&tickRate, "tickrate", uint(cfg.TickRate), "tick rate in Hz (1-1000)")
	fs.StringVar(&configPath, "c", "", "optional TOML config file")
	fs.StringVar(&configPath, "config", "", "optional TOML config file")
	fs.StringVar(&logLevel, "log-level", string(cfg.Logging.Level), "log level (debug|info|warn|error|fatal)")
	fs.StringVar(&logFormat, "log-format", string(cfg.Logging.Format), "log format (text|json)")
	fs.StringVar(&logOutput, "log-output", cfg.Logging.OutputPath, "log output file path (default stdout)")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cfg, true, nil
		}
		return cfg, false, fmt.Errorf("parse flags: %w", err)
	}

	if configPath != "" {
		overlaid, err := loadServerFile(cfg, configPath)
		if err != nil {
			return cfg, false, err
		}
		cfg = overlaid
		cfg.ConfigFile = configPath

		// Flags explicitly set on the command line still override the
		// file; re-apply any flag whose value differs from its default
		// only when the user actually passed it.
		fs.Visit(func(f *flag.Flag) {
			applyFlagOverride(&cfg, f.Name, port, maxPlayer, tickRate, logLevel, logFormat, logOutput)
		})
	} else {
		cfg.Port = uint16(port)
		cfg.MaxPlayer = uint32(maxPlayer)
		cfg.TickRate = uint32(tickRate)
		cfg.Logging.Level = logging.LogLevel(logLevel)
		cfg.Logging.Format = logging.LogFormat(logFormat)
		cfg.Logging.OutputPath = logOutput
	}

	if err := validateServer(cfg); err != nil {
		return cfg, false, err
	}
	return cfg, false, nil
}

func applyFlagOverride(cfg *Server, name string, port, maxPlayer, tickRate uint, logLevel, logFormat, logOutput string) {
	switch name {
	case "p", "port":
		cfg.Port = uint16(port)
	case "mp", "maxplayer":
		cfg.MaxPlayer = uint32(maxPlayer)
	case "tr", "tickrate":
		cfg.TickRate = uint32(tickRate)
	case "log-level":
		cfg.Logging.Level = logging.LogLevel(logLevel)
	case "log-format":
		cfg.Logging.Format = logging.LogFormat(logFormat)
	case "log-output":
		cfg.Logging.OutputPath = logOutput
	}
}

func loadServerFile(base Server, path string) (Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	var file ServerFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg := base
	if file.Port != 0 {
		cfg.Port = file.Port
	}
	if file.MaxPlayer != 0 {
		cfg.MaxPlayer = file.MaxPlayer
	}
	if file.TickRate != 0 {
		cfg.TickRate = file.TickRate
	}
	if file.Logging.Level != "" {
		cfg.Logging.Level = logging.LogLevel(file.Logging.Level)
	}
	if file.Logging.Format != "" {
		cfg.Logging.Format = logging.LogFormat(file.Logging.Format)
	}
	cfg.Logging.AddCaller = file.Logging.AddCaller
	cfg.Logging.EnableColor = file.Logging.EnableColor
	if file.Logging.OutputPath != "" {
		cfg.Logging.OutputPath = file.Logging.OutputPath
	}
	return cfg, nil
}

func validateServer(cfg Server) error {
	if cfg.Port == 0 {
		return fmt.Errorf("port must be in range 1-65535, got %d", cfg.Port)
	}
	if cfg.MaxPlayer == 0 || cfg.MaxPlayer > 1000 {
		return fmt.Errorf("maxplayer must be in range 1-1000, got %d", cfg.MaxPlayer)
	}
	if cfg.TickRate == 0 || cfg.TickRate > 1000 {
		return fmt.Errorf("tickrate must be in range 1-1000, got %d", cfg.TickRate)
	}
	return nil
}

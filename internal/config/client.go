package config

import (
	"fmt"
	"strconv"

	"github.com/opd-ai/rtype/internal/logging"
)

// DefaultClientHost, DefaultClientPort and DefaultPlayerName are the
// client's positional-argument fallbacks per spec.md §6: "missing
// values default to localhost:4242 and a fixed placeholder name."
const (
	DefaultClientHost = "localhost"
	DefaultClientPort = 4242
	DefaultPlayerName = "player"
)

// Client is the fully-resolved client configuration.
type Client struct {
	Host       string
	Port       uint16
	PlayerName string
	Logging    logging.Config
}

// DefaultClient returns the client's positional-argument fallbacks.
func DefaultClient() Client {
	return Client{
		Host:       DefaultClientHost,
		Port:       DefaultClientPort,
		PlayerName: DefaultPlayerName,
		Logging:    logging.DefaultConfig(),
	}
}

// ParseClientArgs resolves a Client from up to three positional
// arguments: host, port, player name. Any suffix may be omitted; a
// present but invalid port fails validation (exit code 84 at the
// caller).
func ParseClientArgs(args []string) (Client, error) {
	cfg := DefaultClient()

	if len(args) > 0 && args[0] != "" {
		cfg.Host = args[0]
	}
	if len(args) > 1 && args[1] != "" {
		port, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil || port == 0 {
			return cfg, fmt.Errorf("invalid port %q: must be 1-65535", args[1])
		}
		cfg.Port = uint16(port)
	}
	if len(args) > 2 && args[2] != "" {
		cfg.PlayerName = args[2]
	}
	return cfg, nil
}

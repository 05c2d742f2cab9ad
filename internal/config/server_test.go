package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/internal/config"
)

func TestParseServerArgsDefaults(t *testing.T) {
	cfg, help, err := config.ParseServerArgs(nil)
	require.NoError(t, err)
	require.False(t, help)
	require.Equal(t, uint16(4242), cfg.Port)
	require.Equal(t, uint32(16), cfg.MaxPlayer)
	require.Equal(t, uint32(60), cfg.TickRate)
}

func TestParseServerArgsFlagsOverrideDefaults(t *testing.T) {
	cfg, help, err := config.ParseServerArgs([]string{"-p", "7000", "--maxplayer", "32", "-tr", "30"})
	require.NoError(t, err)
	require.False(t, help)
	require.Equal(t, uint16(7000), cfg.Port)
	require.Equal(t, uint32(32), cfg.MaxPlayer)
	require.Equal(t, uint32(30), cfg.TickRate)
}

func TestParseServerArgsHelpFlag(t *testing.T) {
	_, help, err := config.ParseServerArgs([]string{"-h"})
	require.NoError(t, err)
	require.True(t, help)
}

func TestParseServerArgsRejectsOutOfRangeTickRate(t *testing.T) {
	_, _, err := config.ParseServerArgs([]string{"-tr", "2000"})
	require.Error(t, err)
}

func TestParseServerArgsRejectsOutOfRangeMaxPlayer(t *testing.T) {
	_, _, err := config.ParseServerArgs([]string{"-mp", "5000"})
	require.Error(t, err)
}

func TestParseServerArgsFileOverlayThenFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 9000
max_player = 8
tick_rate = 20
`), 0o644))

	cfg, _, err := config.ParseServerArgs([]string{"-c", path})
	require.NoError(t, err)
	require.Equal(t, uint16(9000), cfg.Port)
	require.Equal(t, uint32(8), cfg.MaxPlayer)
	require.Equal(t, uint32(20), cfg.TickRate)

	cfg, _, err = config.ParseServerArgs([]string{"-c", path, "-p", "9999"})
	require.NoError(t, err)
	require.Equal(t, uint16(9999), cfg.Port)
	require.Equal(t, uint32(8), cfg.MaxPlayer)
}

func TestParseServerArgsMissingFileReturnsError(t *testing.T) {
	_, _, err := config.ParseServerArgs([]string{"-c", "/does/not/exist.toml"})
	require.Error(t, err)
}

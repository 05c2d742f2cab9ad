//go:build !android && !ios

// Command server runs the authoritative r-type game server: it owns the
// ECS world, drives the fixed-timestep game loop, and accepts UDP
// connections from clients. See spec.md §6 for the CLI contract.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/rtype/internal/config"
	"github.com/opd-ai/rtype/internal/logging"
	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/gameloop"
	"github.com/opd-ai/rtype/pkg/gameplay"
	"github.com/opd-ai/rtype/pkg/network"
)

// worldBounds and collisionCellSize size the playfield and the spatial
// hash MovementSystem/CollisionSystem use; spec.md leaves both to the
// host application.
var (
	worldBounds       = gameplay.Bounds{MinX: 0, MinY: 0, MaxX: 1920, MaxY: 1080}
	collisionCellSize = 64.0
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, help, err := config.ParseServerArgs(args)
	if help {
		fmt.Println(serverUsage())
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 84
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 84
	}

	if err := runServer(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited with error")
		return 84
	}
	return 0
}

func runServer(cfg config.Server, logger *logrus.Logger) error {
	world := ecs.NewWorld()
	coord := coordinator.New(world, true, logger)

	if _, err := gameplay.RegisterAll(world, coord, worldBounds, collisionCellSize); err != nil {
		return fmt.Errorf("register gameplay systems: %w", err)
	}

	serverManager, err := network.NewServerManager(network.ServerConfig{
		BindAddr:   fmt.Sprintf(":%d", cfg.Port),
		MaxPlayers: int(cfg.MaxPlayer),
		TickRate:   cfg.TickRate,
		Logger:     logger,
		Handler:    coord,
	})
	if err != nil {
		return fmt.Errorf("bind server socket: %w", err)
	}

	loop := gameloop.New(gameloop.Config{
		Role:        gameloop.RoleServer,
		TickRate:    cfg.TickRate,
		World:       world,
		Coordinator: coord,
		Network:     serverManager,
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("port", cfg.Port).
		WithField("max_players", cfg.MaxPlayer).
		WithField("tick_rate", cfg.TickRate).
		Info("server starting")

	return loop.Run(ctx)
}

func serverUsage() string {
	return `Usage: server [options]

Options:
  -p, --port <port>         UDP port to listen on (default 4242)
  -mp, --maxplayer <n>      maximum connected players (default 16)
  -tr, --tickrate <hz>      simulation tick rate (default 60)
  -c, --config <path>       TOML config file overlay
  -h, --help                show this help and exit`
}

//go:build !android && !ios
// +build !android,!ios

// Package main runs the desktop r-type client: it connects to a server
// over UDP, renders the ECS world with ebiten, and reports local input
// every tick. See spec.md §6 for the CLI contract.
package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/rtype/internal/config"
	"github.com/opd-ai/rtype/internal/logging"
	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/gameloop"
	"github.com/opd-ai/rtype/pkg/gameplay"
	"github.com/opd-ai/rtype/pkg/network"
)

const (
	screenWidth  = 1920
	screenHeight = 1080
)

var worldBounds = gameplay.Bounds{MinX: 0, MinY: 0, MaxX: screenWidth, MaxY: screenHeight}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.ParseClientArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 84
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 84
	}

	if err := runClient(cfg, logger); err != nil {
		logger.WithError(err).Error("client exited with error")
		return 84
	}
	return 0
}

func runClient(cfg config.Client, logger *logrus.Logger) error {
	world := ecs.NewWorld()
	coord := coordinator.New(world, false, logger)

	if _, err := gameplay.RegisterAll(world, coord, worldBounds, 64.0); err != nil {
		return fmt.Errorf("register gameplay systems: %w", err)
	}

	clientManager, err := network.NewClientManager(network.ClientConfig{
		ServerAddr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		PlayerName: cfg.PlayerName,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	logger.WithField("server_addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)).Info("connecting to server")
	if err := clientManager.Connect(); err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}
	coord.SetLocalPlayer(clientManager.PlayerID())
	logger.WithField("player_id", clientManager.PlayerID()).Info("connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go clientManager.Start(ctx)
	defer func() {
		stop()
		_ = clientManager.Stop()
	}()

	game := newClientGame(world, coord, clientManager, logger)

	ebiten.SetWindowSize(screenWidth/2, screenHeight/2)
	ebiten.SetWindowTitle(fmt.Sprintf("r-type — %s", cfg.PlayerName))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(gameloop.DefaultTickRate)

	return ebiten.RunGame(game)
}

// clientGame implements ebiten.Game. ebiten.RunGame owns the single
// render/update thread, and pkg/ecs.World carries no internal
// synchronization (matching the teacher's single-threaded World), so
// the fixed-step simulation tick runs inline from Update rather than on
// pkg/gameloop.Loop's own goroutine; gameloop.Loop remains the driver
// for the server and for non-rendering client harnesses. Network I/O
// still runs on its own goroutine (ClientManager.Start), matching
// spec.md §5's two-thread model.
type clientGame struct {
	world *ecs.World
	coord *coordinator.Coordinator
	net   *network.ClientManager
	log   *logrus.Entry

	tickBudget time.Duration
	clientSeq  uint32
	quit       bool
}

func newClientGame(w *ecs.World, coord *coordinator.Coordinator, net *network.ClientManager, logger *logrus.Logger) *clientGame {
	return &clientGame{
		world:      w,
		coord:      coord,
		net:        net,
		log:        logging.GameLoopLogger(logger, "client"),
		tickBudget: time.Second / gameloop.DefaultTickRate,
	}
}

func (g *clientGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.quit = true
	}
	if g.quit {
		return ebiten.Termination
	}

	g.pollLocalInput()

	for _, pkt := range g.net.FetchIncoming() {
		if err := g.coord.Dispatch(pkt, g.net); err != nil {
			g.log.WithError(err).Warn("dispatch failed")
		}
	}

	g.world.Update(g.tickBudget.Seconds())

	g.clientSeq++
	out, err := g.coord.ProduceClientTick(g.clientSeq, nowMS())
	if err != nil {
		g.log.WithError(err).Error("produce client tick")
		return nil
	}
	for _, pkt := range out {
		g.net.QueueOutgoing(pkt)
	}
	return nil
}

// pollLocalInput writes the local player's current key state into its
// InputComponent; ShootingSystem and the movement stage of the gameplay
// pipeline read it back on the same tick.
func (g *clientGame) pollLocalInput() {
	localID := g.coord.LocalPlayerID()
	if localID == 0 {
		return
	}
	store, err := ecs.Store[ecs.InputComponent](g.world)
	if err != nil {
		return
	}
	var found bool
	store.Each(func(id ecs.EntityID, in ecs.InputComponent) {
		if found || in.PlayerID != localID {
			return
		}
		found = true
		in.Actions = map[ecs.InputAction]bool{
			ecs.ActionMoveUp:      ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp),
			ecs.ActionMoveDown:    ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown),
			ecs.ActionMoveLeft:    ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft),
			ecs.ActionMoveRight:   ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight),
			ecs.ActionFirePrimary: ebiten.IsKeyPressed(ebiten.KeySpace),
		}
		in.SequenceNum = g.clientSeq
		store.Set(id, in)
	})
}

func (g *clientGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{10, 10, 20, 255})

	store, err := ecs.Store[ecs.Transform](g.world)
	if err != nil {
		return
	}
	store.Each(func(id ecs.EntityID, t ecs.Transform) {
		w, h := float32(16), float32(16)
		if hb, err := ecs.GetComponent[ecs.HitBox](g.world, id); err == nil {
			w, h = float32(hb.Width), float32(hb.Height)
		}
		col := color.RGBA{200, 200, 200, 255}
		if sp, err := ecs.GetComponent[ecs.Sprite](g.world, id); err == nil {
			col = color.RGBA{sp.R, sp.G, sp.B, sp.A}
		}
		x, y := float32(t.X)-w/2, float32(t.Y)-h/2
		vector.DrawFilledRect(screen, x, y, w, h, col, false)
	})

	if health, err := g.localPlayerHealth(); err == nil {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("HP %d/%d", health.Current, health.Max))
	}
}

func (g *clientGame) localPlayerHealth() (ecs.Health, error) {
	localID := g.coord.LocalPlayerID()
	store, err := ecs.Store[ecs.InputComponent](g.world)
	if err != nil {
		return ecs.Health{}, err
	}
	var playerEntity ecs.EntityID
	store.Each(func(id ecs.EntityID, in ecs.InputComponent) {
		if in.PlayerID == localID {
			playerEntity = id
		}
	})
	if playerEntity == ecs.InvalidEntityID {
		return ecs.Health{}, fmt.Errorf("no local player entity")
	}
	return ecs.GetComponent[ecs.Health](g.world, playerEntity)
}

func (g *clientGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func nowMS() uint32 {
	return uint32(time.Now().UnixMilli())
}

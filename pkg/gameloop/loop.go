package gameloop

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/rtype/internal/logging"
	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network"
)

// Role selects which half of Coordinator's protocol surface a tick
// drives, per spec.md §4.7.
type Role int

const (
	RoleServer Role = iota
	RoleClient
	RoleStandalone
)

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	case RoleStandalone:
		return "standalone"
	default:
		return "unknown"
	}
}

// DefaultTickRate is the ~60Hz tick budget spec.md §4.7 names as the
// default.
const DefaultTickRate = 60

// DefaultMaxCatchUpTicks bounds how many ticks a single iteration will
// drain before discarding leftover debt.
const DefaultMaxCatchUpTicks = 5

// NetworkManager is the subset of network.ServerManager/ClientManager
// the loop needs: pull this iteration's inbound batch, push this tick's
// outbound batch. Both concrete managers satisfy this structurally.
type NetworkManager interface {
	FetchIncoming() []network.InboundPacket
	QueueOutgoing(pkt network.OutboundPacket)
	Start(ctx context.Context)
	Stop() error
}

// RenderHook is the CLIENT/STANDALONE render step, expressed as a
// collaborator so pkg/gameloop never imports a rendering library
// directly (spec.md §9's "keep rendering as an external collaborator").
// cmd/client does not use Loop or RenderHook; it implements ebiten.Game
// and runs the tick sequence itself.
type RenderHook interface {
	// PollEvents reports whether the window/process should keep
	// running; returning false stops the loop (e.g. window closed).
	PollEvents() bool
	// Render draws one frame from the ECS world's current state.
	Render(w *ecs.World)
}

// Config configures a Loop.
type Config struct {
	Role            Role
	TickRate        uint32 // ticks per second; defaults to DefaultTickRate
	MaxCatchUpTicks int    // defaults to DefaultMaxCatchUpTicks
	World           *ecs.World
	Coordinator     *coordinator.Coordinator
	Network         NetworkManager
	Render          RenderHook // nil for RoleServer
	Logger          *logrus.Logger
}

// Loop is the role-aware fixed-timestep driver. Exactly one Loop owns
// the main/game-loop thread described in spec.md §5; Network owns the
// I/O thread.
type Loop struct {
	role            Role
	tickBudget      time.Duration
	maxCatchUpTicks int
	world           *ecs.World
	coord           *coordinator.Coordinator
	net             NetworkManager
	render          RenderHook
	log             *logrus.Entry

	worldTick uint32
	clientSeq uint32
}

// New builds a Loop from cfg, filling in defaults for zero-valued
// fields.
func New(cfg Config) *Loop {
	rate := cfg.TickRate
	if rate == 0 {
		rate = DefaultTickRate
	}
	catchUp := cfg.MaxCatchUpTicks
	if catchUp <= 0 {
		catchUp = DefaultMaxCatchUpTicks
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Loop{
		role:            cfg.Role,
		tickBudget:      time.Second / time.Duration(rate),
		maxCatchUpTicks: catchUp,
		world:           cfg.World,
		coord:           cfg.Coordinator,
		net:             cfg.Network,
		render:          cfg.Render,
		log:             logging.GameLoopLogger(logger, cfg.Role.String()),
	}
}

// Run drives the loop until ctx is cancelled, the network manager's
// goroutine fails, or (CLIENT/STANDALONE) the render hook reports the
// window closed. It starts Network on its own goroutine via an
// errgroup, matching spec.md §5's two-thread model: this goroutine owns
// the ECS/systems, Network's goroutine owns the socket exclusively.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		l.net.Start(ctx)
		return nil
	})

	group.Go(func() error {
		defer cancel()
		return l.runFixedStep(ctx)
	})

	err := group.Wait()
	if stopErr := l.net.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

// runFixedStep is the steady-state loop body from spec.md §4.7: compute
// elapsed time, accumulate debt, drain it in whole-tick steps bounded by
// maxCatchUpTicks, then (CLIENT/STANDALONE) poll window events and
// render one frame.
func (l *Loop) runFixedStep(ctx context.Context) error {
	ticker := time.NewTicker(l.tickBudget)
	defer ticker.Stop()

	var debt time.Duration
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			debt += elapsed

			ran := 0
			for debt >= l.tickBudget && ran < l.maxCatchUpTicks {
				l.tick()
				debt -= l.tickBudget
				ran++
			}
			if ran == l.maxCatchUpTicks && debt >= l.tickBudget {
				l.log.WithField("dropped", debt).Warn("catch-up bound reached, discarding backlog")
				debt = 0
			}

			if l.role != RoleServer && l.render != nil {
				if !l.render.PollEvents() {
					return nil
				}
				l.render.Render(l.world)
			}
		}
	}
}

// tick runs exactly one fixed-size simulation step: drain inbound,
// dispatch through the coordinator, advance every ECS system, produce
// this tick's outbound batch, and enqueue it. SERVER and STANDALONE run
// the authoritative server-side tick, matching the original's
// "STANDALONE uses server logic locally" note; STANDALONE adds no
// client-side step to it.
func (l *Loop) tick() {
	dt := l.tickBudget.Seconds()
	now := nowMS()

	for _, pkt := range l.net.FetchIncoming() {
		if err := l.coord.Dispatch(pkt, l.net); err != nil {
			l.log.WithError(err).WithField("packet_type", pkt.Header.Type).Warn("dispatch failed")
		}
	}

	l.world.Update(dt)

	var out []network.OutboundPacket
	switch l.role {
	case RoleClient:
		l.clientSeq++
		var err error
		out, err = l.coord.ProduceClientTick(l.clientSeq, now)
		if err != nil {
			l.log.WithError(err).Error("produce client tick")
			return
		}
	default: // RoleServer, RoleStandalone
		l.worldTick++
		out = l.coord.ProduceServerTick(l.worldTick, now)
	}

	for _, pkt := range out {
		l.net.QueueOutgoing(pkt)
	}
}

func nowMS() uint32 {
	return uint32(time.Now().UnixMilli())
}

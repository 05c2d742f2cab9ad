package gameplay

import (
	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
)

// Systems holds every gameplay system registered by RegisterAll, so
// callers (and tests) can reach a specific stage after wiring — e.g. to
// inspect CollisionSystem.Kills() directly.
type Systems struct {
	Input       *InputSystem
	AI          *AISystem
	Movement    *MovementSystem
	Shooting    *ShootingSystem
	Collision   *CollisionSystem
	Level       *LevelSystem
	Scoring     *ScoringSystem
	Bookkeeping *BookkeepingSystem
}

// RegisterAll builds and attaches the full gameplay pipeline to w, in
// the fixed order input -> AI -> movement -> shooting -> collision ->
// level -> scoring -> bookkeeping. Each system is registered with a
// zero Signature so it runs for every tick regardless of which
// components an individual entity carries; systems filter their own
// relevant component stores internally via ecs.Store.
func RegisterAll(w *ecs.World, coord *coordinator.Coordinator, bounds Bounds, collisionCellSize float64) (*Systems, error) {
	sys := &Systems{
		Input:       NewInputSystem(DefaultMoveSpeed),
		AI:          NewAISystem(),
		Movement:    NewMovementSystem(bounds),
		Shooting:    NewShootingSystem(coord),
		Collision:   NewCollisionSystem(coord, collisionCellSize),
		Bookkeeping: NewBookkeepingSystem(coord),
	}
	sys.Level = NewLevelSystem(sys.Collision)
	sys.Scoring = NewScoringSystem(sys.Collision)

	var sig ecs.Signature
	ordered := []ecs.System{
		sys.Input,
		sys.AI,
		sys.Movement,
		sys.Shooting,
		sys.Collision,
		sys.Level,
		sys.Scoring,
		sys.Bookkeeping,
	}
	for _, s := range ordered {
		if err := w.AddSystem(s, sig); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

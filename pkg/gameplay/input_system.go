package gameplay

import "github.com/opd-ai/rtype/pkg/ecs"

// DefaultMoveSpeed is the units/second a full-strength directional input
// applies, matching the client-side Predictor's default assumption.
const DefaultMoveSpeed = 200.0

const diagonalScale = 0.7071067811865476 // 1/sqrt(2)

// InputSystem is the first stage of the per-tick pipeline: it turns each
// entity's latest InputComponent action set into a Velocity. Grounded in
// the teacher's movement.go SetVelocity helper, generalized from a
// one-off setter into a system that runs every tick for every
// input-driven entity.
type InputSystem struct {
	ecs.BaseSystem
	Speed float64
}

// NewInputSystem builds an InputSystem; speed <= 0 falls back to
// DefaultMoveSpeed.
func NewInputSystem(speed float64) *InputSystem {
	if speed <= 0 {
		speed = DefaultMoveSpeed
	}
	return &InputSystem{Speed: speed}
}

func (s *InputSystem) Name() string { return "input" }

func (s *InputSystem) OnUpdate(w *ecs.World, dt float64) {
	store, err := ecs.Store[ecs.InputComponent](w)
	if err != nil {
		return
	}
	store.Each(func(id ecs.EntityID, in ecs.InputComponent) {
		if !ecs.HasComponent[ecs.Velocity](w, id) {
			return
		}
		var vx, vy float64
		if in.Actions[ecs.ActionMoveUp] {
			vy -= 1
		}
		if in.Actions[ecs.ActionMoveDown] {
			vy += 1
		}
		if in.Actions[ecs.ActionMoveLeft] {
			vx -= 1
		}
		if in.Actions[ecs.ActionMoveRight] {
			vx += 1
		}
		if vx != 0 && vy != 0 {
			vx *= diagonalScale
			vy *= diagonalScale
		}
		_ = ecs.AddComponent(w, id, ecs.Velocity{VX: vx * s.Speed, VY: vy * s.Speed})
	})
}

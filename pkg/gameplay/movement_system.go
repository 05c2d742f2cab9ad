package gameplay

import "github.com/opd-ai/rtype/pkg/ecs"

// Bounds is an axis-aligned play-field rectangle. A zero value disables
// clamping, matching the teacher's movement.go "bounds are optional" rule.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) empty() bool {
	return b.MinX == 0 && b.MinY == 0 && b.MaxX == 0 && b.MaxY == 0
}

// clamp restricts x,y to the rectangle, zeroing the matching velocity
// component when a side is hit, mirroring the teacher's non-wrapping
// boundary behavior.
func (b Bounds) clamp(x, y, vx, vy float64) (cx, cy, cvx, cvy float64) {
	cx, cy, cvx, cvy = x, y, vx, vy
	if cx < b.MinX {
		cx, cvx = b.MinX, 0
	} else if cx > b.MaxX {
		cx, cvx = b.MaxX, 0
	}
	if cy < b.MinY {
		cy, cvy = b.MinY, 0
	} else if cy > b.MaxY {
		cy, cvy = b.MaxY, 0
	}
	return
}

// MovementSystem integrates Transform from Velocity every tick, the
// third stage of the pipeline (after AI, before shooting). Grounded in
// the teacher's movement.go position-from-velocity integration and
// boundary clamp.
type MovementSystem struct {
	ecs.BaseSystem
	Bounds Bounds
}

// NewMovementSystem builds a MovementSystem with the given play-field
// bounds (zero value = unbounded).
func NewMovementSystem(bounds Bounds) *MovementSystem {
	return &MovementSystem{Bounds: bounds}
}

func (s *MovementSystem) Name() string { return "movement" }

func (s *MovementSystem) OnUpdate(w *ecs.World, dt float64) {
	store, err := ecs.Store[ecs.Transform](w)
	if err != nil {
		return
	}
	velStore, err := ecs.Store[ecs.Velocity](w)
	if err != nil {
		return
	}
	store.Each(func(id ecs.EntityID, t ecs.Transform) {
		vel, ok := velStore.Get(id)
		if !ok {
			return
		}
		t.X += vel.VX * dt
		t.Y += vel.VY * dt
		if !s.Bounds.empty() {
			var cvx, cvy float64
			t.X, t.Y, cvx, cvy = s.Bounds.clamp(t.X, t.Y, vel.VX, vel.VY)
			if cvx != vel.VX || cvy != vel.VY {
				velStore.Set(id, ecs.Velocity{VX: cvx, VY: cvy})
			}
		}
		store.Set(id, t)
	})
}

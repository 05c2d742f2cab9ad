package gameplay

import (
	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

// chargeRegenPerSecond is how fast an unused Force regenerates charge,
// grounded in the teacher's animation_system.go per-tick accumulator
// pattern, generalized from sprite frames to a percentage meter.
const chargeRegenPerSecond = 20.0

// maxLoopFrames bounds a looping animation's FrameIndex before it wraps,
// matching the teacher's animation_system.go fixed-width sprite sheets.
const maxLoopFrames = 16

// BookkeepingSystem handles the per-tick housekeeping with no gameplay
// decision attached to it: expiring Lifetime-bound entities, advancing
// Animation frames, and regenerating Force charge. Final pipeline
// stage, grounded in the teacher's lifetime_system.go and
// animation_system.go.
type BookkeepingSystem struct {
	ecs.BaseSystem
	coord    *coordinator.Coordinator
	accumMS  map[ecs.EntityID]uint16
}

// NewBookkeepingSystem builds a BookkeepingSystem that reports expired
// entities through coord.
func NewBookkeepingSystem(coord *coordinator.Coordinator) *BookkeepingSystem {
	return &BookkeepingSystem{coord: coord, accumMS: make(map[ecs.EntityID]uint16)}
}

func (s *BookkeepingSystem) Name() string { return "bookkeeping" }

func (s *BookkeepingSystem) OnUpdate(w *ecs.World, dt float64) {
	s.expireLifetimes(w, dt)
	s.advanceAnimations(w, dt)
	s.regenForce(w, dt)
}

func (s *BookkeepingSystem) expireLifetimes(w *ecs.World, dt float64) {
	store, err := ecs.Store[ecs.Lifetime](w)
	if err != nil {
		return
	}
	elapsedMS := int64(dt * 1000)

	var expired []ecs.EntityID
	store.Each(func(id ecs.EntityID, lt ecs.Lifetime) {
		lt.RemainingMS -= elapsedMS
		if lt.RemainingMS <= 0 {
			expired = append(expired, id)
			return
		}
		store.Set(id, lt)
	})

	for _, id := range expired {
		transform, _ := ecs.GetComponent[ecs.Transform](w, id)
		s.coord.QueueDestroy(id, codec.DestroyTimeoutDespawn, transform.X, transform.Y)
		if w.IsAlive(id) {
			_ = w.DestroyEntity(id)
		}
		delete(s.accumMS, id)
	}
}

func (s *BookkeepingSystem) advanceAnimations(w *ecs.World, dt float64) {
	store, err := ecs.Store[ecs.Animation](w)
	if err != nil {
		return
	}
	elapsedMS := uint16(dt * 1000)

	store.Each(func(id ecs.EntityID, anim ecs.Animation) {
		if anim.FrameDuration == 0 {
			return
		}
		s.accumMS[id] += elapsedMS
		for s.accumMS[id] >= anim.FrameDuration {
			s.accumMS[id] -= anim.FrameDuration
			anim.FrameIndex++
			if anim.FrameIndex >= maxLoopFrames {
				if anim.LoopMode != 0 {
					anim.FrameIndex = 0
				} else {
					anim.FrameIndex = maxLoopFrames - 1
				}
			}
		}
		store.Set(id, anim)
	})
}

func (s *BookkeepingSystem) regenForce(w *ecs.World, dt float64) {
	store, err := ecs.Store[ecs.Force](w)
	if err != nil {
		return
	}
	gain := chargeRegenPerSecond * dt

	store.Each(func(id ecs.EntityID, force ecs.Force) {
		if force.Firing || force.ChargePercent >= 100 {
			return
		}
		next := float64(force.ChargePercent) + gain
		if next > 100 {
			next = 100
		}
		force.ChargePercent = uint8(next)
		store.Set(id, force)
	})
}

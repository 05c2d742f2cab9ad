package gameplay

import (
	"math"

	"github.com/opd-ai/rtype/pkg/ecs"
)

// DefaultPatrolSpeed and DefaultChaseSpeed are AISystem's fallback
// movement rates, grounded in the teacher's ai_system.go default speed
// of 100 units/second.
const (
	DefaultPatrolSpeed = 60.0
	DefaultChaseSpeed  = 140.0
)

// AISystem drives every AI-controlled entity's Velocity from its
// Behavior, replacing the teacher's ai_system.go state machine (idle/
// patrol/chase/attack/flee) with direct dispatch on ecs.AIBehavior,
// since spec.md §3 already encodes the state as a fixed behavior rather
// than a runtime-transitioned one.
type AISystem struct {
	ecs.BaseSystem
	PatrolSpeed float64
	ChaseSpeed  float64
}

// NewAISystem builds an AISystem with the default patrol/chase speeds.
func NewAISystem() *AISystem {
	return &AISystem{PatrolSpeed: DefaultPatrolSpeed, ChaseSpeed: DefaultChaseSpeed}
}

func (s *AISystem) Name() string { return "ai" }

func (s *AISystem) OnUpdate(w *ecs.World, dt float64) {
	aiStore, err := ecs.Store[ecs.AI](w)
	if err != nil {
		return
	}
	type aiEntry struct {
		id ecs.EntityID
		ai ecs.AI
	}
	entries := make([]aiEntry, 0, aiStore.Len())
	aiStore.Each(func(id ecs.EntityID, ai ecs.AI) { entries = append(entries, aiEntry{id, ai}) })

	for _, e := range entries {
		transform, err := ecs.GetComponent[ecs.Transform](w, e.id)
		if err != nil {
			continue
		}
		ai := e.ai
		ai.InternalClockMS += int64(dt * 1000)

		switch ai.Behavior {
		case ecs.AIIdle:
			s.setVelocity(w, e.id, 0, 0)
		case ecs.AIPatrol:
			s.setVelocity(w, e.id, -s.PatrolSpeed, 0)
			s.acquireTarget(w, e.id, &ai, transform)
		case ecs.AIChase, ecs.AIAttackPattern1, ecs.AIAttackPattern2, ecs.AIAttackPattern3,
			ecs.AIBossPhase1, ecs.AIBossPhase2, ecs.AIBossPhase3:
			s.acquireTarget(w, e.id, &ai, transform)
			s.chase(w, e.id, &ai, transform, s.ChaseSpeed)
		case ecs.AIKamikaze:
			s.acquireTarget(w, e.id, &ai, transform)
			s.chase(w, e.id, &ai, transform, s.ChaseSpeed*1.5)
		case ecs.AIFlee:
			s.flee(w, e.id, &ai, transform)
		}
		_ = ecs.AddComponent(w, e.id, ai)
	}
}

// acquireTarget finds the nearest opposing-team entity within
// DetectionRange and records it on ai.TargetEntity.
func (s *AISystem) acquireTarget(w *ecs.World, self ecs.EntityID, ai *ecs.AI, pos ecs.Transform) {
	teamStore, err := ecs.Store[ecs.Team](w)
	if err != nil {
		return
	}
	selfTeam, err := ecs.GetComponent[ecs.Team](w, self)
	if err != nil {
		return
	}

	var nearest ecs.EntityID
	nearestDist := ai.DetectionRange
	teamStore.Each(func(id ecs.EntityID, team ecs.Team) {
		if id == self || team&selfTeam != 0 {
			return
		}
		other, err := ecs.GetComponent[ecs.Transform](w, id)
		if err != nil {
			return
		}
		if health, err := ecs.GetComponent[ecs.Health](w, id); err == nil && health.Current <= 0 {
			return
		}
		dist := distance(pos, other)
		if dist <= nearestDist {
			nearest = id
			nearestDist = dist
		}
	})
	if nearest != ecs.InvalidEntityID {
		ai.TargetEntity = nearest
	}
}

func (s *AISystem) chase(w *ecs.World, self ecs.EntityID, ai *ecs.AI, pos ecs.Transform, speed float64) {
	if ai.TargetEntity == ecs.InvalidEntityID || !w.IsAlive(ai.TargetEntity) {
		s.setVelocity(w, self, 0, 0)
		return
	}
	target, err := ecs.GetComponent[ecs.Transform](w, ai.TargetEntity)
	if err != nil {
		s.setVelocity(w, self, 0, 0)
		return
	}
	dx, dy := target.X-pos.X, target.Y-pos.Y
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		s.setVelocity(w, self, 0, 0)
		return
	}
	s.setVelocity(w, self, (dx/dist)*speed, (dy/dist)*speed)
}

func (s *AISystem) flee(w *ecs.World, self ecs.EntityID, ai *ecs.AI, pos ecs.Transform) {
	if ai.TargetEntity == ecs.InvalidEntityID || !w.IsAlive(ai.TargetEntity) {
		s.setVelocity(w, self, -s.ChaseSpeed, 0)
		return
	}
	target, err := ecs.GetComponent[ecs.Transform](w, ai.TargetEntity)
	if err != nil {
		return
	}
	dx, dy := pos.X-target.X, pos.Y-target.Y
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		dx, dy, dist = -1, 0, 1
	}
	s.setVelocity(w, self, (dx/dist)*s.ChaseSpeed, (dy/dist)*s.ChaseSpeed)
}

func (s *AISystem) setVelocity(w *ecs.World, id ecs.EntityID, vx, vy float64) {
	_ = ecs.AddComponent(w, id, ecs.Velocity{VX: vx, VY: vy})
}

func distance(a, b ecs.Transform) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

package gameplay

import (
	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
)

// DefaultProjectileSpeed matches the value pkg/coordinator's inbound
// WEAPON_FIRE handler assumes for locally reconstructed projectiles.
const DefaultProjectileSpeed = 400.0

// ShootingSystem turns weapon-fire intent (a player's FirePrimary input
// or an attacking AI's aggression) into a projectile, via the
// coordinator so every peer learns about the shot. Fourth stage, after
// movement, grounded in the teacher's combat_system.go cooldown/Attack
// pattern, generalized from melee range checks to a fire-and-forget
// projectile spawn.
type ShootingSystem struct {
	ecs.BaseSystem
	coord           *coordinator.Coordinator
	ProjectileSpeed float64
	elapsedMS       int64
}

// NewShootingSystem builds a ShootingSystem that spawns projectiles and
// reports WEAPON_FIRE through coord.
func NewShootingSystem(coord *coordinator.Coordinator) *ShootingSystem {
	return &ShootingSystem{coord: coord, ProjectileSpeed: DefaultProjectileSpeed}
}

func (s *ShootingSystem) Name() string { return "shooting" }

func (s *ShootingSystem) OnUpdate(w *ecs.World, dt float64) {
	s.elapsedMS += int64(dt * 1000)

	store, err := ecs.Store[ecs.Weapon](w)
	if err != nil {
		return
	}
	type entry struct {
		id ecs.EntityID
		wp ecs.Weapon
	}
	ready := make([]entry, 0, store.Len())
	store.Each(func(id ecs.EntityID, wp ecs.Weapon) {
		// LastShotMS == 0 means the weapon has never fired, so its first
		// shot is not held back by the cooldown.
		if (wp.LastShotMS == 0 || s.elapsedMS-wp.LastShotMS >= int64(wp.FireRateMS)) && s.wantsToFire(w, id) {
			ready = append(ready, entry{id, wp})
		}
	})

	for _, e := range ready {
		transform, err := ecs.GetComponent[ecs.Transform](w, e.id)
		if err != nil {
			continue
		}
		dirX, dirY := 1.0, 0.0
		if !ecs.HasComponent[ecs.Playable](w, e.id) {
			dirX = -1.0
		}
		projectile, err := s.coord.SpawnProjectile(e.id, e.wp.ProjectileOf, transform.X, transform.Y, dirX, dirY, s.ProjectileSpeed, s.elapsedMS)
		if err != nil {
			continue
		}
		s.coord.QueueWeaponFire(e.id, projectile, e.wp.ProjectileOf, transform.X, transform.Y, dirX, dirY)
		e.wp.LastShotMS = s.elapsedMS
		store.Set(e.id, e.wp)
	}
}

// wantsToFire reports whether id's owner (player input or aggressive AI)
// is currently asking to fire.
func (s *ShootingSystem) wantsToFire(w *ecs.World, id ecs.EntityID) bool {
	if in, err := ecs.GetComponent[ecs.InputComponent](w, id); err == nil {
		return in.Actions[ecs.ActionFirePrimary]
	}
	if ai, err := ecs.GetComponent[ecs.AI](w, id); err == nil {
		return ai.TargetEntity != ecs.InvalidEntityID && isAggressive(ai.Behavior)
	}
	return false
}

func isAggressive(b ecs.AIBehavior) bool {
	switch b {
	case ecs.AIAttackPattern1, ecs.AIAttackPattern2, ecs.AIAttackPattern3,
		ecs.AIBossPhase1, ecs.AIBossPhase2, ecs.AIBossPhase3, ecs.AIKamikaze:
		return true
	default:
		return false
	}
}

package gameplay

import (
	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

// projectileDamage maps a weapon kind to the damage a single hit deals.
// No wire-visible damage field exists on WeaponFire (spec.md §4.2), so
// damage is a server-side constant keyed on the projectile's kind.
var projectileDamage = map[ecs.WeaponKind]int{
	ecs.WeaponBasic:     10,
	ecs.WeaponCharged:   25,
	ecs.WeaponSpread:    8,
	ecs.WeaponLaser:     15,
	ecs.WeaponMissile:   40,
	ecs.WeaponForceShot: 20,
}

// contactDamage is the damage dealt to both sides when a player and an
// enemy's hitboxes overlap directly (ramming), matching the original
// R-Type's instant-death-on-contact collision rule at a finite rate
// instead.
const contactDamage = 50

// KillEvent records one entity's death this tick, for the level
// progression and scoring systems (which run immediately after
// collision) to consume.
type KillEvent struct {
	Killer         ecs.EntityID
	Victim         ecs.EntityID
	VictimWasEnemy bool
	VictimBossTier int
}

// CollisionSystem detects HitBox overlaps and resolves projectile and
// contact damage, the fifth pipeline stage (after shooting). Grounded
// in the teacher's collision.go grid-based broad phase, generalized
// from entity-pair separation to damage resolution since R-Type
// projectiles pass through rather than push back.
type CollisionSystem struct {
	ecs.BaseSystem
	coord    *coordinator.Coordinator
	CellSize float64
	kills    []KillEvent
}

// NewCollisionSystem builds a CollisionSystem with the given spatial
// grid cell size (see teacher's collision.go CellSize).
func NewCollisionSystem(coord *coordinator.Coordinator, cellSize float64) *CollisionSystem {
	if cellSize <= 0 {
		cellSize = 128
	}
	return &CollisionSystem{coord: coord, CellSize: cellSize}
}

func (s *CollisionSystem) Name() string { return "collision" }

// Kills returns this tick's death events, for LevelSystem/ScoringSystem.
// Valid only until the next OnUpdate call.
func (s *CollisionSystem) Kills() []KillEvent { return s.kills }

type hitboxEntry struct {
	id  ecs.EntityID
	pos ecs.Transform
	box ecs.HitBox
}

func (s *CollisionSystem) OnUpdate(w *ecs.World, dt float64) {
	s.kills = nil

	store, err := ecs.Store[ecs.HitBox](w)
	if err != nil {
		return
	}
	entries := make([]hitboxEntry, 0, store.Len())
	store.Each(func(id ecs.EntityID, box ecs.HitBox) {
		pos, err := ecs.GetComponent[ecs.Transform](w, id)
		if err != nil {
			return
		}
		entries = append(entries, hitboxEntry{id: id, pos: pos, box: box})
	})

	grid := make(map[[2]int][]int)
	cellOf := func(x, y float64) [2]int {
		return [2]int{int(x / s.CellSize), int(y / s.CellSize)}
	}
	for i, e := range entries {
		c := cellOf(e.pos.X, e.pos.Y)
		grid[c] = append(grid[c], i)
	}

	destroyed := make(map[ecs.EntityID]bool)
	for i, e := range entries {
		if destroyed[e.id] {
			continue
		}
		c := cellOf(e.pos.X, e.pos.Y)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range grid[[2]int{c[0] + dx, c[1] + dy}] {
					if j <= i {
						continue
					}
					other := entries[j]
					if destroyed[e.id] || destroyed[other.id] {
						continue
					}
					if !overlaps(e, other) {
						continue
					}
					if e.box.Layer != 0 && other.box.Layer != 0 && e.box.Mask&(1<<other.box.Layer) == 0 {
						continue
					}
					s.resolve(w, e.id, other.id, destroyed)
				}
			}
		}
	}
}

func overlaps(a, b hitboxEntry) bool {
	aMinX, aMinY := a.pos.X-a.box.Width/2, a.pos.Y-a.box.Height/2
	aMaxX, aMaxY := a.pos.X+a.box.Width/2, a.pos.Y+a.box.Height/2
	bMinX, bMinY := b.pos.X-b.box.Width/2, b.pos.Y-b.box.Height/2
	bMaxX, bMaxY := b.pos.X+b.box.Width/2, b.pos.Y+b.box.Height/2
	return aMinX < bMaxX && aMaxX > bMinX && aMinY < bMaxY && aMaxY > bMinY
}

// resolve handles one overlapping HitBox pair. Projectiles carry no
// Team of their own (spec.md §3 invariant), so their effective team is
// borrowed from their shooter for the friendly-fire check.
func (s *CollisionSystem) resolve(w *ecs.World, idA, idB ecs.EntityID, destroyed map[ecs.EntityID]bool) {
	projA, errProjA := ecs.GetComponent[ecs.Projectile](w, idA)
	projB, errProjB := ecs.GetComponent[ecs.Projectile](w, idB)
	aIsProj, bIsProj := errProjA == nil, errProjB == nil

	teamA, okA := s.effectiveTeam(w, idA, aIsProj, projA)
	teamB, okB := s.effectiveTeam(w, idB, bIsProj, projB)
	if !okA || !okB || teamA&teamB != 0 {
		return
	}

	switch {
	case aIsProj && !bIsProj:
		s.applyProjectileHit(w, idA, projA, idB, destroyed)
	case bIsProj && !aIsProj:
		s.applyProjectileHit(w, idB, projB, idA, destroyed)
	case aIsProj && bIsProj:
		// opposing projectiles passing through each other: no
		// projectile-on-projectile damage in this system.
	default:
		s.applyContact(w, idA, idB, destroyed)
	}
}

// effectiveTeam returns id's Team, or its shooter's Team if id is a
// projectile.
func (s *CollisionSystem) effectiveTeam(w *ecs.World, id ecs.EntityID, isProj bool, proj ecs.Projectile) (ecs.Team, bool) {
	if isProj {
		t, err := ecs.GetComponent[ecs.Team](w, proj.ShooterID)
		if err != nil {
			return 0, false
		}
		return t, true
	}
	t, err := ecs.GetComponent[ecs.Team](w, id)
	if err != nil {
		return 0, false
	}
	return t, true
}

func (s *CollisionSystem) applyProjectileHit(w *ecs.World, shooterProjectileID ecs.EntityID, proj ecs.Projectile, targetID ecs.EntityID, destroyed map[ecs.EntityID]bool) {
	damage := projectileDamage[proj.Kind]
	s.damage(w, proj.ShooterID, targetID, damage, destroyed)

	destroyed[shooterProjectileID] = true
	if w.IsAlive(shooterProjectileID) {
		_ = w.DestroyEntity(shooterProjectileID)
	}
}

func (s *CollisionSystem) applyContact(w *ecs.World, idA, idB ecs.EntityID, destroyed map[ecs.EntityID]bool) {
	s.damage(w, idB, idA, contactDamage, destroyed)
	s.damage(w, idA, idB, contactDamage, destroyed)
}

func (s *CollisionSystem) damage(w *ecs.World, killer, victim ecs.EntityID, amount int, destroyed map[ecs.EntityID]bool) {
	if destroyed[victim] || !w.IsAlive(victim) {
		return
	}
	health, err := ecs.GetComponent[ecs.Health](w, victim)
	if err != nil {
		return
	}
	health.Current -= amount
	_ = ecs.AddComponent(w, victim, health)
	if health.Current > 0 {
		return
	}

	destroyed[victim] = true
	s.handleDeath(w, killer, victim)
}

func (s *CollisionSystem) handleDeath(w *ecs.World, killer, victim ecs.EntityID) {
	transform, _ := ecs.GetComponent[ecs.Transform](w, victim)

	if enemy, err := ecs.GetComponent[ecs.Enemy](w, victim); err == nil {
		s.kills = append(s.kills, KillEvent{Killer: killer, Victim: victim, VictimWasEnemy: true, VictimBossTier: enemy.BossTier})
		s.coord.QueueDestroy(victim, codec.DestroyKilledByPlayer, transform.X, transform.Y)
		if w.IsAlive(victim) {
			_ = w.DestroyEntity(victim)
		}
		return
	}

	if ecs.HasComponent[ecs.Playable](w, victim) {
		score, _ := ecs.GetComponent[ecs.Score](w, victim)
		_ = ecs.AddComponent(w, victim, ecs.DeadPlayer{KillerID: killer, ScoreAtDeath: score.Points})
	}
}

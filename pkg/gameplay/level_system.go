package gameplay

import "github.com/opd-ai/rtype/pkg/ecs"

// KillSource exposes the current tick's death events without draining
// them, so multiple systems (LevelSystem, ScoringSystem) can read the
// same CollisionSystem result within one tick.
type KillSource interface {
	Kills() []KillEvent
}

// LevelSystem advances Wave/Level progression from this tick's kills,
// the sixth pipeline stage (after collision). Grounded in the teacher's
// progression_system.go wave-clear/level-advance bookkeeping.
type LevelSystem struct {
	ecs.BaseSystem
	kills KillSource
}

// NewLevelSystem builds a LevelSystem reading kills from src (normally
// the CollisionSystem instance registered earlier in the pipeline).
func NewLevelSystem(src KillSource) *LevelSystem {
	return &LevelSystem{kills: src}
}

func (s *LevelSystem) Name() string { return "level" }

func (s *LevelSystem) OnUpdate(w *ecs.World, dt float64) {
	elapsedMS := int64(dt * 1000)

	levelStore, err := ecs.Store[ecs.Level](w)
	if err != nil {
		return
	}

	enemyKills := 0
	for _, k := range s.kills.Kills() {
		if k.VictimWasEnemy {
			enemyKills++
		}
	}

	levelStore.Each(func(id ecs.EntityID, level ecs.Level) {
		if level.Completed {
			return
		}
		level.ElapsedMS += elapsedMS

		if level.CurrentIndex < 0 || level.CurrentIndex >= len(level.Waves) {
			level.Completed = true
			levelStore.Set(id, level)
			return
		}

		wave := level.Waves[level.CurrentIndex]
		if wave.Completed {
			levelStore.Set(id, level)
			return
		}
		wave.EnemyCount -= enemyKills
		if wave.EnemyCount <= 0 {
			wave.EnemyCount = 0
			wave.Completed = true
		}
		level.Waves[level.CurrentIndex] = wave

		if wave.Completed {
			level.CurrentIndex++
			if level.CurrentIndex >= len(level.Waves) {
				level.Completed = true
			}
		}
		levelStore.Set(id, level)
	})
}

package gameplay

import "github.com/opd-ai/rtype/pkg/ecs"

// regularKillPoints and bossKillPoints are the points awarded for a
// victim's bounty, grounded in the teacher's scoring_system.go fixed
// per-kill award table (no wire field carries a point value, so the
// award is a server-side constant keyed on boss tier).
const (
	regularKillPoints = 10
	bossKillPoints    = 100
)

// ScoringSystem awards Score.Points to a kill's owning player, the
// seventh pipeline stage (after level progression, same tick as
// CollisionSystem's kills). Grounded in the teacher's scoring_system.go
// award-on-kill bookkeeping.
type ScoringSystem struct {
	ecs.BaseSystem
	kills KillSource
}

// NewScoringSystem builds a ScoringSystem reading kills from src
// (normally the CollisionSystem instance registered earlier in the
// pipeline).
func NewScoringSystem(src KillSource) *ScoringSystem {
	return &ScoringSystem{kills: src}
}

func (s *ScoringSystem) Name() string { return "scoring" }

func (s *ScoringSystem) OnUpdate(w *ecs.World, dt float64) {
	for _, k := range s.kills.Kills() {
		if !w.IsAlive(k.Killer) {
			continue
		}
		score, err := ecs.GetComponent[ecs.Score](w, k.Killer)
		if err != nil {
			continue
		}
		if k.VictimBossTier > 0 {
			score.Points += bossKillPoints * k.VictimBossTier
		} else {
			score.Points += regularKillPoints
		}
		_ = ecs.AddComponent(w, k.Killer, score)
	}
}

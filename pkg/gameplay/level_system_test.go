package gameplay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/gameplay"
)

type fakeKillSource struct {
	events []gameplay.KillEvent
}

func (f fakeKillSource) Kills() []gameplay.KillEvent { return f.events }

func TestLevelSystemAdvancesWaveOnEnemyKills(t *testing.T) {
	w, _ := newTestWorld(t)
	id := w.CreateEntity("level", ecs.CategoryLocal)
	require.NoError(t, ecs.AddComponent(w, id, ecs.Level{
		Waves: []ecs.Wave{{EnemyCount: 1}, {EnemyCount: 2}},
	}))

	kills := fakeKillSource{events: []gameplay.KillEvent{{VictimWasEnemy: true}}}
	sys := gameplay.NewLevelSystem(kills)
	sys.OnUpdate(w, 0.016)

	level, err := ecs.GetComponent[ecs.Level](w, id)
	require.NoError(t, err)
	require.True(t, level.Waves[0].Completed)
	require.Equal(t, 1, level.CurrentIndex)
	require.False(t, level.Completed)
}

func TestLevelSystemCompletesAfterFinalWave(t *testing.T) {
	w, _ := newTestWorld(t)
	id := w.CreateEntity("level", ecs.CategoryLocal)
	require.NoError(t, ecs.AddComponent(w, id, ecs.Level{
		Waves:        []ecs.Wave{{EnemyCount: 1}},
		CurrentIndex: 0,
	}))

	kills := fakeKillSource{events: []gameplay.KillEvent{{VictimWasEnemy: true}}}
	sys := gameplay.NewLevelSystem(kills)
	sys.OnUpdate(w, 0.016)

	level, err := ecs.GetComponent[ecs.Level](w, id)
	require.NoError(t, err)
	require.True(t, level.Completed)
}

func TestLevelSystemIgnoresCompletedLevel(t *testing.T) {
	w, _ := newTestWorld(t)
	id := w.CreateEntity("level", ecs.CategoryLocal)
	require.NoError(t, ecs.AddComponent(w, id, ecs.Level{
		Waves:     []ecs.Wave{{EnemyCount: 1}},
		Completed: true,
	}))

	kills := fakeKillSource{}
	sys := gameplay.NewLevelSystem(kills)
	sys.OnUpdate(w, 1.0)

	level, err := ecs.GetComponent[ecs.Level](w, id)
	require.NoError(t, err)
	require.Equal(t, int64(0), level.ElapsedMS)
}

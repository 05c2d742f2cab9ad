package gameplay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/gameplay"
)

func TestScoringSystemAwardsRegularKillPoints(t *testing.T) {
	w, c := newTestWorld(t)
	player, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)
	require.NoError(t, c.SpawnScore(player, 1))

	kills := fakeKillSource{events: []gameplay.KillEvent{{Killer: player}}}
	sys := gameplay.NewScoringSystem(kills)
	sys.OnUpdate(w, 0.016)

	score, err := ecs.GetComponent[ecs.Score](w, player)
	require.NoError(t, err)
	require.Equal(t, 10, score.Points)
}

func TestScoringSystemAwardsBossPointsScaledByTier(t *testing.T) {
	w, c := newTestWorld(t)
	player, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)
	require.NoError(t, c.SpawnScore(player, 1))

	kills := fakeKillSource{events: []gameplay.KillEvent{{Killer: player, VictimBossTier: 2}}}
	sys := gameplay.NewScoringSystem(kills)
	sys.OnUpdate(w, 0.016)

	score, err := ecs.GetComponent[ecs.Score](w, player)
	require.NoError(t, err)
	require.Equal(t, 200, score.Points)
}

func TestScoringSystemSkipsDeadKiller(t *testing.T) {
	w, c := newTestWorld(t)
	player, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)
	require.NoError(t, c.SpawnScore(player, 1))
	require.NoError(t, w.DestroyEntity(player))

	kills := fakeKillSource{events: []gameplay.KillEvent{{Killer: player}}}
	sys := gameplay.NewScoringSystem(kills)
	require.NotPanics(t, func() { sys.OnUpdate(w, 0.016) })
}

package gameplay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/gameplay"
)

func TestAISystemIdleHasZeroVelocity(t *testing.T) {
	w, c := newTestWorld(t)
	enemy, err := c.SpawnEnemy(1_000_001, 0, 0, 0, ecs.AIIdle)
	require.NoError(t, err)

	sys := gameplay.NewAISystem()
	sys.OnUpdate(w, 0.016)

	vel, err := ecs.GetComponent[ecs.Velocity](w, enemy)
	require.NoError(t, err)
	require.Equal(t, ecs.Velocity{}, vel)
}

func TestAISystemChaseAcquiresNearestOpposingTargetAndMovesTowardIt(t *testing.T) {
	w, c := newTestWorld(t)
	player, err := c.SpawnPlayer(1_000_001, 1, 100, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)
	enemy, err := c.SpawnEnemy(1_000_002, 0, 0, 0, ecs.AIChase)
	require.NoError(t, err)

	sys := gameplay.NewAISystem()
	sys.OnUpdate(w, 0.016)

	ai, err := ecs.GetComponent[ecs.AI](w, enemy)
	require.NoError(t, err)
	require.Equal(t, player, ai.TargetEntity)

	vel, err := ecs.GetComponent[ecs.Velocity](w, enemy)
	require.NoError(t, err)
	require.Greater(t, vel.VX, 0.0)
	require.Equal(t, 0.0, vel.VY)
}

func TestAISystemChaseIgnoresTargetsOutsideDetectionRange(t *testing.T) {
	w, c := newTestWorld(t)
	_, err := c.SpawnPlayer(1_000_001, 1, 10_000, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)
	enemy, err := c.SpawnEnemy(1_000_002, 0, 0, 0, ecs.AIChase)
	require.NoError(t, err)

	sys := gameplay.NewAISystem()
	sys.OnUpdate(w, 0.016)

	ai, err := ecs.GetComponent[ecs.AI](w, enemy)
	require.NoError(t, err)
	require.Equal(t, ecs.InvalidEntityID, ai.TargetEntity)
}

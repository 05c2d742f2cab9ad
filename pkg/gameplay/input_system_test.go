package gameplay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/gameplay"
)

func newTestWorld(t *testing.T) (*ecs.World, *coordinator.Coordinator) {
	t.Helper()
	w := ecs.NewWorld()
	c := coordinator.New(w, true, nil)
	return w, c
}

func TestInputSystemSetsVelocityFromActions(t *testing.T) {
	w, c := newTestWorld(t)
	id, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	in, err := ecs.GetComponent[ecs.InputComponent](w, id)
	require.NoError(t, err)
	in.Actions = map[ecs.InputAction]bool{ecs.ActionMoveRight: true}
	require.NoError(t, ecs.AddComponent(w, id, in))

	sys := gameplay.NewInputSystem(200)
	sys.OnUpdate(w, 0.016)

	vel, err := ecs.GetComponent[ecs.Velocity](w, id)
	require.NoError(t, err)
	require.Equal(t, 200.0, vel.VX)
	require.Equal(t, 0.0, vel.VY)
}

func TestInputSystemNormalizesDiagonalMovement(t *testing.T) {
	w, c := newTestWorld(t)
	id, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	in, err := ecs.GetComponent[ecs.InputComponent](w, id)
	require.NoError(t, err)
	in.Actions = map[ecs.InputAction]bool{
		ecs.ActionMoveRight: true,
		ecs.ActionMoveDown:  true,
	}
	require.NoError(t, ecs.AddComponent(w, id, in))

	sys := gameplay.NewInputSystem(200)
	sys.OnUpdate(w, 0.016)

	vel, err := ecs.GetComponent[ecs.Velocity](w, id)
	require.NoError(t, err)
	require.InDelta(t, 141.42, vel.VX, 0.1)
	require.InDelta(t, 141.42, vel.VY, 0.1)
}

func TestInputSystemZeroSpeedFallsBackToDefault(t *testing.T) {
	sys := gameplay.NewInputSystem(0)
	require.Equal(t, gameplay.DefaultMoveSpeed, sys.Speed)
}

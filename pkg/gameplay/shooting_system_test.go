package gameplay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/gameplay"
)

func TestShootingSystemSpawnsProjectileWhenPlayerFires(t *testing.T) {
	w, c := newTestWorld(t)
	player, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	in, err := ecs.GetComponent[ecs.InputComponent](w, player)
	require.NoError(t, err)
	in.Actions = map[ecs.InputAction]bool{ecs.ActionFirePrimary: true}
	require.NoError(t, ecs.AddComponent(w, player, in))

	before, err := ecs.Store[ecs.Projectile](w)
	require.NoError(t, err)
	require.Equal(t, 0, before.Len())

	sys := gameplay.NewShootingSystem(c)
	sys.OnUpdate(w, 0.016)

	require.Equal(t, 1, before.Len())
}

func TestShootingSystemRespectsFireRateCooldown(t *testing.T) {
	w, c := newTestWorld(t)
	player, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)
	in, err := ecs.GetComponent[ecs.InputComponent](w, player)
	require.NoError(t, err)
	in.Actions = map[ecs.InputAction]bool{ecs.ActionFirePrimary: true}
	require.NoError(t, ecs.AddComponent(w, player, in))

	store, err := ecs.Store[ecs.Projectile](w)
	require.NoError(t, err)

	sys := gameplay.NewShootingSystem(c)
	sys.OnUpdate(w, 0.016)
	require.Equal(t, 1, store.Len())

	sys.OnUpdate(w, 0.016)
	require.Equal(t, 1, store.Len())
}

func TestShootingSystemDoesNotFireWithoutInput(t *testing.T) {
	w, c := newTestWorld(t)
	_, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	store, err := ecs.Store[ecs.Projectile](w)
	require.NoError(t, err)

	sys := gameplay.NewShootingSystem(c)
	sys.OnUpdate(w, 0.016)

	require.Equal(t, 0, store.Len())
}

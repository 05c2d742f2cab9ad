package coordinator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

func TestProduceServerTickRespectsSnapshotRates(t *testing.T) {
	_, c := newTestCoordinator(t, true)
	_, err := c.SpawnEnemy(1_000_050, 0, 0, 0, ecs.AIPatrol)
	require.NoError(t, err)

	countByType := func(typ codec.Type, worldTick uint32) int {
		pkts := c.ProduceServerTick(worldTick, worldTick*16)
		n := 0
		for _, pkt := range pkts {
			got, err := codec.Validate(pkt.Payload)
			require.NoError(t, err)
			if got == typ {
				n++
			}
		}
		return n
	}

	// Transform is due every tick (interval 1).
	require.Equal(t, 1, countByType(codec.TypeTransformSnapshot, 1))
	require.Equal(t, 1, countByType(codec.TypeTransformSnapshot, 2))

	// AI snapshot has interval 12: tick 1 is not a multiple, tick 12 is.
	require.Equal(t, 0, countByType(codec.TypeAISnapshot, 1))
	require.Equal(t, 1, countByType(codec.TypeAISnapshot, 12))
}

func TestProduceClientTickEmitsOnlyLocalPlayerInput(t *testing.T) {
	w, c := newTestCoordinator(t, false)
	c.SetLocalPlayer(5)

	local, err := c.SpawnPlayer(1_000_001, 5, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)
	_, err = c.SpawnPlayer(1_000_002, 6, 0, 0, false, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	store, err := ecs.Store[ecs.InputComponent](w)
	require.NoError(t, err)
	in, ok := store.Get(local)
	require.True(t, ok)
	in.Actions[ecs.ActionMoveUp] = true
	store.Set(local, in)

	pkts, err := c.ProduceClientTick(1, 1000)
	require.NoError(t, err)
	require.Len(t, pkts, 1)

	_, body, err := codec.DecodePacket[codec.PlayerInput](pkts[0].Payload)
	require.NoError(t, err)
	require.Equal(t, uint32(5), body.PlayerID)
	require.NotZero(t, body.InputState&uint16(codec.InputMoveUp))
}

func TestDrainDestroyedEntitiesEmitsEntityDestroy(t *testing.T) {
	_, c := newTestCoordinator(t, true)
	c.QueueDestroy(1_000_077, codec.DestroyReason(1), 10, 20)

	pkts := c.ProduceServerTick(1, 1000)
	found := false
	for _, pkt := range pkts {
		typ, err := codec.Validate(pkt.Payload)
		require.NoError(t, err)
		if typ == codec.TypeEntityDestroy {
			found = true
			_, body, err := codec.DecodePacket[codec.EntityDestroy](pkt.Payload)
			require.NoError(t, err)
			require.Equal(t, uint32(1_000_077), body.EntityID)
		}
	}
	require.True(t, found)
}

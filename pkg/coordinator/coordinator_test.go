package coordinator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

func newTestCoordinator(t *testing.T, isServer bool) (*ecs.World, *coordinator.Coordinator) {
	t.Helper()
	w := ecs.NewWorld()
	c := coordinator.New(w, isServer, nil)
	return w, c
}

func TestSpawnPlayerAttachesCoreComponents(t *testing.T) {
	w, c := newTestCoordinator(t, true)
	id, err := c.SpawnPlayer(1_000_001, 7, 10, 20, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	require.True(t, w.IsNetworked(id))
	require.True(t, ecs.HasComponent[ecs.Transform](w, id))
	require.True(t, ecs.HasComponent[ecs.Health](w, id))
	require.True(t, ecs.HasComponent[ecs.Weapon](w, id))
	require.True(t, ecs.HasComponent[ecs.InputComponent](w, id))
	require.True(t, ecs.HasComponent[ecs.Playable](w, id))

	transform, err := ecs.GetComponent[ecs.Transform](w, id)
	require.NoError(t, err)
	require.Equal(t, 10.0, transform.X)
	require.Equal(t, 20.0, transform.Y)
}

func TestSpawnProjectileNeverCarriesNetworkID(t *testing.T) {
	w, c := newTestCoordinator(t, true)
	id, err := c.SpawnProjectile(1_000_001, ecs.WeaponBasic, 0, 0, 1, 0, 400, 0)
	require.NoError(t, err)

	require.False(t, w.IsNetworked(id))
	require.False(t, ecs.HasComponent[ecs.NetworkID](w, id))
	require.True(t, ecs.HasComponent[ecs.Projectile](w, id))
}

func TestHandleEntitySpawnCreatesLocalRecord(t *testing.T) {
	w, c := newTestCoordinator(t, false)

	buf, err := codec.EncodePacket(codec.TypeEntitySpawn, 0, 1, 1, codec.EntitySpawn{
		EntityID:   1_000_042,
		EntityType: codec.EntityTypeEnemy,
		PositionX:  100,
		PositionY:  50,
	})
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	err = c.Dispatch(network.InboundPacket{Header: h, Payload: buf}, nil)
	require.NoError(t, err)

	require.True(t, w.IsAlive(ecs.EntityID(1_000_042)))
	require.True(t, ecs.HasComponent[ecs.Enemy](w, ecs.EntityID(1_000_042)))
}

func TestHandleEntitySpawnOfOwnPlayerUsesLocalPlayerIDForInput(t *testing.T) {
	w, c := newTestCoordinator(t, false)
	c.SetLocalPlayer(7)

	buf, err := codec.EncodePacket(codec.TypeEntitySpawn, 0, 1, 1, codec.EntitySpawn{
		EntityID:   1_000_042,
		EntityType: codec.EntityTypePlayer,
		IsPlayable: 1,
	})
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: buf}, nil))

	in, err := ecs.GetComponent[ecs.InputComponent](w, ecs.EntityID(1_000_042))
	require.NoError(t, err)
	require.Equal(t, uint32(7), in.PlayerID)
}

func TestHandleEntityDestroyRemovesEntity(t *testing.T) {
	w, c := newTestCoordinator(t, false)
	id, err := c.SpawnEnemy(1_000_010, 0, 0, 0, ecs.AIPatrol)
	require.NoError(t, err)

	buf, err := codec.EncodePacket(codec.TypeEntityDestroy, 0, 1, 1, codec.EntityDestroy{EntityID: uint32(id)})
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: buf}, nil))
	require.False(t, w.IsAlive(id))
}

func TestDispatchTransformSnapshotUpdatesExistingEntity(t *testing.T) {
	w, c := newTestCoordinator(t, false)
	id, err := c.SpawnEnemy(1_000_020, 0, 0, 0, ecs.AIPatrol)
	require.NoError(t, err)

	entries := []codec.SnapshotEntry[codec.TransformData]{
		{EntityID: uint32(id), Data: codec.TransformData{X: 123, Y: -45, Scale: 1000}},
	}
	buf, err := codec.EncodeSnapshot(codec.TypeTransformSnapshot, 1, 1, 10, entries)
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: buf}, nil))

	transform, err := ecs.GetComponent[ecs.Transform](w, id)
	require.NoError(t, err)
	require.Equal(t, 123.0, transform.X)
	require.Equal(t, -45.0, transform.Y)
}

func TestDispatchTransformSnapshotUnknownEntityInvokesMissingHook(t *testing.T) {
	_, c := newTestCoordinator(t, false)
	var missing []ecs.EntityID
	c.OnMissingEntityHook = func(id ecs.EntityID) { missing = append(missing, id) }

	entries := []codec.SnapshotEntry[codec.TransformData]{{EntityID: 1_000_099, Data: codec.TransformData{}}}
	buf, err := codec.EncodeSnapshot(codec.TypeTransformSnapshot, 1, 1, 1, entries)
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: buf}, nil))
	require.Equal(t, []ecs.EntityID{1_000_099}, missing)
}

func TestHandleReadyUpdatesReadyMapAndInvokesCallback(t *testing.T) {
	_, c := newTestCoordinator(t, false)
	var gotPlayer uint32
	var gotReady bool
	c.OnReady = func(playerID uint32, ready bool) { gotPlayer, gotReady = playerID, ready }

	buf, err := codec.EncodePacket(codec.TypePlayerIsReady, 0, 1, 1, codec.PlayerIsReady{PlayerID: 9})
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: buf}, nil))
	require.True(t, c.IsReady(9))
	require.Equal(t, uint32(9), gotPlayer)
	require.True(t, gotReady)
}

func TestQueueWeaponFireDrainsOnProduceServerTick(t *testing.T) {
	_, c := newTestCoordinator(t, true)
	c.QueueWeaponFire(1, 2, ecs.WeaponBasic, 0, 0, 1, 0)

	packets := c.ProduceServerTick(1, 1000)
	require.NotEmpty(t, packets)

	found := false
	for _, pkt := range packets {
		typ, err := codec.Validate(pkt.Payload)
		require.NoError(t, err)
		if typ == codec.TypeWeaponFire {
			found = true
		}
	}
	require.True(t, found)
}

func TestProduceServerTickEmitsEntitySpawnOnce(t *testing.T) {
	_, c := newTestCoordinator(t, true)
	_, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	first := c.ProduceServerTick(1, 1000)
	second := c.ProduceServerTick(2, 1016)

	countSpawns := func(pkts []network.OutboundPacket) int {
		n := 0
		for _, pkt := range pkts {
			typ, err := codec.Validate(pkt.Payload)
			require.NoError(t, err)
			if typ == codec.TypeEntitySpawn {
				n++
			}
		}
		return n
	}
	// An owned player goes out twice: the broadcast copy and the owner's
	// is_playable copy.
	require.Equal(t, 2, countSpawns(first))
	require.Equal(t, 0, countSpawns(second))
}

package coordinator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/coordinator"
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

type recordingSender struct {
	sent []network.OutboundPacket
}

func (s *recordingSender) QueueOutgoing(pkt network.OutboundPacket) {
	s.sent = append(s.sent, pkt)
}

func TestHandleWeaponFireSpawnsLocalProjectile(t *testing.T) {
	w, c := newTestCoordinator(t, false)
	shooter, err := c.SpawnPlayer(1_000_001, 1, 0, 0, true, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	buf, err := codec.EncodePacket(codec.TypeWeaponFire, 0, 1, 1, codec.WeaponFire{
		ShooterID:  uint32(shooter),
		OriginX:    10,
		OriginY:    20,
		DirectionX: 1000,
		DirectionY: 0,
		WeaponType: codec.WeaponType(ecs.WeaponBasic),
	})
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: buf}, nil))

	store, err := ecs.Store[ecs.Projectile](w)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
}

func TestHandlePlayerInputServerAppliesAndRelaysWithAntiEcho(t *testing.T) {
	w, c := newTestCoordinator(t, true)
	player, err := c.SpawnPlayer(1_000_001, 42, 0, 0, false, coordinator.PlayerSpawnOptions{})
	require.NoError(t, err)

	buf, err := codec.EncodePacket(codec.TypePlayerInput, 0, 1, 1, codec.PlayerInput{
		PlayerID:   42,
		InputState: uint16(codec.InputMoveUp),
		AimX:       100,
		AimY:       200,
	})
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	sender := &recordingSender{}
	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: buf, ClientID: 7}, sender))

	inputs, err := ecs.Store[ecs.InputComponent](w)
	require.NoError(t, err)
	in, ok := inputs.Get(player)
	require.True(t, ok)
	require.True(t, in.Actions[ecs.ActionMoveUp])
	require.Equal(t, 100.0, in.LastReportX)

	require.Len(t, sender.sent, 1)
	require.True(t, sender.sent[0].Broadcast)
	require.True(t, sender.sent[0].HasExceptClient)
	require.Equal(t, uint32(7), sender.sent[0].ExceptClientID)
}

func TestHandlePlayerInputClientDoesNotRelay(t *testing.T) {
	_, c := newTestCoordinator(t, false)

	buf, err := codec.EncodePacket(codec.TypePlayerInput, 0, 1, 1, codec.PlayerInput{PlayerID: 1})
	require.NoError(t, err)
	h, err := codec.DecodeHeader(buf)
	require.NoError(t, err)

	sender := &recordingSender{}
	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: buf}, sender))
	require.Empty(t, sender.sent)
}

func TestHandleGameStartAndEndInvokeGameStateCallback(t *testing.T) {
	_, c := newTestCoordinator(t, false)
	var events []string
	c.OnGameState = func(event string) { events = append(events, event) }

	startBuf, err := codec.EncodePacket(codec.TypeGameStart, 0, 1, 1, codec.GameStart{})
	require.NoError(t, err)
	h, err := codec.DecodeHeader(startBuf)
	require.NoError(t, err)
	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: startBuf}, nil))

	endBuf, err := codec.EncodePacket(codec.TypeGameEnd, 0, 2, 2, codec.GameEnd{})
	require.NoError(t, err)
	h2, err := codec.DecodeHeader(endBuf)
	require.NoError(t, err)
	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h2, Payload: endBuf}, nil))

	require.Equal(t, []string{"game_start", "game_end"}, events)
}

func TestHandleComponentAddAndRemove(t *testing.T) {
	w, c := newTestCoordinator(t, false)
	id, err := c.SpawnEnemy(1_000_030, 0, 0, 0, ecs.AIPatrol)
	require.NoError(t, err)
	require.False(t, ecs.HasComponent[ecs.Weapon](w, id))

	// Build component_add/remove payloads directly since their bodies are
	// variable-length and not modeled as a fixed struct.
	buildPayload := func(typ codec.Type, entity ecs.EntityID, component codec.ComponentType) []byte {
		// entity_id, component_type, data_size (0: no data follows).
		body := make([]byte, 6)
		body[0] = byte(entity)
		body[1] = byte(entity >> 8)
		body[2] = byte(entity >> 16)
		body[3] = byte(entity >> 24)
		body[4] = byte(component)
		h := codec.Header{Magic: codec.Magic, Type: typ, SequenceNumber: 1, TimestampMS: 1}
		return append(codec.EncodeHeader(h), body...)
	}

	addBuf := buildPayload(codec.TypeComponentAdd, id, codec.ComponentWeapon)
	h, err := codec.DecodeHeader(addBuf)
	require.NoError(t, err)
	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h, Payload: addBuf}, nil))
	require.True(t, ecs.HasComponent[ecs.Weapon](w, id))

	removeBuf := buildPayload(codec.TypeComponentRemove, id, codec.ComponentWeapon)
	h2, err := codec.DecodeHeader(removeBuf)
	require.NoError(t, err)
	require.NoError(t, c.Dispatch(network.InboundPacket{Header: h2, Payload: removeBuf}, nil))
	require.False(t, ecs.HasComponent[ecs.Weapon](w, id))
}

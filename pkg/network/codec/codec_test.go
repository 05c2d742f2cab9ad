package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/network/codec"
)

func TestEncodeDecodePacketRoundTrip(t *testing.T) {
	body := codec.PlayerInput{PlayerID: 7, InputState: uint16(codec.InputMoveUp | codec.InputFirePrimary), AimX: 100, AimY: 200}

	buf, err := codec.EncodePacket(codec.TypePlayerInput, 0, 42, 9999, body)
	require.NoError(t, err)

	h, got, err := codec.DecodePacket[codec.PlayerInput](buf)
	require.NoError(t, err)
	require.Equal(t, codec.TypePlayerInput, h.Type)
	require.Equal(t, uint32(42), h.SequenceNumber)
	require.Equal(t, uint32(9999), h.TimestampMS)
	require.Equal(t, body, got)
}

func TestEncodePacketRejectsOversizedPayload(t *testing.T) {
	type huge struct {
		Data [codec.MaxUDPPayload]byte
	}
	_, err := codec.EncodePacket(codec.TypePlayerInput, 0, 1, 1, huge{})
	require.Error(t, err)

	var cerr *codec.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.KindMalformed, cerr.Kind)
}

func TestDecodePacketPayloadTooShort(t *testing.T) {
	h := codec.Header{Magic: codec.Magic, Type: codec.TypePlayerHit, SequenceNumber: 1, TimestampMS: 1}
	buf := codec.EncodeHeader(h)

	_, _, err := codec.DecodePacket[codec.PlayerHit](buf)
	require.Error(t, err)

	var cerr *codec.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.KindPayloadTooShort, cerr.Kind)
}

func TestValidateAcceptsWellFormedPacket(t *testing.T) {
	buf, err := codec.EncodePacket(codec.TypeHeartbeat, 0, 1, 1, codec.HeartBeat{PlayerID: 3})
	require.NoError(t, err)

	typ, err := codec.Validate(buf)
	require.NoError(t, err)
	require.Equal(t, codec.TypeHeartbeat, typ)
}

func TestValidateRejectsBadMagic(t *testing.T) {
	buf, err := codec.EncodePacket(codec.TypeHeartbeat, 0, 1, 1, codec.HeartBeat{PlayerID: 3})
	require.NoError(t, err)
	buf[0], buf[1] = 0xAA, 0xBB

	_, err = codec.Validate(buf)
	require.Error(t, err)

	var cerr *codec.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.KindMagicMismatch, cerr.Kind)
}

func TestValidateRejectsUnknownType(t *testing.T) {
	buf, err := codec.EncodePacket(codec.TypeHeartbeat, 0, 1, 1, codec.HeartBeat{PlayerID: 3})
	require.NoError(t, err)
	buf[2] = 0xFE

	_, err = codec.Validate(buf)
	require.Error(t, err)

	var cerr *codec.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.KindUnknownType, cerr.Kind)
}

func TestValidateRejectsShortPayload(t *testing.T) {
	buf, err := codec.EncodePacket(codec.TypeHeartbeat, 0, 1, 1, codec.HeartBeat{PlayerID: 3})
	require.NoError(t, err)
	buf = buf[:len(buf)-1]

	_, err = codec.Validate(buf)
	require.Error(t, err)

	var cerr *codec.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.KindPayloadTooShort, cerr.Kind)
}

func TestValidateAcceptsMinimalFixedBodyPackets(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
	}{
		{"ClientConnect", mustEncode(t, codec.TypeClientConnect, codec.ClientConnect{})},
		{"ServerAccept", mustEncode(t, codec.TypeServerAccept, codec.ServerAccept{})},
		{"ServerReject", mustEncode(t, codec.TypeServerReject, codec.ServerReject{})},
		{"EntitySpawn", mustEncode(t, codec.TypeEntitySpawn, codec.EntitySpawn{EntityType: codec.EntityTypePlayer})},
		{"WeaponFire", mustEncode(t, codec.TypeWeaponFire, codec.WeaponFire{})},
		{"GameStart", mustEncode(t, codec.TypeGameStart, codec.GameStart{})},
		{"PlayerIsReady", mustEncode(t, codec.TypePlayerIsReady, codec.PlayerIsReady{})},
		{"PlayerNotReady", mustEncode(t, codec.TypePlayerNotReady, codec.PlayerNotReady{})},
		{"Ack", mustEncode(t, codec.TypeAck, codec.Acknowledgment{})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typ, err := codec.Validate(tc.buf)
			require.NoError(t, err)
			require.NotZero(t, typ)
		})
	}
}

func TestValidateRejectsOutOfRangeEnum(t *testing.T) {
	buf, err := codec.EncodePacket(codec.TypeEntitySpawn, 0, 1, 1, codec.EntitySpawn{EntityType: codec.EntityTypePlayer})
	require.NoError(t, err)
	buf[codec.HeaderSize+4] = 0xEE // EntityType field, not a defined value

	_, err = codec.Validate(buf)
	require.Error(t, err)

	var cerr *codec.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.KindOutOfRange, cerr.Kind)
}

func mustEncode[T any](t *testing.T, typ codec.Type, body T) []byte {
	t.Helper()
	buf, err := codec.EncodePacket(typ, 0, 1, 1, body)
	require.NoError(t, err)
	return buf
}

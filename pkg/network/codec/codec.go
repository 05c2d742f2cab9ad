package codec

import (
	"bytes"
	"encoding/binary"
)

// EncodeHeader serializes h into its fixed 12-byte wire form.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.Magic)
	buf[2] = byte(h.Type)
	buf[3] = byte(h.Flags)
	binary.LittleEndian.PutUint32(buf[4:8], h.SequenceNumber)
	binary.LittleEndian.PutUint32(buf[8:12], h.TimestampMS)
	return buf
}

// DecodeHeader parses the fixed 12-byte prefix of buf. Fails with
// KindTooShort if buf is under 12 bytes.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, newError(KindTooShort, "packet is %d bytes, header needs %d", len(buf), HeaderSize)
	}
	return Header{
		Magic:          binary.LittleEndian.Uint16(buf[0:2]),
		Type:           Type(buf[2]),
		Flags:          Flags(buf[3]),
		SequenceNumber: binary.LittleEndian.Uint32(buf[4:8]),
		TimestampMS:    binary.LittleEndian.Uint32(buf[8:12]),
	}, nil
}

// EncodePacket builds a full datagram: header followed by the
// little-endian binary encoding of body. body's fields must all be
// fixed-width (no slices, strings or maps) so binary.Write can encode it
// directly.
func EncodePacket[T any](t Type, flags Flags, seq, tsMS uint32, body T) ([]byte, error) {
	h := Header{Magic: Magic, Type: t, Flags: flags, SequenceNumber: seq, TimestampMS: tsMS}
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+binarySize(body)))
	buf.Write(EncodeHeader(h))
	if err := binary.Write(buf, binary.LittleEndian, body); err != nil {
		return nil, newError(KindMalformed, "encoding %T: %v", body, err)
	}
	if buf.Len() > MaxUDPPayload {
		return nil, newError(KindMalformed, "encoded packet of %d bytes exceeds max UDP payload %d", buf.Len(), MaxUDPPayload)
	}
	return buf.Bytes(), nil
}

// DecodePacket parses buf's header and, if it carries at least
// binary.Size(T) payload bytes, decodes the fixed body of type T.
func DecodePacket[T any](buf []byte) (Header, T, error) {
	var body T
	h, err := DecodeHeader(buf)
	if err != nil {
		return h, body, err
	}
	payload := buf[HeaderSize:]
	want := binarySize(body)
	if len(payload) < want {
		return h, body, newError(KindPayloadTooShort, "payload is %d bytes, type %d needs at least %d", len(payload), h.Type, want)
	}
	if err := binary.Read(bytes.NewReader(payload[:want]), binary.LittleEndian, &body); err != nil {
		return h, body, newError(KindMalformed, "decoding %T: %v", body, err)
	}
	return h, body, nil
}

func binarySize(v any) int {
	n := binary.Size(v)
	if n < 0 {
		return 0
	}
	return n
}

// entry is one row of the dispatch table: the minimum payload size a
// packet of this type must carry to be considered well-formed, used by
// Validate. A linear scan over ~38 entries is the dispatch mechanism
// spec.md §4.2 calls for.
type entry struct {
	typ     Type
	minSize int
}

var table = []entry{
	{TypeClientConnect, binarySize(ClientConnect{})},
	{TypeServerAccept, binarySize(ServerAccept{})},
	{TypeServerReject, binarySize(ServerReject{})},
	{TypeClientDisconnect, binarySize(ClientDisconnect{})},
	{TypeHeartbeat, binarySize(HeartBeat{})},
	{TypePlayerInput, binarySize(PlayerInput{})},
	{TypeEntitySpawn, binarySize(EntitySpawn{})},
	{TypeEntityDestroy, binarySize(EntityDestroy{})},
	{TypeTransformSnapshot, binarySize(snapshotHeader{})},
	{TypeVelocitySnapshot, binarySize(snapshotHeader{})},
	{TypeHealthSnapshot, binarySize(snapshotHeader{})},
	{TypeWeaponSnapshot, binarySize(snapshotHeader{})},
	{TypeAISnapshot, binarySize(snapshotHeader{})},
	{TypeAnimationSnapshot, binarySize(snapshotHeader{})},
	{TypeComponentAdd, 4 + 1 + 1}, // entity_id, component_type, data_size (+ data, variable)
	{TypeComponentRemove, 4 + 1},
	{TypeTransformSnapshotDelta, binarySize(deltaSnapshotHeader{})},
	{TypeHealthSnapshotDelta, binarySize(deltaSnapshotHeader{})},
	{TypeEntityFullState, 4 + 1 + 1}, // entity_id, entity_type, component_count (+ entries, variable)
	{TypePlayerHit, binarySize(PlayerHit{})},
	{TypePlayerDeath, binarySize(PlayerDeath{})},
	{TypeScoreUpdate, binarySize(ScoreUpdate{})},
	{TypePowerPickup, binarySize(PowerupPickup{})},
	{TypeWeaponFire, binarySize(WeaponFire{})},
	{TypeVisualEffect, binarySize(VisualEffect{})},
	{TypeAudioEffect, binarySize(AudioEffect{})},
	{TypeParticleSpawn, binarySize(ParticleSpawn{})},
	{TypeGameStart, binarySize(GameStart{})},
	{TypeGameEnd, binarySize(GameEnd{})},
	{TypeLevelComplete, binarySize(LevelComplete{})},
	{TypeLevelStart, binarySize(LevelStart{})},
	{TypeForceState, binarySize(ForceState{})},
	{TypeAIState, binarySize(AIState{})},
	{TypePlayerIsReady, binarySize(PlayerIsReady{})},
	{TypePlayerNotReady, binarySize(PlayerNotReady{})},
	{TypeAck, binarySize(Acknowledgment{})},
	{TypePing, binarySize(Ping{})},
	{TypePong, binarySize(Pong{})},
}

// Validate reports whether buf is a well-formed packet: magic matches,
// the type is known, the payload meets the type's declared minimum size,
// and any enum-typed field the body carries holds a defined value. It
// never mutates ECS state and never allocates a decoded body for callers
// - decoding happens again, separately, once validation passes.
func Validate(buf []byte) (Type, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return 0, err
	}
	if h.Magic != Magic {
		return 0, newError(KindMagicMismatch, "got magic 0x%04x, want 0x%04x", h.Magic, Magic)
	}
	for _, e := range table {
		if e.typ == h.Type {
			if len(buf)-HeaderSize < e.minSize {
				return h.Type, newError(KindPayloadTooShort, "type %d payload is %d bytes, needs at least %d", h.Type, len(buf)-HeaderSize, e.minSize)
			}
			if err := validateEnums(h.Type, buf); err != nil {
				return h.Type, err
			}
			return h.Type, nil
		}
	}
	return 0, newError(KindUnknownType, "unknown packet type 0x%02x", byte(h.Type))
}

// enumIn reports whether v is one of valid's members.
func enumIn[T ~uint8](v T, valid ...T) bool {
	for _, x := range valid {
		if v == x {
			return true
		}
	}
	return false
}

// validateEnums post-decodes the packet kinds that carry an enum-typed
// field and rejects a structurally well-formed but semantically invalid
// value (spec.md §4.2's validator contract). Packet kinds with no
// enum-typed field are left alone.
func validateEnums(t Type, buf []byte) error {
	switch t {
	case TypeServerReject:
		_, b, err := DecodePacket[ServerReject](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.RejectCode, RejectServerFull, RejectIncompatibleProtocolVersion, RejectInvalidPlayerName, RejectBannedClient, RejectGeneric) {
			return newError(KindOutOfRange, "reject_code 0x%02x out of range", byte(b.RejectCode))
		}
	case TypeClientDisconnect:
		_, b, err := DecodePacket[ClientDisconnect](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.Reason, ReasonNormalDisconnect, ReasonTimeout, ReasonKickedByServer, ReasonClientError, ReasonGeneric) {
			return newError(KindOutOfRange, "disconnect_reason 0x%02x out of range", byte(b.Reason))
		}
	case TypeEntitySpawn:
		_, b, err := DecodePacket[EntitySpawn](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.EntityType, EntityTypePlayer, EntityTypeEnemy, EntityTypeEnemyBoss, EntityTypeProjectilePlyr, EntityTypeProjectileEnemy, EntityTypePowerup, EntityTypeObstacle, EntityTypeBGElement) {
			return newError(KindOutOfRange, "entity_type 0x%02x out of range", byte(b.EntityType))
		}
	case TypeEntityDestroy:
		_, b, err := DecodePacket[EntityDestroy](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.DestroyReason, DestroyKilledByPlayer, DestroyKilledByEnemy, DestroyOutOfBounds, DestroyTimeoutDespawn, DestroyLevelTransition) {
			return newError(KindOutOfRange, "destroy_reason 0x%02x out of range", byte(b.DestroyReason))
		}
	case TypeScoreUpdate:
		_, b, err := DecodePacket[ScoreUpdate](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.Reason, ScoreEnemyKill, ScoreBossKill, ScorePowerupCollected, ScoreLevelCompleted, ScoreBonusSurvival, ScoreTookDamage) {
			return newError(KindOutOfRange, "score_reason 0x%02x out of range", byte(b.Reason))
		}
	case TypePowerPickup:
		_, b, err := DecodePacket[PowerupPickup](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.PowerupType, PowerupTypeSpeedBoost, PowerupTypeWeaponUpgrad, PowerupTypeForce, PowerupTypeShield, PowerupTypeExtraLife, PowerupTypeInvincible, PowerupTypeHeal) {
			return newError(KindOutOfRange, "powerup_type 0x%02x out of range", byte(b.PowerupType))
		}
	case TypeWeaponFire:
		_, b, err := DecodePacket[WeaponFire](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.WeaponType, WeaponTypeBasic, WeaponTypeCharged, WeaponTypeSpread, WeaponTypeLaser, WeaponTypeMissile, WeaponTypeForceShot) {
			return newError(KindOutOfRange, "weapon_type 0x%02x out of range", byte(b.WeaponType))
		}
	case TypeGameStart:
		_, b, err := DecodePacket[GameStart](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.Difficulty, DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyInsane) {
			return newError(KindOutOfRange, "difficulty 0x%02x out of range", byte(b.Difficulty))
		}
	case TypeGameEnd:
		_, b, err := DecodePacket[GameEnd](buf)
		if err != nil {
			return err
		}
		if !enumIn(b.EndReason, GameEndVictory, GameEndDefeat, GameEndTimeout, GameEndPlayerLeft, GameEndServerShutdown) {
			return newError(KindOutOfRange, "end_reason 0x%02x out of range", byte(b.EndReason))
		}
	}
	return nil
}

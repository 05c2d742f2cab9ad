package codec

// Fixed-body packet payloads. Field order and width match the original
// protocol header exactly; Header is encoded separately by Encode/Decode
// and is not repeated in these struct sizes.

// ClientConnect is sent client -> server to begin the handshake.
type ClientConnect struct {
	ProtocolVersion uint8
	PlayerName      [32]byte
	ClientID        uint32
}

// ServerAccept is sent server -> client on successful handshake. RELIABLE.
type ServerAccept struct {
	AssignedPlayerID uint32
	MaxPlayers       uint8
	GameInstanceID   uint32
	ServerTickRate   uint16
}

// ServerReject is sent server -> client on handshake refusal. RELIABLE.
type ServerReject struct {
	RejectCode    RejectCode
	ReasonMessage [64]byte
}

// ClientDisconnect notifies the peer of a voluntary or forced disconnect.
type ClientDisconnect struct {
	ClientID uint32
	Reason   DisconnectReason
}

// HeartBeat is sent periodically to keep a connection slot alive.
type HeartBeat struct {
	PlayerID uint32
}

// PlayerInput carries one tick's worth of input from client to server.
type PlayerInput struct {
	PlayerID    uint32
	InputState  uint16 // bitmask of InputFlag
	AimX, AimY  uint16
}

// EntitySpawn replicates a newly created entity to peers.
type EntitySpawn struct {
	EntityID      uint32
	EntityType    EntityType
	PositionX     uint16
	PositionY     uint16
	MobVariant    uint8
	InitialHealth uint8
	InitialVelX   uint16
	InitialVelY   uint16
	IsPlayable    uint8 // 1 only on the owning client's copy
}

// EntityDestroy replicates an entity's removal.
type EntityDestroy struct {
	EntityID      uint32
	DestroyReason DestroyReason
	FinalPosX     uint16
	FinalPosY     uint16
}

// PlayerHit reports damage dealt to a player.
type PlayerHit struct {
	PlayerID        uint32
	AttackerID      uint32
	Damage          uint8
	RemainingHealth uint8
	RemainingShield uint8
	HitPosX         int16
	HitPosY         int16
}

// PlayerDeath reports a player's death.
type PlayerDeath struct {
	PlayerID         uint32
	KillerID         uint32
	ScoreBeforeDeath uint32
	DeathPosX        int16
	DeathPosY        int16
}

// ScoreUpdate reports a score change.
type ScoreUpdate struct {
	PlayerID   uint32
	NewScore   uint32
	ScoreDelta int16
	Reason     ScoreChangeReason
}

// PowerupPickup reports a player collecting a powerup.
type PowerupPickup struct {
	PlayerID    uint32
	PowerupID   uint32
	PowerupType PowerupType
	DurationS   uint8
}

// WeaponFire reports a shot, direction normalized x1000.
type WeaponFire struct {
	ShooterID    uint32
	ProjectileID uint32
	OriginX      int16
	OriginY      int16
	DirectionX   int16
	DirectionY   int16
	WeaponType   WeaponType
}

// GameStart announces a match beginning.
type GameStart struct {
	GameInstanceID uint32
	PlayerCount    uint8
	PlayerIDs      [4]uint32
	LevelID        uint8
	Difficulty     DifficultyLevel
}

// GameEnd announces a match ending.
type GameEnd struct {
	EndReason   GameEndReason
	FinalScores [4]uint32
	WinnerID    uint8
	PlayTimeS   uint32
}

// LevelComplete announces a level's completion.
type LevelComplete struct {
	CompletedLevel   uint8
	NextLevel        uint8
	BonusScore       uint32
	CompletionTimeS  uint16
}

// LevelStart announces a level's beginning.
type LevelStart struct {
	LevelID            uint8
	LevelName          [32]byte
	EstimatedDurationS uint16
}

// PlayerIsReady / PlayerNotReady toggle a player's ready-check state.
type PlayerIsReady struct {
	PlayerID uint32
}

type PlayerNotReady struct {
	PlayerID uint32
}

// Acknowledgment ACKs a previously sent RELIABLE packet.
type Acknowledgment struct {
	AckedSequence    uint32
	ReceivedTSMS     uint32
	ClientID         uint32
}

// Ping / Pong measure round-trip latency.
type Ping struct {
	ClientTSMS uint32
	ClientID   uint32
}

type Pong struct {
	ClientTSMS uint32
	ServerTSMS uint32
}

// VisualEffect requests a client-side effect at a position.
type VisualEffect struct {
	EffectType  uint8
	PosX, PosY  int16
	DurationMS  uint16
	Scale       uint8
	TintR       uint8
	TintG       uint8
	TintB       uint8
}

// AudioEffect requests a client-side sound at a position.
type AudioEffect struct {
	EffectType uint8
	PosX, PosY int16
	Volume     uint8
	Pitch      uint8
}

// ParticleSpawn requests a client-side particle system.
type ParticleSpawn struct {
	ParticleSystemID uint16
	PosX, PosY       int16
	VelX, VelY       int16
	ParticleCount    uint16
	LifetimeMS       uint16
	ColorStartR      uint8
	ColorStartG      uint8
	ColorStartB      uint8
	ColorEndR        uint8
	ColorEndG        uint8
	ColorEndB        uint8
}

// ForceState replicates the R-Type "Force pod" attachment.
type ForceState struct {
	ForceEntityID    uint32
	ParentShipID     uint32
	AttachmentPoint  uint8
	PowerLevel       uint8
	ChargePercentage uint8
	IsFiring         uint8
}

// AIState replicates an AI entity's behavior state.
type AIState struct {
	EntityID        uint32
	CurrentState    uint8
	BehaviorType    uint8
	TargetEntityID  uint32
	WaypointX       int16
	WaypointY       int16
	StateTimerMS    uint16
}

// snapshotHeader is the common prefix of every per-component snapshot
// packet: world_tick then entity_count, following directly after the
// 12-byte packet Header (spec.md §4.2).
type snapshotHeader struct {
	WorldTick   uint32
	EntityCount uint16
}

// deltaSnapshotHeader additionally carries the base tick the delta is
// relative to.
type deltaSnapshotHeader struct {
	WorldTick   uint32
	BaseTick    uint32
	EntityCount uint16
}

package codec

// Type is the packet_type byte. Values and family ranges are exactly
// those of the original protocol header: Connection 0x01-0x0F, Input
// 0x10, World state 0x20-0x3F, Game events 0x40-0x5F, Game control
// 0x60-0x6F, Protocol control 0x70-0x7F.
type Type uint8

const (
	// Connection (0x01-0x0F)
	TypeClientConnect    Type = 0x01
	TypeServerAccept     Type = 0x02
	TypeServerReject     Type = 0x03
	TypeClientDisconnect Type = 0x04
	TypeHeartbeat        Type = 0x05

	// Input (0x10)
	TypePlayerInput Type = 0x10

	// World state (0x20-0x3F)
	TypeEntitySpawn            Type = 0x21
	TypeEntityDestroy          Type = 0x22
	TypeTransformSnapshot      Type = 0x24
	TypeVelocitySnapshot       Type = 0x25
	TypeHealthSnapshot         Type = 0x26
	TypeWeaponSnapshot         Type = 0x27
	TypeAISnapshot             Type = 0x28
	TypeAnimationSnapshot      Type = 0x29
	TypeComponentAdd           Type = 0x2A
	TypeComponentRemove        Type = 0x2B
	TypeTransformSnapshotDelta Type = 0x2C
	TypeHealthSnapshotDelta    Type = 0x2D
	TypeEntityFullState        Type = 0x2E

	// Game events (0x40-0x5F)
	TypePlayerHit     Type = 0x40
	TypePlayerDeath   Type = 0x41
	TypeScoreUpdate   Type = 0x42
	TypePowerPickup   Type = 0x43
	TypeWeaponFire    Type = 0x44
	TypeVisualEffect  Type = 0x50
	TypeAudioEffect   Type = 0x51
	TypeParticleSpawn Type = 0x52

	// Game control (0x60-0x6F)
	TypeGameStart      Type = 0x60
	TypeGameEnd        Type = 0x61
	TypeLevelComplete  Type = 0x62
	TypeLevelStart     Type = 0x63
	TypeForceState     Type = 0x64
	TypeAIState        Type = 0x65
	// PLAYER_IS_READY / PLAYER_NOT_READY are not present in the excerpted
	// original protocol enum, which otherwise fully occupies 0x60-0x65 in
	// the Game control range; assigned the next two free bytes (see
	// DESIGN.md "Open Question decisions").
	TypePlayerIsReady  Type = 0x66
	TypePlayerNotReady Type = 0x67

	// Protocol control (0x70-0x7F)
	TypeAck  Type = 0x70
	TypePing Type = 0x71
	TypePong Type = 0x72
)

// RejectCode names why a CLIENT_CONNECT was refused.
type RejectCode uint8

const (
	RejectServerFull                  RejectCode = 0x00
	RejectIncompatibleProtocolVersion RejectCode = 0x01
	RejectInvalidPlayerName           RejectCode = 0x02
	RejectBannedClient                RejectCode = 0x03
	RejectGeneric                     RejectCode = 0xFF
)

// DisconnectReason names why a CLIENT_DISCONNECT was sent/received.
type DisconnectReason uint8

const (
	ReasonNormalDisconnect DisconnectReason = 0x00
	ReasonTimeout          DisconnectReason = 0x01
	ReasonKickedByServer   DisconnectReason = 0x02
	ReasonClientError      DisconnectReason = 0x03
	ReasonGeneric          DisconnectReason = 0xFF
)

// EntityType names the kind of entity ENTITY_SPAWN/ENTITY_FULL_STATE
// describe.
type EntityType uint8

const (
	EntityTypePlayer          EntityType = 0x01
	EntityTypeEnemy           EntityType = 0x02
	EntityTypeEnemyBoss       EntityType = 0x03
	EntityTypeProjectilePlyr  EntityType = 0x04
	EntityTypeProjectileEnemy EntityType = 0x05
	EntityTypePowerup         EntityType = 0x06
	EntityTypeObstacle        EntityType = 0x07
	EntityTypeBGElement       EntityType = 0x08
)

// DestroyReason names why ENTITY_DESTROY was emitted.
type DestroyReason uint8

const (
	DestroyKilledByPlayer   DestroyReason = 0x00
	DestroyKilledByEnemy    DestroyReason = 0x01
	DestroyOutOfBounds      DestroyReason = 0x02
	DestroyTimeoutDespawn   DestroyReason = 0x03
	DestroyLevelTransition  DestroyReason = 0x04
)

// ScoreChangeReason names why SCORE_UPDATE changed a player's score.
type ScoreChangeReason uint8

const (
	ScoreEnemyKill        ScoreChangeReason = 0x00
	ScoreBossKill         ScoreChangeReason = 0x01
	ScorePowerupCollected ScoreChangeReason = 0x02
	ScoreLevelCompleted   ScoreChangeReason = 0x03
	ScoreBonusSurvival    ScoreChangeReason = 0x04
	ScoreTookDamage       ScoreChangeReason = 0x05
)

// PowerupType names the pickup/effect kind of POWER_PICKUP.
type PowerupType uint8

const (
	PowerupTypeSpeedBoost   PowerupType = 0x00
	PowerupTypeWeaponUpgrad PowerupType = 0x01
	PowerupTypeForce        PowerupType = 0x02
	PowerupTypeShield       PowerupType = 0x03
	PowerupTypeExtraLife    PowerupType = 0x04
	PowerupTypeInvincible   PowerupType = 0x05
	PowerupTypeHeal         PowerupType = 0x06
)

// WeaponType names the weapon family WEAPON_FIRE describes.
type WeaponType uint8

const (
	WeaponTypeBasic     WeaponType = 0x00
	WeaponTypeCharged   WeaponType = 0x01
	WeaponTypeSpread    WeaponType = 0x02
	WeaponTypeLaser     WeaponType = 0x03
	WeaponTypeMissile   WeaponType = 0x04
	WeaponTypeForceShot WeaponType = 0x05
)

// DifficultyLevel names GAME_START's difficulty field.
type DifficultyLevel uint8

const (
	DifficultyEasy   DifficultyLevel = 0x00
	DifficultyNormal DifficultyLevel = 0x01
	DifficultyHard   DifficultyLevel = 0x02
	DifficultyInsane DifficultyLevel = 0x03
)

// GameEndReason names GAME_END's end_reason field.
type GameEndReason uint8

const (
	GameEndVictory        GameEndReason = 0x00
	GameEndDefeat         GameEndReason = 0x01
	GameEndTimeout        GameEndReason = 0x02
	GameEndPlayerLeft     GameEndReason = 0x03
	GameEndServerShutdown GameEndReason = 0x04
)

// ComponentType is the wire byte identifying a component kind in
// COMPONENT_ADD/REMOVE and ENTITY_FULL_STATE. These values are not the
// ecs.ComponentTypeID values (those are assigned from 0 in registration
// order); pkg/coordinator maps each wire value to its ECS component type
// explicitly.
type ComponentType uint8

const (
	ComponentTransform ComponentType = 0x01
	ComponentVelocity  ComponentType = 0x02
	ComponentHealth    ComponentType = 0x03
	ComponentWeapon    ComponentType = 0x04
	ComponentAI        ComponentType = 0x05
	ComponentForce     ComponentType = 0x06
	ComponentHitBox    ComponentType = 0x07
	ComponentSprite    ComponentType = 0x08
	ComponentAnimation ComponentType = 0x09
	ComponentPowerup   ComponentType = 0x0A
	ComponentScore     ComponentType = 0x0B
	ComponentInput     ComponentType = 0x0C
	ComponentPhysics   ComponentType = 0x0D
	ComponentLifetime  ComponentType = 0x0E
	ComponentParent    ComponentType = 0x0F
)

// InputFlag is a bit in PlayerInput.InputState.
type InputFlag uint16

const (
	InputMoveUp        InputFlag = 0x0001
	InputMoveDown      InputFlag = 0x0002
	InputMoveLeft      InputFlag = 0x0004
	InputMoveRight     InputFlag = 0x0008
	InputFirePrimary   InputFlag = 0x0010
	InputFireSecondary InputFlag = 0x0020
	InputActionSpecial InputFlag = 0x0040

	InputFlagsMask InputFlag = 0x01FF
)

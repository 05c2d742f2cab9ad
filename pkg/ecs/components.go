package ecs

// Core component set. Names and fields follow spec.md §3; wire-visible
// fixed-point and byte layouts for the subset that crosses the network
// live in pkg/network/codec, not here - these are the in-process,
// full-precision representations the gameplay systems operate on.

// Transform is the entity's position, facing and scale.
type Transform struct {
	X, Y     float64
	Rotation float64 // degrees, 0-360
	Scale    float64
}

// Velocity is the entity's linear velocity in units/second.
type Velocity struct {
	VX, VY float64
}

// Health tracks current and maximum hit points.
type Health struct {
	Current, Max int
}

// WeaponKind identifies a weapon's projectile/behavior family.
type WeaponKind uint8

const (
	WeaponBasic WeaponKind = iota
	WeaponCharged
	WeaponSpread
	WeaponLaser
	WeaponMissile
	WeaponForceShot
)

// Weapon tracks fire timing and the projectile kind it produces.
type Weapon struct {
	FireRateMS   int
	LastShotMS   int64
	Damage       int
	ProjectileOf WeaponKind
}

// NetworkID marks an entity as networked and records the owning client
// for entities whose lifecycle is tied to a player connection.
type NetworkID struct {
	ID       EntityID
	IsLocal  bool // true on the peer that owns/controls this entity
	OwnerPID uint32
}

// InputAction names one logical input the InputComponent tracks.
type InputAction uint8

const (
	ActionMoveUp InputAction = iota
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionFirePrimary
	ActionFireSecondary
	ActionSpecial
)

// InputComponent holds the latest input state reported by a client,
// plus the last position the client itself reported (for reconciliation).
type InputComponent struct {
	PlayerID    uint32
	Actions     map[InputAction]bool
	LastReportX float64
	LastReportY float64
	SequenceNum uint32
}

// Playable tags an entity as a player-controlled ship.
type Playable struct{}

// Enemy tags an entity as AI-controlled.
type Enemy struct {
	BossTier int // 0 = regular enemy
}

// Projectile tags an entity as a weapon projectile. Projectiles never
// carry NetworkID (spec.md §3 invariant); they are reconstructed locally
// from WEAPON_FIRE events on every peer.
type Projectile struct {
	ShooterID EntityID
	Kind      WeaponKind
	SpawnedAt int64 // ms, for lifetime expiry
}

// Team is a bitmask of factions an entity belongs to.
type Team uint8

const (
	TeamPlayer Team = 1 << iota
	TeamEnemy
	TeamObstacle
	TeamPowerup
	TeamNeutral
	TeamBoss
)

// HitBox is an axis-aligned collision descriptor.
type HitBox struct {
	Width, Height float64
	Layer, Mask   uint8
}

// Sprite is a visual descriptor consumed by an external rendering
// collaborator, not by any core system.
type Sprite struct {
	SpriteID         uint16
	R, G, B, A       uint8
	Layer            uint8
}

// Animation tracks frame playback state.
type Animation struct {
	AnimationID   uint16
	FrameIndex    uint16
	FrameDuration uint16
	LoopMode      uint8
}

// AIBehavior identifies a behavior pattern for the AI system.
type AIBehavior uint8

const (
	AIIdle AIBehavior = iota
	AIPatrol
	AIChase
	AIFlee
	AIAttackPattern1
	AIAttackPattern2
	AIAttackPattern3
	AIBossPhase1
	AIBossPhase2
	AIBossPhase3
	AIKamikaze
)

// AI holds behavior state for an AI-controlled entity.
type AI struct {
	Behavior        AIBehavior
	DetectionRange  float64
	AggroRange      float64
	TargetEntity    EntityID
	InternalClockMS int64
}

// Wave describes one level wave's spawn plan. Concrete spawn tables are a
// host-application concern; the core only tracks progression.
type Wave struct {
	EnemyCount int
	Completed  bool
}

// Level tracks wave progression for the level system.
type Level struct {
	Waves        []Wave
	CurrentIndex int
	ElapsedMS    int64
	Completed    bool
}

// Score tracks a player's point total.
type Score struct {
	PlayerID uint32
	Points   int
}

// DeadPlayer marks a player entity that has died but not yet been
// destroyed (e.g. awaiting a respawn decision by the host application).
type DeadPlayer struct {
	KillerID       EntityID
	ScoreAtDeath   int
	DiedAtMS       int64
}

// Lifetime expires an entity after the given duration, used by
// projectiles and transient effects.
type Lifetime struct {
	RemainingMS int64
}

// PowerupKind identifies a pickup's effect.
type PowerupKind uint8

const (
	PowerupSpeedBoost PowerupKind = iota
	PowerupWeaponUpgrade
	PowerupForce
	PowerupShield
	PowerupExtraLife
	PowerupInvincibility
	PowerupHeal
)

// Powerup describes a pickup entity or an active effect on a player.
type Powerup struct {
	Kind            PowerupKind
	DurationMS      int
	StackCount      uint8
}

// ForceAttachment identifies where a Force pod is attached.
type ForceAttachment uint8

const (
	ForceDetached ForceAttachment = iota
	ForceFront
	ForceBack
	ForceOrbiting
)

// Force is the R-Type signature "Force pod" weapon attachment.
type Force struct {
	ParentShip      EntityID
	Attachment      ForceAttachment
	PowerLevel      uint8
	ChargePercent   uint8
	Firing          bool
}

// GameConfig is a singleton-style component (attached to one bookkeeping
// entity) carrying run-level state the coordinator and gameplay systems
// share: whether the match is running, the active level, difficulty.
type GameConfig struct {
	Running     bool
	LevelID     uint8
	Difficulty  uint8
	InstanceID  uint32
}

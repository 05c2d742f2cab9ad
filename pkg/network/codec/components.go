package codec

// Wire-format component payloads batched into per-component snapshot
// packets. Widths are compact fixed-point/int16 encodings, not the
// full-precision float64 fields pkg/ecs.Components uses in-process;
// pkg/coordinator converts between the two at the snapshot boundary.

// TransformData is one entity's Transform on the wire: position as
// int16, rotation 0-65535 mapped to 0-360 degrees, scale as a x1000
// fixed-point value (1000 = 1.0x).
type TransformData struct {
	X, Y     int16
	Rotation uint16
	Scale    uint16
}

// VelocityData is one entity's Velocity plus instantaneous acceleration.
type VelocityData struct {
	VX, VY             int16
	AccelX, AccelY     int16
}

// HealthData is one entity's Health plus shield.
type HealthData struct {
	CurrentHealth, MaxHealth uint8
	CurrentShield, MaxShield uint8
}

// WeaponData is one entity's Weapon state.
type WeaponData struct {
	WeaponType        uint8
	AmmoCount         uint8
	CooldownRemaining uint16
	PowerLevel        uint8
}

// AIData is one entity's AI state.
type AIData struct {
	AIState        uint8
	BehaviorType   uint8
	TargetEntityID uint32
	StateTimer     uint16
}

// AnimationData is one entity's Animation state.
type AnimationData struct {
	AnimationID   uint16
	FrameIndex    uint16
	FrameDuration uint16
	LoopMode      uint8
}

// Per-component fixed wire sizes, used to compute snapshot packet
// lengths without re-deriving them from binary.Size at every call.
const (
	SizeTransformData = 8 // int16*2 + uint16*2
	SizeVelocityData  = 8
	SizeHealthData    = 4
	SizeWeaponData    = 5
	SizeAIData        = 8
	SizeAnimationData = 7
)

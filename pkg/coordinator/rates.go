package coordinator

import "github.com/opd-ai/rtype/pkg/network/codec"

// SnapshotRates maps a component's wire type to "emit every N ticks".
// Resolves the Open Question in spec.md §9: the original's documented
// per-component Hz targets, expressed as tick intervals at a 60Hz server
// (see DESIGN.md "Open Question decisions").
type SnapshotRates map[codec.ComponentType]int

// DefaultSnapshotRates reproduces original_source/Protocol.hpp's
// documented frequencies at the default 60Hz tick rate: Transform every
// tick, Velocity 30Hz, Health 20Hz, Weapon 10Hz, AI 5Hz, Animation 15Hz.
func DefaultSnapshotRates() SnapshotRates {
	return SnapshotRates{
		codec.ComponentTransform: 1,
		codec.ComponentVelocity:  2,
		codec.ComponentHealth:    3,
		codec.ComponentWeapon:    6,
		codec.ComponentAI:        12,
		codec.ComponentAnimation: 4,
	}
}

// due reports whether a component snapshotted at rate interval should be
// emitted on worldTick.
func (r SnapshotRates) due(component codec.ComponentType, worldTick uint32) bool {
	interval, ok := r[component]
	if !ok || interval <= 0 {
		interval = 1
	}
	return worldTick%uint32(interval) == 0
}

// Package coordinator bridges pkg/ecs and pkg/network/codec: it builds
// entities from packets, turns ECS mutations into packets, and owns the
// per-tick outbound batching described in SPEC_FULL.md §4.5. Nothing in
// pkg/ecs or pkg/network/codec imports this package; it is the one place
// that knows about both.
package coordinator

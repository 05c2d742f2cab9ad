// Package ecs implements the entity-component-system substrate the
// simulation runs on: entity ids partitioned into local and networked
// spaces with free-list recycling, a process-stable signature bitset per
// component type, sparse-set component storage, and a system registry
// that keeps each system's membership set synchronized with entity
// signature changes.
//
// Mutation only ever happens from the game loop's main goroutine; World
// holds no internal locking.
package ecs

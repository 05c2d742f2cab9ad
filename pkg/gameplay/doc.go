// Package gameplay implements the per-tick ECS systems spec.md §4.6
// names: input application, AI, movement, shooting, collision, level
// progression, scoring, and audio/visual bookkeeping. RegisterAll wires
// them onto a World in that exact order, matching the teacher's
// convention of one file per system under pkg/engine.
package gameplay

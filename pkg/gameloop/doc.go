// Package gameloop drives the fixed-timestep simulation described in
// spec.md §4.7: a debt-accumulator loop that steps the ECS world at a
// constant tick budget regardless of wall-clock jitter, bounded by a
// maximum number of catch-up ticks per iteration.
//
// The original C++ loop this is grounded on (Game::runGameLoop in
// _examples/original_source/src/game/src/Game.cpp) accumulates elapsed
// wall time and drains it in an unbounded while loop; a slow tick there
// can spiral into an ever-growing backlog. Loop caps the drain at
// MaxCatchUpTicks and discards any remaining debt, trading perfect
// determinism after a stall for a bounded worst case.
package gameloop

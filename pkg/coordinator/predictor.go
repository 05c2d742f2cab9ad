package coordinator

import (
	"sync"

	"github.com/opd-ai/rtype/pkg/ecs"
)

// predictedInput is one client-issued input, recorded so it can be
// replayed during reconciliation. Grounded in the teacher's
// pkg/network/prediction.go PredictedState, generalized from a
// position/velocity pair to the ECS Transform/Velocity components it
// resolves onto.
type predictedInput struct {
	Sequence uint32
	DX, DY   float64 // normalized movement direction this input applied
}

// Predictor implements client-side reconciliation (spec.md §9 Open
// Question): it records every local input applied to the predicted
// Transform/Velocity, and on each authoritative snapshot for the local
// player, resets to the server's state and replays every input the
// server had not yet acknowledged.
type Predictor struct {
	world  *ecs.World
	entity ecs.EntityID
	speed  float64 // units/second applied per unit direction

	mu           sync.Mutex
	history      []predictedInput
	lastAckedSeq uint32
}

// NewPredictor builds a Predictor for entity (the local player's ECS
// entity) within world, using speed as the movement rate a full-strength
// direction input applies per second.
func NewPredictor(world *ecs.World, entity ecs.EntityID, speed float64) *Predictor {
	return &Predictor{world: world, entity: entity, speed: speed, history: make([]predictedInput, 0, 128)}
}

// RecordAndApply predicts the effect of one input immediately (so local
// movement feels instantaneous) and stores it for later reconciliation.
func (p *Predictor) RecordAndApply(sequence uint32, dx, dy, dt float64) error {
	p.mu.Lock()
	p.history = append(p.history, predictedInput{Sequence: sequence, DX: dx, DY: dy})
	if len(p.history) > 128 {
		p.history = p.history[1:]
	}
	p.mu.Unlock()
	return p.integrate(dx, dy, dt)
}

func (p *Predictor) integrate(dx, dy, dt float64) error {
	t, err := ecs.GetComponent[ecs.Transform](p.world, p.entity)
	if err != nil {
		return err
	}
	t.X += dx * p.speed * dt
	t.Y += dy * p.speed * dt
	return ecs.AddComponent(p.world, p.entity, t)
}

// Reconcile applies an authoritative TRANSFORM_SNAPSHOT for the local
// player's entity: the server's state becomes the new baseline, every
// input up to and including ackedSeq is discarded as confirmed, and
// every input after it is replayed on top of the authoritative baseline
// (assuming a fixed per-tick dt, matching the server's tick budget).
func (p *Predictor) Reconcile(ackedSeq uint32, authoritative ecs.Transform, tickDT float64) error {
	if err := ecs.AddComponent(p.world, p.entity, authoritative); err != nil {
		return err
	}

	p.mu.Lock()
	p.lastAckedSeq = ackedSeq
	remaining := p.history[:0:0]
	for _, in := range p.history {
		if in.Sequence > ackedSeq {
			remaining = append(remaining, in)
		}
	}
	p.history = remaining
	replay := append([]predictedInput(nil), remaining...)
	p.mu.Unlock()

	for _, in := range replay {
		if err := p.integrate(in.DX, in.DY, tickDT); err != nil {
			return err
		}
	}
	return nil
}

// LastAckedSequence reports the most recent input sequence the server
// has confirmed.
func (p *Predictor) LastAckedSequence() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAckedSeq
}

// PendingInputs reports how many predicted inputs are still awaiting
// server acknowledgment.
func (p *Predictor) PendingInputs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.history)
}

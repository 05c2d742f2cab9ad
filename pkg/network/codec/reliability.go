package codec

import (
	"sync"
	"time"
)

// Tracker implements stop-and-wait delivery for packets carrying
// FlagReliable: one packet per sequence number is outstanding at a time
// per peer, retried on a backoff until acknowledged or abandoned after
// MaxRetries. This is the resolution to spec.md's reliable-delivery Open
// Question recorded in DESIGN.md; the codec itself stays agnostic of
// transport and only tracks acknowledgment bookkeeping.
type Tracker struct {
	mu            sync.Mutex
	pending       map[uint32]*pendingPacket
	retryInterval time.Duration
	maxRetries    int
}

type pendingPacket struct {
	payload  []byte
	sentAt   time.Time
	retries  int
}

// DefaultRetryInterval and DefaultMaxRetries: the wait doubles from 250ms
// on each retry, so an unacknowledged packet is abandoned roughly two
// minutes after it was first sent.
const (
	DefaultRetryInterval = 250 * time.Millisecond
	DefaultMaxRetries    = 8
)

// NewTracker builds a Tracker; non-positive arguments fall back to the
// defaults. The tracker reads no clock itself: Track and DueRetransmits
// take the current time as an argument, so tests can drive it with a
// fake clock.
func NewTracker(retryInterval time.Duration, maxRetries int) *Tracker {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Tracker{
		pending:       make(map[uint32]*pendingPacket),
		retryInterval: retryInterval,
		maxRetries:    maxRetries,
	}
}

// Track registers seq as awaiting acknowledgment, recording payload so it
// can be resent verbatim by DueRetransmits. Calling Track again for a
// sequence number already pending replaces its payload and resets its
// send clock, treating it as a fresh send.
func (t *Tracker) Track(seq uint32, payload []byte, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[seq] = &pendingPacket{payload: append([]byte(nil), payload...), sentAt: now}
}

// Ack removes seq from the pending set. Reports whether seq was actually
// pending, so callers can distinguish a real ACK from a duplicate/stale
// one arriving after the tracker already gave up on it.
func (t *Tracker) Ack(seq uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[seq]; !ok {
		return false
	}
	delete(t.pending, seq)
	return true
}

// Pending reports how many RELIABLE packets are still awaiting an ACK.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Retransmit is one packet due to be resent, or permanently abandoned.
type Retransmit struct {
	Sequence uint32
	Payload  []byte
	Abandoned bool
}

// DueRetransmits scans the pending set for packets whose retry deadline
// (sentAt + retryInterval, doubling per retry) has passed as of now. A
// packet that has already hit maxRetries is reported Abandoned and
// dropped from the pending set instead of being resent again.
func (t *Tracker) DueRetransmits(now time.Time) []Retransmit {
	t.mu.Lock()
	defer t.mu.Unlock()
	var due []Retransmit
	for seq, p := range t.pending {
		deadline := p.sentAt.Add(t.backoff(p.retries))
		if now.Before(deadline) {
			continue
		}
		if p.retries >= t.maxRetries {
			due = append(due, Retransmit{Sequence: seq, Abandoned: true})
			delete(t.pending, seq)
			continue
		}
		p.retries++
		p.sentAt = now
		due = append(due, Retransmit{Sequence: seq, Payload: append([]byte(nil), p.payload...)})
	}
	return due
}

func (t *Tracker) backoff(retries int) time.Duration {
	d := t.retryInterval
	for i := 0; i < retries; i++ {
		d *= 2
	}
	return d
}

package codec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/network/codec"
)

func TestTrackerAckRemovesPending(t *testing.T) {
	tr := codec.NewTracker(0, 0)
	now := time.Unix(0, 0)

	tr.Track(1, []byte("payload"), now)
	require.Equal(t, 1, tr.Pending())

	require.True(t, tr.Ack(1))
	require.Equal(t, 0, tr.Pending())
}

func TestTrackerAckUnknownSequenceReportsFalse(t *testing.T) {
	tr := codec.NewTracker(0, 0)
	require.False(t, tr.Ack(99))
}

func TestTrackerDueRetransmitsWaitsForInterval(t *testing.T) {
	tr := codec.NewTracker(100*time.Millisecond, 3)
	now := time.Unix(0, 0)
	tr.Track(1, []byte("payload"), now)

	require.Empty(t, tr.DueRetransmits(now.Add(50*time.Millisecond)))

	due := tr.DueRetransmits(now.Add(150 * time.Millisecond))
	require.Len(t, due, 1)
	require.Equal(t, uint32(1), due[0].Sequence)
	require.Equal(t, []byte("payload"), due[0].Payload)
	require.False(t, due[0].Abandoned)
}

func TestTrackerDueRetransmitsBacksOffAndAbandons(t *testing.T) {
	tr := codec.NewTracker(10*time.Millisecond, 2)
	now := time.Unix(0, 0)
	tr.Track(1, []byte("x"), now)

	first := tr.DueRetransmits(now.Add(20 * time.Millisecond))
	require.Len(t, first, 1)
	require.False(t, first[0].Abandoned)

	second := tr.DueRetransmits(now.Add((20 + 30) * time.Millisecond))
	require.Len(t, second, 1)
	require.False(t, second[0].Abandoned)

	third := tr.DueRetransmits(now.Add((20 + 30 + 200) * time.Millisecond))
	require.Len(t, third, 1)
	require.True(t, third[0].Abandoned)
	require.Equal(t, 0, tr.Pending())
}

func TestTrackerAckAfterAbandonReportsFalse(t *testing.T) {
	tr := codec.NewTracker(10*time.Millisecond, 1)
	now := time.Unix(0, 0)
	tr.Track(1, []byte("x"), now)
	tr.DueRetransmits(now.Add(20 * time.Millisecond))
	abandon := tr.DueRetransmits(now.Add(50 * time.Millisecond))
	require.Len(t, abandon, 1)
	require.True(t, abandon[0].Abandoned)

	require.False(t, tr.Ack(1))
}

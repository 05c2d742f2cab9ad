package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/network/codec"
)

func TestEncodeDecodeSnapshotRoundTrip(t *testing.T) {
	entries := []codec.SnapshotEntry[codec.TransformData]{
		{EntityID: 1_000_001, Data: codec.TransformData{X: 10, Y: -20, Rotation: 180, Scale: 1000}},
		{EntityID: 1_000_002, Data: codec.TransformData{X: -5, Y: 5, Rotation: 90, Scale: 2000}},
	}

	buf, err := codec.EncodeSnapshot(codec.TypeTransformSnapshot, 1, 500, 120, entries)
	require.NoError(t, err)

	h, worldTick, got, err := codec.DecodeSnapshot[codec.TransformData](buf)
	require.NoError(t, err)
	require.Equal(t, codec.TypeTransformSnapshot, h.Type)
	require.Equal(t, uint32(120), worldTick)
	require.Equal(t, entries, got)
}

func TestEncodeDecodeSnapshotEmpty(t *testing.T) {
	buf, err := codec.EncodeSnapshot[codec.HealthData](codec.TypeHealthSnapshot, 1, 1, 5, nil)
	require.NoError(t, err)

	_, worldTick, got, err := codec.DecodeSnapshot[codec.HealthData](buf)
	require.NoError(t, err)
	require.Equal(t, uint32(5), worldTick)
	require.Empty(t, got)
}

func TestEncodeDecodeDeltaSnapshotRoundTrip(t *testing.T) {
	entries := []codec.SnapshotEntry[codec.HealthData]{
		{EntityID: 1_000_001, Data: codec.HealthData{CurrentHealth: 80, MaxHealth: 100, CurrentShield: 0, MaxShield: 50}},
	}

	buf, err := codec.EncodeDeltaSnapshot(codec.TypeHealthSnapshotDelta, 1, 1, 200, 180, entries)
	require.NoError(t, err)

	h, worldTick, baseTick, got, err := codec.DecodeDeltaSnapshot[codec.HealthData](buf)
	require.NoError(t, err)
	require.Equal(t, codec.TypeHealthSnapshotDelta, h.Type)
	require.Equal(t, uint32(200), worldTick)
	require.Equal(t, uint32(180), baseTick)
	require.Equal(t, entries, got)
}

func TestDecodeSnapshotTruncatedEntriesFails(t *testing.T) {
	entries := []codec.SnapshotEntry[codec.VelocityData]{
		{EntityID: 1_000_001, Data: codec.VelocityData{VX: 1, VY: 2, AccelX: 3, AccelY: 4}},
	}
	buf, err := codec.EncodeSnapshot(codec.TypeVelocitySnapshot, 1, 1, 1, entries)
	require.NoError(t, err)

	_, _, _, err = codec.DecodeSnapshot[codec.VelocityData](buf[:len(buf)-2])
	require.Error(t, err)

	var cerr *codec.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, codec.KindPayloadTooShort, cerr.Kind)
}

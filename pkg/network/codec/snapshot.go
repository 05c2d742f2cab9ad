package codec

import (
	"bytes"
	"encoding/binary"
)

// SnapshotEntry is one entity's component data inside a snapshot packet.
type SnapshotEntry[T any] struct {
	EntityID uint32
	Data     T
}

// EncodeSnapshot builds a per-component snapshot packet: header, then
// world_tick uint32, then entity_count uint16, then entity_count records
// of (entity_id uint32, component data), per spec.md §4.2.
func EncodeSnapshot[T any](t Type, seq, tsMS, worldTick uint32, entries []SnapshotEntry[T]) ([]byte, error) {
	h := Header{Magic: Magic, Type: t, SequenceNumber: seq, TimestampMS: tsMS}
	buf := new(bytes.Buffer)
	buf.Write(EncodeHeader(h))
	if err := binary.Write(buf, binary.LittleEndian, snapshotHeader{WorldTick: worldTick, EntityCount: uint16(len(entries))}); err != nil {
		return nil, newError(KindMalformed, "encoding snapshot header: %v", err)
	}
	for _, e := range entries {
		if err := binary.Write(buf, binary.LittleEndian, e.EntityID); err != nil {
			return nil, newError(KindMalformed, "encoding entity id: %v", err)
		}
		if err := binary.Write(buf, binary.LittleEndian, e.Data); err != nil {
			return nil, newError(KindMalformed, "encoding component data: %v", err)
		}
	}
	if buf.Len() > MaxUDPPayload {
		return nil, newError(KindMalformed, "encoded snapshot of %d bytes exceeds max UDP payload %d", buf.Len(), MaxUDPPayload)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a per-component snapshot packet built by
// EncodeSnapshot.
func DecodeSnapshot[T any](buf []byte) (Header, uint32, []SnapshotEntry[T], error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return h, 0, nil, err
	}
	r := bytes.NewReader(buf[HeaderSize:])
	var sh snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &sh); err != nil {
		return h, 0, nil, newError(KindPayloadTooShort, "reading snapshot header: %v", err)
	}
	entries := make([]SnapshotEntry[T], 0, sh.EntityCount)
	for i := 0; i < int(sh.EntityCount); i++ {
		var entry SnapshotEntry[T]
		if err := binary.Read(r, binary.LittleEndian, &entry.EntityID); err != nil {
			return h, sh.WorldTick, nil, newError(KindPayloadTooShort, "reading entity id %d: %v", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &entry.Data); err != nil {
			return h, sh.WorldTick, nil, newError(KindPayloadTooShort, "reading component data %d: %v", i, err)
		}
		entries = append(entries, entry)
	}
	return h, sh.WorldTick, entries, nil
}

// EncodeDeltaSnapshot is EncodeSnapshot's delta variant: world_tick is
// followed by a 4-byte base_tick reference before entity_count.
func EncodeDeltaSnapshot[T any](t Type, seq, tsMS, worldTick, baseTick uint32, entries []SnapshotEntry[T]) ([]byte, error) {
	h := Header{Magic: Magic, Type: t, SequenceNumber: seq, TimestampMS: tsMS}
	buf := new(bytes.Buffer)
	buf.Write(EncodeHeader(h))
	dh := deltaSnapshotHeader{WorldTick: worldTick, BaseTick: baseTick, EntityCount: uint16(len(entries))}
	if err := binary.Write(buf, binary.LittleEndian, dh); err != nil {
		return nil, newError(KindMalformed, "encoding delta snapshot header: %v", err)
	}
	for _, e := range entries {
		if err := binary.Write(buf, binary.LittleEndian, e.EntityID); err != nil {
			return nil, newError(KindMalformed, "encoding entity id: %v", err)
		}
		if err := binary.Write(buf, binary.LittleEndian, e.Data); err != nil {
			return nil, newError(KindMalformed, "encoding component data: %v", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeDeltaSnapshot parses a delta snapshot packet built by
// EncodeDeltaSnapshot.
func DecodeDeltaSnapshot[T any](buf []byte) (Header, uint32, uint32, []SnapshotEntry[T], error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return h, 0, 0, nil, err
	}
	r := bytes.NewReader(buf[HeaderSize:])
	var dh deltaSnapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &dh); err != nil {
		return h, 0, 0, nil, newError(KindPayloadTooShort, "reading delta snapshot header: %v", err)
	}
	entries := make([]SnapshotEntry[T], 0, dh.EntityCount)
	for i := 0; i < int(dh.EntityCount); i++ {
		var entry SnapshotEntry[T]
		if err := binary.Read(r, binary.LittleEndian, &entry.EntityID); err != nil {
			return h, dh.WorldTick, dh.BaseTick, nil, newError(KindPayloadTooShort, "reading entity id %d: %v", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &entry.Data); err != nil {
			return h, dh.WorldTick, dh.BaseTick, nil, newError(KindPayloadTooShort, "reading component data %d: %v", i, err)
		}
		entries = append(entries, entry)
	}
	return h, dh.WorldTick, dh.BaseTick, entries, nil
}

package codec

// Magic identifies an R-Type datagram: 'R'(0x52) 'T'(0x54) stored
// little-endian as uint16 0x5254.
const Magic uint16 = 0x5254

// HeaderSize is the fixed, unpadded size of Header on the wire.
const HeaderSize = 12

// MaxUDPPayload is the largest payload a single UDP datagram can carry;
// packets are never fragmented internally (spec.md §4.2/§4.3).
const MaxUDPPayload = 65507

// Flags is a bitmask of packet control flags.
type Flags uint8

const (
	FlagReliable   Flags = 0x01
	FlagCompressed Flags = 0x02
	FlagEncrypted  Flags = 0x04
	FlagFragmented Flags = 0x08
	FlagPriority   Flags = 0x10
)

// Header is the 12-byte prefix on every packet.
type Header struct {
	Magic          uint16
	Type           Type
	Flags          Flags
	SequenceNumber uint32
	TimestampMS    uint32
}

// Package codec implements the wire protocol's binary framing and the
// packet encode/decode table described in spec.md §4.2. Every packet
// begins with a fixed 12-byte header; numeric fields are little-endian;
// there is no padding. Exact struct layouts and packet type byte values
// are taken from the original implementation's protocol header, the
// source of truth spec.md defers to for "representative members".
package codec

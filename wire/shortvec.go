package wire

import (
	"fmt"
)

// Compact-u16 encodes a length in little-endian base-128 groups, at
// most three bytes, encoding values up to 0xFFFF. Transaction
// envelopes use it for every repeated field.

const (
	maxShortVecBytes = 3
	maxVarintBytes   = 10
)

// WriteShortVecLen writes a compact-u16 length prefix.
func (e *Encoder) WriteShortVecLen(n int) {
	if n < 0 || n > 0xFFFF {
		panic(fmt.Sprintf("wire: compact-u16 length %d out of range", n))
	}
	v := uint16(n)
	for v >= 0x80 {
		e.buf.WriteByte(byte(v&0x7f | 0x80))
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
}

// ReadShortVecLen reads a compact-u16 length prefix. The result is
// additionally capped by the remaining buffer size, since every
// element of a short vector occupies at least one byte.
func (d *Decoder) ReadShortVecLen() (int, error) {
	var v uint32
	for i := 0; i < maxShortVecBytes; i++ {
		b, err := d.ReadU8()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			if v > 0xFFFF {
				return 0, fmt.Errorf("wire: compact-u16 value %d out of range at offset %d", v, d.off)
			}
			if v > uint32(d.Remaining()) {
				return 0, fmt.Errorf("wire: compact-u16 length %d exceeds remaining %d bytes at offset %d",
					v, d.Remaining(), d.off)
			}
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("wire: compact-u16 not terminated within %d bytes at offset %d", maxShortVecBytes, d.off)
}

// WriteVarint writes an unsigned base-128 varint.
func (e *Encoder) WriteVarint(v uint64) {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v&0x7f | 0x80))
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
}

// ReadVarint reads an unsigned base-128 varint.
func (d *Decoder) ReadVarint() (uint64, error) {
	var v uint64
	for i := 0; i < maxVarintBytes; i++ {
		b, err := d.ReadU8()
		if err != nil {
			return 0, err
		}
		if i == maxVarintBytes-1 && b > 0x01 {
			return 0, fmt.Errorf("wire: varint overflows u64 at offset %d", d.off)
		}
		v |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("wire: varint not terminated within %d bytes at offset %d", maxVarintBytes, d.off)
}

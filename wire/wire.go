// Package wire implements the little-endian binary conventions used
// by the chain: fixed-width integers, u64-prefixed vectors,
// byte-tagged options, compact-u16 vector prefixes, and varints.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/0xNineteen/sol-lightnode/crypto"
)

// Encoder appends wire-encoded values to an in-memory buffer.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *Encoder) WriteU8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) WriteU32(v uint32) {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], v)
	e.buf.Write(scratch[:])
}

func (e *Encoder) WriteU64(v uint64) {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], v)
	e.buf.Write(scratch[:])
}

func (e *Encoder) WriteI64(v int64) {
	e.WriteU64(uint64(v))
}

func (e *Encoder) WriteBytes(bz []byte) {
	e.buf.Write(bz)
}

func (e *Encoder) WriteHash(h crypto.Hash) {
	e.buf.Write(h[:])
}

func (e *Encoder) WritePubKey(pk crypto.PubKey) {
	e.buf.Write(pk[:])
}

func (e *Encoder) WriteSignature(sig crypto.Signature) {
	e.buf.Write(sig[:])
}

// WriteVecLen writes a vector length as a u64.
func (e *Encoder) WriteVecLen(n int) {
	e.WriteU64(uint64(n))
}

// WriteOption writes the presence tag of an optional value. The
// payload, if any, must be written by the caller.
func (e *Encoder) WriteOption(present bool) {
	if present {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

// Decoder consumes wire-encoded values from a byte slice. All reads
// are bounds checked; a short buffer yields an error wrapping
// io.ErrUnexpectedEOF.
type Decoder struct {
	buf []byte
	off int
}

func NewDecoder(bz []byte) *Decoder {
	return &Decoder{buf: bz}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// Empty reports whether the decoder has consumed the whole buffer.
func (d *Decoder) Empty() bool {
	return d.Remaining() == 0
}

// Slice returns the raw bytes between two offsets previously obtained
// from Offset. It lets streaming decoders recover the exact encoding
// of a value they just consumed.
func (d *Decoder) Slice(from, to int) []byte {
	return d.buf[from:to]
}

func (d *Decoder) take(n int, what string) ([]byte, error) {
	if d.Remaining() < n {
		return nil, fmt.Errorf("wire: reading %s at offset %d: need %d bytes, have %d: %w",
			what, d.off, n, d.Remaining(), io.ErrUnexpectedEOF)
	}
	bz := d.buf[d.off : d.off+n]
	d.off += n
	return bz, nil
}

func (d *Decoder) ReadU8() (uint8, error) {
	bz, err := d.take(1, "u8")
	if err != nil {
		return 0, err
	}
	return bz[0], nil
}

func (d *Decoder) ReadU32() (uint32, error) {
	bz, err := d.take(4, "u32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(bz), nil
}

func (d *Decoder) ReadU64() (uint64, error) {
	bz, err := d.take(8, "u64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(bz), nil
}

func (d *Decoder) ReadI64() (int64, error) {
	v, err := d.ReadU64()
	return int64(v), err
}

// ReadBytes returns the next n bytes. The returned slice aliases the
// decoder's buffer.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	return d.take(n, "bytes")
}

func (d *Decoder) ReadHash() (crypto.Hash, error) {
	bz, err := d.take(crypto.HashSize, "hash")
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashFromBytes(bz)
}

func (d *Decoder) ReadPubKey() (crypto.PubKey, error) {
	bz, err := d.take(crypto.PubKeySize, "pubkey")
	if err != nil {
		return crypto.PubKey{}, err
	}
	return crypto.PubKeyFromBytes(bz)
}

func (d *Decoder) ReadSignature() (crypto.Signature, error) {
	bz, err := d.take(crypto.SignatureSize, "signature")
	if err != nil {
		return crypto.Signature{}, err
	}
	return crypto.SignatureFromBytes(bz)
}

// ReadVecLen reads a u64 vector length. Lengths that could not
// possibly fit in the remaining buffer are rejected so a corrupt
// prefix cannot drive a huge allocation.
func (d *Decoder) ReadVecLen() (int, error) {
	v, err := d.ReadU64()
	if err != nil {
		return 0, err
	}
	if v > uint64(d.Remaining()) {
		return 0, fmt.Errorf("wire: vector length %d at offset %d exceeds remaining %d bytes: %w",
			v, d.off-8, d.Remaining(), io.ErrUnexpectedEOF)
	}
	return int(v), nil
}

// ReadOption reads the presence tag of an optional value.
func (d *Decoder) ReadOption() (bool, error) {
	tag, err := d.ReadU8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("wire: invalid option tag 0x%02x at offset %d", tag, d.off-1)
	}
}

// Finish errors unless the buffer was fully consumed. Decoders for
// self-delimiting messages call this to reject trailing garbage.
func (d *Decoder) Finish() error {
	if !d.Empty() {
		return fmt.Errorf("wire: %d trailing bytes after offset %d", d.Remaining(), d.off)
	}
	return nil
}

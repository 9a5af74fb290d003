package wire

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFixedWidthRoundtrip(t *testing.T) {
	e := NewEncoder()
	e.WriteU8(0xAB)
	e.WriteU32(0xDEADBEEF)
	e.WriteU64(0x0102030405060708)
	e.WriteI64(-42)

	d := NewDecoder(e.Bytes())
	u8, err := d.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)
	u32, err := d.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)
	u64, err := d.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)
	i64, err := d.ReadI64()
	require.NoError(t, err)
	assert.Equal(t, int64(-42), i64)
	require.NoError(t, d.Finish())
}

func TestLittleEndian(t *testing.T) {
	e := NewEncoder()
	e.WriteU32(1)
	assert.Equal(t, []byte{1, 0, 0, 0}, e.Bytes())
}

func TestShortReads(t *testing.T) {
	d := NewDecoder([]byte{1, 2})
	_, err := d.ReadU32()
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestFinishRejectsTrailingBytes(t *testing.T) {
	d := NewDecoder([]byte{0})
	assert.Error(t, d.Finish())
	_, err := d.ReadU8()
	require.NoError(t, err)
	assert.NoError(t, d.Finish())
}

func TestOptionTags(t *testing.T) {
	for tag, want := range map[byte]bool{0: false, 1: true} {
		d := NewDecoder([]byte{tag})
		got, err := d.ReadOption()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	d := NewDecoder([]byte{2})
	_, err := d.ReadOption()
	assert.Error(t, err)
}

func TestVecLenRejectsHugePrefix(t *testing.T) {
	e := NewEncoder()
	e.WriteU64(1 << 40)
	d := NewDecoder(e.Bytes())
	_, err := d.ReadVecLen()
	assert.Error(t, err)
}

func TestShortVecKnownVectors(t *testing.T) {
	cases := []struct {
		n     int
		bytes []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0xff, []byte{0xff, 0x01}},
		{0x100, []byte{0x80, 0x02}},
		{0x7fff, []byte{0xff, 0xff, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	}
	for _, tc := range cases {
		e := NewEncoder()
		e.WriteShortVecLen(tc.n)
		assert.Equal(t, tc.bytes, e.Bytes(), "encode %d", tc.n)

		// Pad so the length cap against the remaining buffer passes.
		d := NewDecoder(append(tc.bytes, make([]byte, tc.n)...))
		got, err := d.ReadShortVecLen()
		require.NoError(t, err, "decode %d", tc.n)
		assert.Equal(t, tc.n, got)
	}
}

func TestShortVecRejectsOverlong(t *testing.T) {
	// 0x10000 does not fit in a compact-u16.
	d := NewDecoder([]byte{0x80, 0x80, 0x04})
	_, err := d.ReadShortVecLen()
	assert.Error(t, err)
}

func TestShortVecRoundtrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 0xFFFF).Draw(t, "n").(int)
		e := NewEncoder()
		e.WriteShortVecLen(n)
		e.WriteBytes(make([]byte, n))

		d := NewDecoder(e.Bytes())
		got, err := d.ReadShortVecLen()
		require.NoError(t, err)
		require.Equal(t, n, got)
	})
}

func TestVarintRoundtrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint64().Draw(t, "v").(uint64)
		e := NewEncoder()
		e.WriteVarint(v)

		d := NewDecoder(e.Bytes())
		got, err := d.ReadVarint()
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.NoError(t, d.Finish())
	})
}

func TestVarintRejectsOverflow(t *testing.T) {
	// Eleven continuation bytes overflow a u64.
	d := NewDecoder([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02})
	_, err := d.ReadVarint()
	assert.Error(t, err)
}

func TestSliceRecoversRawBytes(t *testing.T) {
	e := NewEncoder()
	e.WriteU32(7)
	e.WriteU64(9)

	d := NewDecoder(e.Bytes())
	start := d.Offset()
	_, err := d.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, e.Bytes()[:4], d.Slice(start, d.Offset()))
}

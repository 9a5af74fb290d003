package bytes

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// HexBytes is a wrapper around []byte that renders as hexadecimal in
// logs and accepts several encodings when decoding from JSON. RPC
// nodes disagree on how raw payloads are encoded, so decoding
// tolerates hex, base64, and plain byte arrays.
type HexBytes []byte

// MarshalText encodes a HexBytes value as hexadecimal digits.
// This method is used by json.Marshal.
func (bz HexBytes) MarshalText() ([]byte, error) {
	enc := hex.EncodeToString([]byte(bz))
	return []byte(strings.ToUpper(enc)), nil
}

// UnmarshalText handles decoding of HexBytes from strings.
// This method is used by json.Unmarshal.
// It allows decoding of both hex and base64-encoded byte arrays.
func (bz *HexBytes) UnmarshalText(data []byte) error {
	input := string(data)
	if input == "" || input == "null" {
		return nil
	}
	dec, err := hex.DecodeString(input)
	if err != nil {
		dec, err = base64.StdEncoding.DecodeString(input)
		if err != nil {
			return err
		}
	}
	*bz = HexBytes(dec)
	return nil
}

// UnmarshalJSON additionally accepts the JSON array-of-bytes form
// some nodes emit, e.g. [1,255,0].
func (bz *HexBytes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []int
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		dec := make([]byte, len(raw))
		for i, v := range raw {
			if v < 0 || v > 255 {
				return fmt.Errorf("byte array value %d at index %d out of range", v, i)
			}
			dec[i] = byte(v)
		}
		*bz = dec
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	return bz.UnmarshalText([]byte(s))
}

// Bytes fulfills various interfaces in the rpc packages.
func (bz HexBytes) Bytes() []byte {
	return bz
}

func (bz HexBytes) ShortString() string {
	if len(bz) < 3 {
		return ""
	}
	return strings.ToUpper(hex.EncodeToString(bz[:3]))
}

func (bz HexBytes) String() string {
	return strings.ToUpper(hex.EncodeToString(bz))
}

// Format writes either address of 0th element in a slice in base 16
// notation, with leading 0x (%p), or casts HexBytes to bytes and
// writes as hexadecimal string to s.
func (bz HexBytes) Format(s fmt.State, verb rune) {
	switch verb {
	case 'p':
		s.Write([]byte(fmt.Sprintf("%p", bz)))
	default:
		s.Write([]byte(fmt.Sprintf("%X", []byte(bz))))
	}
}

// Copy creates a deep copy of HexBytes. It allocates a new buffer and
// copies data into it.
func (bz HexBytes) Copy() HexBytes {
	if bz == nil {
		return nil
	}
	copied := make(HexBytes, len(bz))
	copy(copied, bz)
	return copied
}

func (bz HexBytes) Equal(b []byte) bool {
	return bytes.Equal(bz, b)
}

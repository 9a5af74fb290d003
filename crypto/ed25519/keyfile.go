package ed25519

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/creachadair/atomicfile"
)

// LoadKeypairFile reads a keypair file: a JSON array of 64 byte
// values, seed first, public key second. This is the format wallet
// tooling writes.
func LoadKeypairFile(path string) (PrivKey, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return PrivKey{}, fmt.Errorf("reading keypair file: %w", err)
	}
	var raw []int
	if err := json.Unmarshal(bz, &raw); err != nil {
		return PrivKey{}, fmt.Errorf("parsing keypair file %s: %w", path, err)
	}
	buf := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return PrivKey{}, fmt.Errorf("keypair file %s: value %d at index %d is not a byte", path, v, i)
		}
		buf[i] = byte(v)
	}
	return PrivKeyFromBytes(buf)
}

// SaveKeypairFile writes the key to path in the JSON array format,
// atomically and with owner-only permissions.
func (privKey PrivKey) SaveKeypairFile(path string) error {
	raw := make([]int, PrivKeySize)
	for i, b := range privKey {
		raw[i] = int(b)
	}
	bz, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if _, err := atomicfile.WriteAll(path, bytes.NewReader(bz), 0600); err != nil {
		return fmt.Errorf("writing keypair file: %w", err)
	}
	return nil
}

package ed25519_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xNineteen/sol-lightnode/crypto/ed25519"
)

func TestSignAndVerify(t *testing.T) {
	privKey := ed25519.GenPrivKey()
	pubKey := privKey.PubKey()

	msg := []byte("sign me")
	sig, err := privKey.Sign(msg)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pubKey, msg, sig))

	// Mutating the signature or message should make it invalid.
	sig[7] ^= 0x01
	assert.False(t, ed25519.Verify(pubKey, msg, sig))
	sig[7] ^= 0x01
	assert.False(t, ed25519.Verify(pubKey, []byte("sign me not"), sig))
}

func TestGenPrivKeyFromSecretDeterministic(t *testing.T) {
	a := ed25519.GenPrivKeyFromSecret([]byte("secret"))
	b := ed25519.GenPrivKeyFromSecret([]byte("secret"))
	c := ed25519.GenPrivKeyFromSecret([]byte("other"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPrivKeyFromBytesChecksPublicHalf(t *testing.T) {
	privKey := ed25519.GenPrivKey()

	parsed, err := ed25519.PrivKeyFromBytes(privKey.Bytes())
	require.NoError(t, err)
	assert.Equal(t, privKey, parsed)

	corrupted := privKey.Bytes()
	corrupted[63] ^= 0x01
	_, err = ed25519.PrivKeyFromBytes(corrupted)
	assert.Error(t, err)

	_, err = ed25519.PrivKeyFromBytes(corrupted[:32])
	assert.Error(t, err)
}

func TestKeypairFileRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payer.json")
	privKey := ed25519.GenPrivKey()

	require.NoError(t, privKey.SaveKeypairFile(path))
	loaded, err := ed25519.LoadKeypairFile(path)
	require.NoError(t, err)
	assert.Equal(t, privKey, loaded)
}

func TestLoadKeypairFileRejectsGarbage(t *testing.T) {
	_, err := ed25519.LoadKeypairFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

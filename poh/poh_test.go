package poh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/solhash"
	"github.com/0xNineteen/sol-lightnode/poh"
)

func TestNextHashIdentity(t *testing.T) {
	start := solhash.Sum([]byte("start"))
	assert.Equal(t, start, poh.NextHash(start, 0, nil))
}

func TestNextHashZeroWithMixin(t *testing.T) {
	start := solhash.Sum([]byte("start"))
	mixin := solhash.Sum([]byte("mixin"))

	// A mixin always costs at least the one mixing step.
	expected := solhash.Sumv(start[:], mixin[:])
	assert.Equal(t, expected, poh.NextHash(start, 0, &mixin))
	assert.Equal(t, expected, poh.NextHash(start, 1, &mixin))
}

func TestNextHashPlain(t *testing.T) {
	start := solhash.Sum([]byte("start"))

	expected := start
	for i := 0; i < 5; i++ {
		expected = solhash.Sum(expected[:])
	}
	assert.Equal(t, expected, poh.NextHash(start, 5, nil))
}

func TestNextHashMixinOrderMatters(t *testing.T) {
	start := solhash.Sum([]byte("start"))
	m1 := solhash.Sum([]byte("m1"))
	m2 := solhash.Sum([]byte("m2"))

	require.NotEqual(t, poh.NextHash(start, 3, &m1), poh.NextHash(start, 3, &m2))
}

func TestPohMatchesNextHash(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var start crypto.Hash
		copy(start[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "start").([]byte))

		p := poh.New(start)
		prev := start
		steps := rapid.IntRange(1, 16).Draw(t, "steps").(int)
		for i := 0; i < steps; i++ {
			ticks := uint64(rapid.IntRange(0, 8).Draw(t, "ticks").(int))
			p.Hash(ticks)

			var hash crypto.Hash
			var numHashes uint64
			if rapid.Bool().Draw(t, "mix").(bool) {
				mixin := solhash.Sum([]byte{byte(i)})
				hash, numHashes = p.Record(mixin)
				require.Equal(t, poh.NextHash(prev, numHashes, &mixin), hash)
			} else {
				hash, numHashes = p.Tick()
				require.Equal(t, poh.NextHash(prev, numHashes, nil), hash)
			}
			prev = hash
		}
	})
}

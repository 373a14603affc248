package rabin

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGeneratePrime(t *testing.T) {
	for _, bits := range []int{8, 16, 64, 256, 512} {
		p, err := GeneratePrime(nil, bits)
		require.NoError(t, err)
		assert.Equal(t, bits, p.BitLen())
		assert.True(t, p.ProbablyPrime(20))
		assert.Equal(t, int64(3), new(big.Int).Mod(p, big.NewInt(4)).Int64())
	}
}

func TestGeneratePrime_InvalidBits(t *testing.T) {
	for _, bits := range []int{-1, 0, 2, MinPrimeBits - 1} {
		_, err := GeneratePrime(nil, bits)
		assert.ErrorIs(t, err, ErrInvalidBitLength, "bits=%d", bits)
	}
}

func TestGeneratePrime_ReaderFailure(t *testing.T) {
	_, err := GeneratePrime(failingReader{}, 64)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey(512)
	require.NoError(t, err)
	require.NotNil(t, key)

	p, q := key.Secret.P(), key.Secret.Q()
	assert.True(t, p.ProbablyPrime(20))
	assert.True(t, q.ProbablyPrime(20))
	assert.Equal(t, int64(3), new(big.Int).Mod(p, big.NewInt(4)).Int64())
	assert.Equal(t, int64(3), new(big.Int).Mod(q, big.NewInt(4)).Int64())
	assert.NotEqual(t, 0, p.Cmp(q))

	expected := new(big.Int).Mul(p, q)
	assert.Equal(t, 0, expected.Cmp(key.Public.N()))
	assert.True(t, key.Public.Equal(key.Secret.Public()))
}

func TestGenerateKey_ReaderFailure(t *testing.T) {
	_, err := GenerateKeyFrom(failingReader{}, 64)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generating p")
}

func TestKeyAccessorsReturnCopies(t *testing.T) {
	key, err := GenerateKey(64)
	require.NoError(t, err)

	p := key.Secret.P()
	p.SetInt64(0)
	assert.NotEqual(t, 0, key.Secret.P().Sign())

	n := key.Public.N()
	n.SetInt64(0)
	assert.NotEqual(t, 0, key.Public.N().Sign())
}

func TestNewSecretKey(t *testing.T) {
	tests := []struct {
		name    string
		p, q    *big.Int
		wantErr error
	}{
		{"valid", big.NewInt(7), big.NewInt(11), nil},
		{"nil p", nil, big.NewInt(11), ErrNilKey},
		{"p mod 4 == 1", big.NewInt(13), big.NewInt(11), ErrInvalidKey},
		{"q even", big.NewInt(7), big.NewInt(2), ErrInvalidKey},
		{"equal primes", big.NewInt(7), big.NewInt(7), ErrInvalidKey},
		{"negative", big.NewInt(-1), big.NewInt(7), ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk, err := NewSecretKey(tt.p, tt.q)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(77), sk.Public().N().Int64())
		})
	}
}

func TestNewPublicKey(t *testing.T) {
	pk, err := NewPublicKey(big.NewInt(77))
	require.NoError(t, err)
	assert.Equal(t, 7, pk.BitLen())
	assert.Equal(t, 1, pk.Size())

	_, err = NewPublicKey(nil)
	assert.ErrorIs(t, err, ErrNilKey)
	_, err = NewPublicKey(big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = NewPublicKey(big.NewInt(78))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestPublicKeyFingerprint(t *testing.T) {
	key, err := GenerateKey(128)
	require.NoError(t, err)

	fp := key.Public.Fingerprint()
	assert.Len(t, fp, FingerprintSize)
	assert.Equal(t, bsvhash.Hash160(key.Public.N().Bytes()), fp)

	other, err := GenerateKey(128)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(fp, other.Public.Fingerprint()))
}

func TestPublicKeyEqual(t *testing.T) {
	a, _ := NewPublicKey(big.NewInt(77))
	b, _ := NewPublicKey(big.NewInt(77))
	c, _ := NewPublicKey(big.NewInt(21))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func BenchmarkGenerateKey_1536(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateKey(DefaultPrimeBits)
	}
}

package rabin

import (
	"fmt"
	"io"
	"math/big"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// FingerprintSize is the length of a public key fingerprint in bytes.
const FingerprintSize = 20

// SecretKey holds the two secret primes p, q ≡ 3 (mod 4), p ≠ q.
// The zero value is not usable; build one with NewSecretKey or GenerateKey.
type SecretKey struct {
	p *big.Int
	q *big.Int
	n *big.Int
}

// PublicKey holds the public modulus n = p*q.
type PublicKey struct {
	n *big.Int
}

// KeyPair bundles a secret key with its public key.
type KeyPair struct {
	Secret *SecretKey
	Public *PublicKey
}

// NewSecretKey validates p and q and returns a secret key over them.
// Both must be ≡ 3 (mod 4) and distinct. Primality is not rechecked.
func NewSecretKey(p, q *big.Int) (*SecretKey, error) {
	if p == nil || q == nil {
		return nil, ErrNilKey
	}
	if p.Sign() <= 0 || q.Sign() <= 0 {
		return nil, fmt.Errorf("%w: primes must be positive", ErrInvalidKey)
	}
	if !isBlumPrime(p) || !isBlumPrime(q) {
		return nil, fmt.Errorf("%w: primes must be congruent to 3 mod 4", ErrInvalidKey)
	}
	if p.Cmp(q) == 0 {
		return nil, fmt.Errorf("%w: p and q must differ", ErrInvalidKey)
	}
	pc := new(big.Int).Set(p)
	qc := new(big.Int).Set(q)
	return &SecretKey{p: pc, q: qc, n: new(big.Int).Mul(pc, qc)}, nil
}

// NewPublicKey returns a public key for modulus n. n must be positive and odd.
func NewPublicKey(n *big.Int) (*PublicKey, error) {
	if n == nil {
		return nil, ErrNilKey
	}
	if n.Sign() <= 0 || n.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: modulus must be positive and odd", ErrInvalidKey)
	}
	return &PublicKey{n: new(big.Int).Set(n)}, nil
}

// P returns a copy of the first prime.
func (sk *SecretKey) P() *big.Int { return new(big.Int).Set(sk.p) }

// Q returns a copy of the second prime.
func (sk *SecretKey) Q() *big.Int { return new(big.Int).Set(sk.q) }

// Public derives the public key n = p*q.
func (sk *SecretKey) Public() *PublicKey {
	return &PublicKey{n: new(big.Int).Set(sk.n)}
}

// N returns a copy of the modulus.
func (pk *PublicKey) N() *big.Int { return new(big.Int).Set(pk.n) }

// BitLen returns the bit length of the modulus.
func (pk *PublicKey) BitLen() int { return pk.n.BitLen() }

// Size returns the modulus length in bytes, which is the smallest block
// width able to hold any ciphertext under this key.
func (pk *PublicKey) Size() int { return (pk.n.BitLen() + 7) / 8 }

// Fingerprint returns HASH160 (RIPEMD160(SHA256)) of the big-endian modulus.
func (pk *PublicKey) Fingerprint() []byte {
	return bsvhash.Hash160(pk.n.Bytes())
}

// Equal reports whether both keys share the same modulus.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if pk == nil || other == nil {
		return pk == other
	}
	return pk.n.Cmp(other.n) == 0
}

// GenerateKey generates a key pair with two primes of bits bits each using
// crypto/rand. Use DefaultPrimeBits unless a smaller modulus is acceptable.
func GenerateKey(bits int) (*KeyPair, error) {
	return GenerateKeyFrom(nil, bits)
}

// GenerateKeyFrom is GenerateKey drawing from random (nil for crypto/rand).
//
// q is redrawn until it differs from p, which only matters for tiny sizes.
func GenerateKeyFrom(random io.Reader, bits int) (*KeyPair, error) {
	p, err := GeneratePrime(random, bits)
	if err != nil {
		return nil, fmt.Errorf("generating p: %w", err)
	}
	var q *big.Int
	for q == nil || q.Cmp(p) == 0 {
		q, err = GeneratePrime(random, bits)
		if err != nil {
			return nil, fmt.Errorf("generating q: %w", err)
		}
	}
	sk := &SecretKey{p: p, q: q, n: new(big.Int).Mul(p, q)}
	return &KeyPair{Secret: sk, Public: sk.Public()}, nil
}

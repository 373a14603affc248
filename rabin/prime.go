package rabin

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	// DefaultPrimeBits is the bit length of each secret prime. Two 1536-bit
	// primes give a 3072-bit modulus (128-bit security level).
	DefaultPrimeBits = 1536

	// MinPrimeBits is the smallest prime size accepted by GeneratePrime.
	MinPrimeBits = 8
)

var (
	bigOne   = big.NewInt(1)
	bigThree = big.NewInt(3)
	bigFour  = big.NewInt(4)
)

// GeneratePrime returns a random prime p of the given bit length with
// p ≡ 3 (mod 4). It draws from random until a prime with the right
// congruence shows up; roughly half of all odd primes qualify.
//
// random must be a cryptographically secure source. Pass nil for
// crypto/rand.Reader.
func GeneratePrime(random io.Reader, bits int) (*big.Int, error) {
	if bits < MinPrimeBits {
		return nil, fmt.Errorf("%w: %d (minimum %d)", ErrInvalidBitLength, bits, MinPrimeBits)
	}
	if random == nil {
		random = rand.Reader
	}
	for {
		p, err := rand.Prime(random, bits)
		if err != nil {
			return nil, fmt.Errorf("rabin: prime generation: %w", err)
		}
		if isBlumPrime(p) {
			return p, nil
		}
	}
}

// isBlumPrime reports whether p ≡ 3 (mod 4). Primality is not rechecked.
func isBlumPrime(p *big.Int) bool {
	return new(big.Int).Mod(p, bigFour).Cmp(bigThree) == 0
}

// modSqrtBlum returns a square root of the quadratic residue a modulo the
// prime p, p ≡ 3 (mod 4): a^((p+1)/4) mod p. For a non-residue the result
// is not a root.
func modSqrtBlum(a, p *big.Int) *big.Int {
	exp := new(big.Int).Add(p, bigOne)
	exp.Rsh(exp, 2)
	return new(big.Int).Exp(a, exp, p)
}

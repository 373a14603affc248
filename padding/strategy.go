// Package padding implements the disambiguation layer of the Rabin
// cryptosystem.
//
// Squaring modulo a Blum integer n = p*q is exactly four-to-one, so every
// decryption yields four candidate square roots. A Strategy embeds redundancy
// in the low-order bits of the plaintext before encryption and uses it after
// decryption to pick the one candidate that carries it.
//
// Variants:
//   - AppendBits(k), CopyBits(k): repeat the plaintext's own low k bits.
//     Stateless; a wrong root passes the check with probability about 2^-k.
//   - FixedSuffix(v), Nonce(v): append the bits of v. Stateful; v has to
//     travel with the ciphertext, see Stateful and Builder.
package padding

import (
	"fmt"
	"math/big"
)

// MinRecommendedBits is the smallest padding or suffix size that keeps
// spurious matches rare enough for bulk use. It is not enforced.
const MinRecommendedBits = 16

// DefaultPaddingBits is the padding size used when none is configured.
const DefaultPaddingBits = MinRecommendedBits

// Candidates are the four square roots produced by one decryption:
// {r1, n-r1, r3, n-r3}.
type Candidates [4]*big.Int

// Strategy pads plaintext integers before encryption and selects the
// correct decryption candidate afterwards.
type Strategy interface {
	// Pad returns m with padding bits appended in the low-order position.
	Pad(m *big.Int) (*big.Int, error)

	// Unpad picks the single candidate carrying the padding and returns
	// it with the padding stripped. Zero or several matches yield
	// ErrDisambiguation.
	Unpad(c Candidates) (*big.Int, error)

	// Overhead returns the number of bits Pad adds.
	Overhead() int
}

// Stateful is implemented by strategies whose state must be known to the
// decrypting side before any block can be processed.
type Stateful interface {
	Strategy

	// State returns a copy of the value the decrypting side needs.
	State() *big.Int

	// Builder returns a builder producing strategies of the same kind.
	Builder() Builder
}

// Builder is the second phase of constructing a stateful strategy: it
// turns a state value recovered from a stream header into a usable
// Strategy. Builders are immutable and reusable.
type Builder interface {
	Build(state *big.Int) (Strategy, error)
}

// Name returns a short human readable name of s for logs.
func Name(s Strategy) string {
	switch v := s.(type) {
	case *AppendBits:
		return fmt.Sprintf("append-bits(%d)", v.bits)
	case *CopyBits:
		return fmt.Sprintf("copy-bits(%d)", v.bits)
	case *FixedSuffix:
		return fmt.Sprintf("fixed-suffix(%d bits)", v.size)
	case *Nonce:
		return fmt.Sprintf("nonce(%d bits)", v.size)
	case nil:
		return "none"
	default:
		return fmt.Sprintf("%T", s)
	}
}

// lowBits returns x mod 2^k.
func lowBits(x *big.Int, k int) *big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(k))
	mask.Sub(mask, big.NewInt(1))
	return mask.And(mask, x)
}

// selectOne applies match to every candidate and returns the single one that
// satisfies it.
func selectOne(c Candidates, match func(*big.Int) bool) (*big.Int, error) {
	var found *big.Int
	matches := 0
	for _, x := range c {
		if x == nil || x.Sign() < 0 {
			continue
		}
		if match(x) {
			found = x
			matches++
		}
	}
	if matches != 1 {
		return nil, fmt.Errorf("%w: %d of %d candidates match", ErrDisambiguation, matches, len(c))
	}
	return found, nil
}

func checkPlaintext(m *big.Int) error {
	if m == nil || m.Sign() < 0 {
		return ErrInvalidPlaintext
	}
	return nil
}

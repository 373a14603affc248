package padding

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// suffix appends the literal bits of a positive value below the plaintext:
// m -> m<<s | v, where s is the bit length of v. A candidate is accepted
// when its lowest s bits equal v.
type suffix struct {
	value *big.Int
	size  int
}

func newSuffix(v *big.Int) (suffix, error) {
	if v == nil || v.Sign() <= 0 {
		return suffix{}, ErrInvalidSuffix
	}
	return suffix{value: new(big.Int).Set(v), size: v.BitLen()}, nil
}

func (s suffix) pad(m *big.Int) (*big.Int, error) {
	if err := checkPlaintext(m); err != nil {
		return nil, err
	}
	out := new(big.Int).Lsh(m, uint(s.size))
	return out.Or(out, s.value), nil
}

func (s suffix) unpad(c Candidates) (*big.Int, error) {
	x, err := selectOne(c, func(x *big.Int) bool {
		return lowBits(x, s.size).Cmp(s.value) == 0
	})
	if err != nil {
		return nil, err
	}
	return new(big.Int).Rsh(x, uint(s.size)), nil
}

// FixedSuffix pads every plaintext with the bits of a fixed system-wide
// value. The caller must pick a value long enough to make accidental matches
// negligible; MinRecommendedBits is a reasonable floor.
type FixedSuffix struct {
	suffix
}

// NewFixedSuffix returns a FixedSuffix strategy appending v.
func NewFixedSuffix(v *big.Int) (*FixedSuffix, error) {
	s, err := newSuffix(v)
	if err != nil {
		return nil, err
	}
	return &FixedSuffix{suffix: s}, nil
}

// Pad implements Strategy.
func (s *FixedSuffix) Pad(m *big.Int) (*big.Int, error) { return s.pad(m) }

// Unpad implements Strategy.
func (s *FixedSuffix) Unpad(c Candidates) (*big.Int, error) { return s.unpad(c) }

// Overhead implements Strategy.
func (s *FixedSuffix) Overhead() int { return s.size }

// State implements Stateful.
func (s *FixedSuffix) State() *big.Int { return new(big.Int).Set(s.value) }

// Builder implements Stateful.
func (s *FixedSuffix) Builder() Builder { return FixedSuffixBuilder{} }

// Nonce pads with a per-message or per-stream random value. It is built the
// same way as FixedSuffix; only the provenance of the value differs.
type Nonce struct {
	suffix
}

// NewNonce returns a Nonce strategy appending v.
func NewNonce(v *big.Int) (*Nonce, error) {
	s, err := newSuffix(v)
	if err != nil {
		return nil, err
	}
	return &Nonce{suffix: s}, nil
}

// NewRandomNonce draws a nonce of exactly bits bits from random
// (nil for crypto/rand.Reader).
func NewRandomNonce(random io.Reader, bits int) (*Nonce, error) {
	if bits < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPaddingSize, bits)
	}
	if random == nil {
		random = rand.Reader
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	v, err := rand.Int(random, limit)
	if err != nil {
		return nil, fmt.Errorf("padding: nonce generation: %w", err)
	}
	v.SetBit(v, bits-1, 1)
	return NewNonce(v)
}

// Pad implements Strategy.
func (s *Nonce) Pad(m *big.Int) (*big.Int, error) { return s.pad(m) }

// Unpad implements Strategy.
func (s *Nonce) Unpad(c Candidates) (*big.Int, error) { return s.unpad(c) }

// Overhead implements Strategy.
func (s *Nonce) Overhead() int { return s.size }

// State implements Stateful.
func (s *Nonce) State() *big.Int { return new(big.Int).Set(s.value) }

// Builder implements Stateful.
func (s *Nonce) Builder() Builder { return NonceBuilder{} }

// FixedSuffixBuilder rebuilds a FixedSuffix strategy from a header value.
// States shorter than MinBits bits are rejected; zero disables the check.
type FixedSuffixBuilder struct {
	MinBits int
}

// Build implements Builder.
func (b FixedSuffixBuilder) Build(state *big.Int) (Strategy, error) {
	if err := checkState(state, b.MinBits); err != nil {
		return nil, err
	}
	return NewFixedSuffix(state)
}

// NonceBuilder rebuilds a Nonce strategy from a header value.
// States shorter than MinBits bits are rejected; zero disables the check.
type NonceBuilder struct {
	MinBits int
}

// Build implements Builder.
func (b NonceBuilder) Build(state *big.Int) (Strategy, error) {
	if err := checkState(state, b.MinBits); err != nil {
		return nil, err
	}
	return NewNonce(state)
}

func checkState(state *big.Int, minBits int) error {
	if state == nil || state.Sign() <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidState, ErrInvalidSuffix)
	}
	if state.BitLen() < minBits {
		return fmt.Errorf("%w: %d bits, want at least %d", ErrInvalidState, state.BitLen(), minBits)
	}
	return nil
}

var (
	_ Stateful = (*FixedSuffix)(nil)
	_ Stateful = (*Nonce)(nil)
	_ Strategy = (*AppendBits)(nil)
	_ Strategy = (*CopyBits)(nil)
)

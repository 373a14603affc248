package padding

import (
	"fmt"
	"math/big"
)

// AppendBits pads a plaintext with a copy of its own lowest k bits:
// m -> m<<k | (m mod 2^k). A decryption candidate is accepted when its
// lowest k bits equal the k bits right above them.
//
// A wrong candidate passes the check with probability 2^-k, so a decryption
// fails with ErrDisambiguation with probability about 3*2^-k. Plaintexts
// shorter than k bits cannot be padded.
type AppendBits struct {
	bits int
}

// NewAppendBits returns an AppendBits strategy with k padding bits.
func NewAppendBits(k int) (*AppendBits, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPaddingSize, k)
	}
	return &AppendBits{bits: k}, nil
}

// Pad implements Strategy.
func (s *AppendBits) Pad(m *big.Int) (*big.Int, error) {
	if err := checkPlaintext(m); err != nil {
		return nil, err
	}
	if m.BitLen() < s.bits {
		return nil, fmt.Errorf("%w: cannot copy %d bits from the plaintext", ErrPlaintextTooShort, s.bits)
	}
	return appendOwnBits(m, s.bits), nil
}

// Unpad implements Strategy.
func (s *AppendBits) Unpad(c Candidates) (*big.Int, error) {
	return unpadOwnBits(c, s.bits)
}

// Overhead implements Strategy.
func (s *AppendBits) Overhead() int { return s.bits }

// CopyBits builds the same padding as AppendBits but validates the minimum
// plaintext length up front through CheckPlaintext, reporting how many bits
// were given and how many are needed.
//
// The padding size sets the robustness: every extra bit halves the chance
// that a wrong root passes for the right one.
type CopyBits struct {
	bits int
}

// NewCopyBits returns a CopyBits strategy with k padding bits.
func NewCopyBits(k int) (*CopyBits, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPaddingSize, k)
	}
	return &CopyBits{bits: k}, nil
}

// CheckPlaintext reports whether m is long enough to be padded.
func (s *CopyBits) CheckPlaintext(m *big.Int) error {
	if err := checkPlaintext(m); err != nil {
		return err
	}
	if m.BitLen() < s.bits {
		return fmt.Errorf("%w: plaintext has %d bits, copy-bits(%d) needs at least %d",
			ErrPlaintextTooShort, m.BitLen(), s.bits, s.bits)
	}
	return nil
}

// Pad implements Strategy.
func (s *CopyBits) Pad(m *big.Int) (*big.Int, error) {
	if err := s.CheckPlaintext(m); err != nil {
		return nil, err
	}
	return appendOwnBits(m, s.bits), nil
}

// Unpad implements Strategy.
func (s *CopyBits) Unpad(c Candidates) (*big.Int, error) {
	return unpadOwnBits(c, s.bits)
}

// Overhead implements Strategy.
func (s *CopyBits) Overhead() int { return s.bits }

func appendOwnBits(m *big.Int, k int) *big.Int {
	out := new(big.Int).Lsh(m, uint(k))
	return out.Or(out, lowBits(m, k))
}

func unpadOwnBits(c Candidates, k int) (*big.Int, error) {
	x, err := selectOne(c, func(x *big.Int) bool {
		// The padded value always holds at least 2k bits.
		if x.BitLen() < 2*k {
			return false
		}
		head := new(big.Int).Rsh(x, uint(k))
		return lowBits(x, k).Cmp(lowBits(head, k)) == 0
	})
	if err != nil {
		return nil, err
	}
	return new(big.Int).Rsh(x, uint(k)), nil
}

// Package rabin implements the Rabin public-key cryptosystem over Blum
// integers n = p*q with p ≡ q ≡ 3 (mod 4).
//
// Encryption squares the padded plaintext modulo n. Decryption takes the
// closed-form square roots modulo p and q, combines them with the Chinese
// Remainder Theorem into four candidates and lets a padding.Strategy pick
// the right one:
//
//	mp = c^((p+1)/4) mod p
//	mq = c^((q+1)/4) mod q
//	yp*p + yq*q = 1                      (extended Euclid)
//	r1 = (yp*p*mq + yq*q*mp) mod n,  r2 = n - r1
//	r3 = (yp*p*mq - yq*q*mp) mod n,  r4 = n - r3
//
// A Cryptosystem keeps no state between calls and is safe for concurrent use
// as long as its strategy is.
package rabin

import (
	"fmt"
	"math/big"

	"github.com/bitfsorg/librabin-go/padding"
)

// Cryptosystem encrypts and decrypts integers under a fixed padding strategy.
type Cryptosystem struct {
	padding padding.Strategy
}

// New returns a Cryptosystem using s. A nil strategy selects
// CopyBits(padding.DefaultPaddingBits).
func New(s padding.Strategy) *Cryptosystem {
	if s == nil {
		s, _ = padding.NewCopyBits(padding.DefaultPaddingBits)
	}
	return &Cryptosystem{padding: s}
}

// Padding returns the strategy in use.
func (cs *Cryptosystem) Padding() padding.Strategy { return cs.padding }

// Encrypt pads m and returns padded^2 mod n.
//
// When padded^2 < n no reduction takes place: the ciphertext is the plain
// integer square and anyone can invert it with an integer square root,
// without the key. Only plaintexts whose padded form exceeds about
// bitlen(n)/2 bits are protected.
func (cs *Cryptosystem) Encrypt(pk *PublicKey, m *big.Int) (*big.Int, error) {
	if pk == nil {
		return nil, ErrNilKey
	}
	if m == nil || m.Sign() < 0 {
		return nil, ErrInvalidPlaintext
	}

	padded, err := cs.padding.Pad(m)
	if err != nil {
		return nil, err
	}
	if padded.Cmp(pk.n) >= 0 {
		return nil, fmt.Errorf("%w: %d bits padded, modulus has %d bits",
			ErrPlaintextTooLarge, padded.BitLen(), pk.n.BitLen())
	}

	return new(big.Int).Exp(padded, big.NewInt(2), pk.n), nil
}

// Decrypt recovers the plaintext of c.
//
// c must have been produced by Encrypt under the matching public key. Any
// other value in [0, n) is not a quadratic residue in general; its "roots"
// are meaningless and Decrypt most likely fails with
// padding.ErrDisambiguation.
func (cs *Cryptosystem) Decrypt(sk *SecretKey, c *big.Int) (*big.Int, error) {
	candidates, err := cs.Candidates(sk, c)
	if err != nil {
		return nil, err
	}
	return cs.padding.Unpad(candidates)
}

// Candidates returns the four square roots of c modulo n.
func (cs *Cryptosystem) Candidates(sk *SecretKey, c *big.Int) (padding.Candidates, error) {
	var out padding.Candidates
	if sk == nil {
		return out, ErrNilKey
	}
	if c == nil || c.Sign() < 0 || c.Cmp(sk.n) >= 0 {
		return out, ErrInvalidCiphertext
	}
	p, q, n := sk.p, sk.q, sk.n

	mp := modSqrtBlum(c, p)
	mq := modSqrtBlum(c, q)

	gcd, yp, yq := ExtendedEuclid(p, q)
	if gcd.Cmp(bigOne) != 0 {
		return out, fmt.Errorf("%w: gcd(p, q) = %s", ErrInternalInvariant, gcd)
	}

	// a = yp*p*mq, b = yq*q*mp
	a := new(big.Int).Mul(yp, p)
	a.Mul(a, mq)
	b := new(big.Int).Mul(yq, q)
	b.Mul(b, mp)

	r1 := new(big.Int).Add(a, b)
	r1.Mod(r1, n)
	r3 := new(big.Int).Sub(a, b)
	r3.Mod(r3, n)

	out[0] = r1
	out[1] = new(big.Int).Sub(n, r1)
	out[2] = r3
	out[3] = new(big.Int).Sub(n, r3)
	return out, nil
}

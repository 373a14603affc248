package padding

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

// NonceInfo is the HKDF info string used by DeriveNonce.
const NonceInfo = "librabin-stream-nonce"

// DeriveNonce deterministically derives a Nonce of exactly bits bits with
// HKDF-SHA256.
//
// The same (secret, salt) pair always yields the same nonce, which lets a
// sender reproduce the nonce for a given recipient without storing it.
// The salt is typically the recipient's public key fingerprint.
//
// The HKDF parameters are:
//   - IKM  = secret
//   - Salt = salt
//   - Info = "librabin-stream-nonce"
//   - Len  = ceil(bits/8)
func DeriveNonce(secret, salt []byte, bits int) (*Nonce, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("padding: derive nonce: secret is empty")
	}
	if bits < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPaddingSize, bits)
	}

	r := hkdf.New(sha256.New, secret, salt, []byte(NonceInfo))
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("padding: derive nonce: %w", err)
	}

	v := new(big.Int).SetBytes(buf)
	v = lowBits(v, bits)
	v.SetBit(v, bits-1, 1)
	return NewNonce(v)
}

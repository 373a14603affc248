package rabin

import "errors"

var (
	// ErrInvalidBitLength indicates a prime bit length below MinPrimeBits.
	ErrInvalidBitLength = errors.New("rabin: invalid prime bit length")

	// ErrInvalidKey indicates key material that violates the Blum integer
	// requirements (p ≡ q ≡ 3 mod 4, p ≠ q, n = p*q).
	ErrInvalidKey = errors.New("rabin: invalid key")

	// ErrNilKey indicates a nil public or secret key was provided.
	ErrNilKey = errors.New("rabin: key is nil")

	// ErrInvalidPlaintext indicates a nil or negative plaintext integer.
	ErrInvalidPlaintext = errors.New("rabin: invalid plaintext")

	// ErrPlaintextTooLarge indicates the padded plaintext is not smaller than n.
	// Choose a smaller block or a larger modulus.
	ErrPlaintextTooLarge = errors.New("rabin: padded plaintext is not smaller than modulus")

	// ErrInvalidCiphertext indicates a nil ciphertext or one outside [0, n).
	ErrInvalidCiphertext = errors.New("rabin: invalid ciphertext")

	// ErrInternalInvariant indicates gcd(p, q) != 1 during decryption.
	// It points at defective key material and is never expected for keys
	// produced by GenerateKey.
	ErrInternalInvariant = errors.New("rabin: internal invariant violated")
)

package codec

import "errors"

var (
	// ErrInvalidBlockSize indicates non-positive block sizes, or a ciphertext
	// block not wider than the plaintext block.
	ErrInvalidBlockSize = errors.New("codec: invalid block size")

	// ErrKeyTooSmall indicates the modulus cannot hold a padded plaintext
	// block or does not fit into a ciphertext block.
	ErrKeyTooSmall = errors.New("codec: key does not match block sizes")

	// ErrNoStrategy indicates an encryption attempt on a codec that was built
	// from a padding.Builder only.
	ErrNoStrategy = errors.New("codec: no padding strategy for encryption")

	// ErrInvalidHeader indicates a missing, oversized or malformed header
	// record in a ciphertext stream.
	ErrInvalidHeader = errors.New("codec: invalid stream header")

	// ErrTruncatedBlock indicates the ciphertext stream ends inside a block.
	ErrTruncatedBlock = errors.New("codec: truncated ciphertext block")

	// ErrBlockOverflow indicates an integer that does not fit its block.
	ErrBlockOverflow = errors.New("codec: value does not fit block")

	// ErrLengthMismatch indicates the decrypted data is inconsistent with the
	// original length supplied by the caller.
	ErrLengthMismatch = errors.New("codec: plaintext length mismatch")
)

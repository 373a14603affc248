// Package codec encrypts and decrypts byte streams with the Rabin
// cryptosystem by cutting them into fixed-size integer blocks.
//
// Stream layout:
//
//	[header]  decimal state of a stateful padding strategy, then '\n'
//	block*    fixed-width big-endian ciphertext blocks, no delimiters
//
// The header is present only when the padding strategy implements
// padding.Stateful. Encoder and decoder must agree on both block sizes; a
// mismatch yields garbage, not an error.
//
// Every plaintext block is read as exactly PlaintextBlockSize bytes except
// the last one, which may be shorter. Decryption restores the full width of
// all blocks but the last. The width of the last block is only known if the
// caller supplies the original length (DecryptStreamWithLength); otherwise it
// is written in its minimal big-endian form, so leading zero bytes of a short
// final block are lost.
//
// A short final block is encrypted as a small integer of its own. When its
// padded form has fewer than about bitlen(n)/2 bits its square is not
// reduced mod n, and that tail can be recovered with an integer square root
// without the key. Callers needing confidentiality of short tails must pad
// the stream themselves.
//
// Stateless paddings (padding.AppendBits, padding.CopyBits) cannot pad a
// block whose integer has fewer bits than the padding size, so a zero-filled
// block or a short tail aborts EncryptStream with
// padding.ErrPlaintextTooShort. Use padding.FixedSuffix or padding.Nonce for
// arbitrary data.
package codec

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/bitfsorg/librabin-go/padding"
	"github.com/bitfsorg/librabin-go/rabin"
)

const (
	// DefaultPlaintextBlockSize is the default plaintext block size in bytes.
	DefaultPlaintextBlockSize = 256

	// DefaultCiphertextBlockSize is the default ciphertext block size in
	// bytes, wide enough for a 3072-bit modulus.
	DefaultCiphertextBlockSize = DefaultPlaintextBlockSize + 128

	// HeaderTerminator ends the header record.
	HeaderTerminator = '\n'

	// MaxHeaderLen bounds the header record, terminator excluded.
	MaxHeaderLen = 4096
)

// Codec drives a rabin.Cryptosystem over byte streams. A Codec is immutable
// and safe for concurrent use.
type Codec struct {
	plainSize  int
	cipherSize int
	strategy   padding.Strategy
	builder    padding.Builder
	log        *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithBlockSizes overrides the plaintext and ciphertext block sizes.
func WithBlockSizes(plain, cipher int) Option {
	return func(c *Codec) {
		c.plainSize = plain
		c.cipherSize = cipher
	}
}

// WithLogger sets the logger. Nil binds slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.log = l }
}

// New returns a Codec that encrypts with s. If s is padding.Stateful the
// codec writes its state as a stream header and decrypts by rebuilding the
// strategy from the header it reads, so a decrypting codec can be built with
// any value of the same kind.
func New(s padding.Strategy, opts ...Option) (*Codec, error) {
	if s == nil {
		return nil, ErrNoStrategy
	}
	c := &Codec{strategy: s}
	if st, ok := s.(padding.Stateful); ok {
		c.builder = st.Builder()
	}
	return c.apply(opts)
}

// NewWithBuilder returns a decrypt-only Codec for streams with a header. The
// strategy is rebuilt from every stream's header through b.
func NewWithBuilder(b padding.Builder, opts ...Option) (*Codec, error) {
	if b == nil {
		return nil, ErrNoStrategy
	}
	return (&Codec{builder: b}).apply(opts)
}

func (c *Codec) apply(opts []Option) (*Codec, error) {
	c.plainSize = DefaultPlaintextBlockSize
	c.cipherSize = DefaultCiphertextBlockSize
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.plainSize <= 0 || c.cipherSize <= c.plainSize {
		return nil, fmt.Errorf("%w: plaintext %d, ciphertext %d", ErrInvalidBlockSize, c.plainSize, c.cipherSize)
	}
	return c, nil
}

// PlaintextBlockSize returns the plaintext block size in bytes.
func (c *Codec) PlaintextBlockSize() int { return c.plainSize }

// CiphertextBlockSize returns the ciphertext block size in bytes.
func (c *Codec) CiphertextBlockSize() int { return c.cipherSize }

// CheckKey reports whether pk can carry this codec's blocks: a full padded
// plaintext block must stay below n and n must fit in a ciphertext block.
func (c *Codec) CheckKey(pk *rabin.PublicKey) error {
	if pk == nil {
		return rabin.ErrNilKey
	}
	overhead := 0
	if c.strategy != nil {
		overhead = c.strategy.Overhead()
	}
	if need := 8*c.plainSize + overhead; need >= pk.BitLen() {
		return fmt.Errorf("%w: padded block needs %d bits, modulus has %d", ErrKeyTooSmall, need, pk.BitLen())
	}
	if pk.Size() > c.cipherSize {
		return fmt.Errorf("%w: modulus needs %d bytes, ciphertext block has %d", ErrKeyTooSmall, pk.Size(), c.cipherSize)
	}
	return nil
}

// strategyName is used for logs only.
func (c *Codec) strategyName() string {
	if c.strategy == nil {
		return fmt.Sprintf("%T", c.builder)
	}
	return padding.Name(c.strategy)
}

// putBlock writes x big-endian into block, left-padded with zeros.
func putBlock(block []byte, x *big.Int) error {
	if (x.BitLen()+7)/8 > len(block) {
		return fmt.Errorf("%w: %d bits into %d bytes", ErrBlockOverflow, x.BitLen(), len(block))
	}
	x.FillBytes(block)
	return nil
}

package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/bitfsorg/librabin-go/padding"
	"github.com/bitfsorg/librabin-go/rabin"
)

// EncryptStream encrypts src block by block into dst and returns the number
// of plaintext bytes consumed. On error, blocks written so far stay in dst.
func (c *Codec) EncryptStream(pk *rabin.PublicKey, dst io.Writer, src io.Reader) (int64, error) {
	if c.strategy == nil {
		return 0, ErrNoStrategy
	}
	if err := c.CheckKey(pk); err != nil {
		return 0, err
	}

	if st, ok := c.strategy.(padding.Stateful); ok {
		if err := writeHeader(dst, st.State()); err != nil {
			return 0, err
		}
	}

	cs := rabin.New(c.strategy)
	in := make([]byte, c.plainSize)
	out := make([]byte, c.cipherSize)

	var total int64
	blocks := 0
	for {
		n, readErr := io.ReadFull(src, in)
		if n > 0 {
			m := new(big.Int).SetBytes(in[:n])
			ct, err := cs.Encrypt(pk, m)
			if err == nil {
				err = putBlock(out, ct)
			}
			if err != nil {
				c.log.Warn("codec: encrypt block failed", "block", blocks, "error", err)
				return total, fmt.Errorf("codec: block %d: %w", blocks, err)
			}
			if _, err := dst.Write(out); err != nil {
				return total, fmt.Errorf("codec: write block %d: %w", blocks, err)
			}
			total += int64(n)
			blocks++
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return total, fmt.Errorf("codec: read plaintext: %w", readErr)
		}
	}

	c.log.Debug("codec: stream encrypted",
		"strategy", c.strategyName(), "blocks", blocks, "bytes", total)
	return total, nil
}

// DecryptStream decrypts src into dst and returns the number of plaintext
// bytes written. The last block is written in minimal form; use
// DecryptStreamWithLength to restore its exact width.
func (c *Codec) DecryptStream(sk *rabin.SecretKey, dst io.Writer, src io.Reader) (int64, error) {
	return c.decryptStream(sk, dst, src, -1)
}

// DecryptStreamWithLength is DecryptStream for a stream whose original
// plaintext length is known. The last block is left-padded so that exactly
// length bytes are written; inconsistent data yields ErrLengthMismatch.
func (c *Codec) DecryptStreamWithLength(sk *rabin.SecretKey, dst io.Writer, src io.Reader, length int64) (int64, error) {
	if length < 0 {
		return 0, fmt.Errorf("%w: negative length %d", ErrLengthMismatch, length)
	}
	return c.decryptStream(sk, dst, src, length)
}

func (c *Codec) decryptStream(sk *rabin.SecretKey, dst io.Writer, src io.Reader, length int64) (int64, error) {
	if sk == nil {
		return 0, rabin.ErrNilKey
	}
	br := bufio.NewReader(src)

	strategy, err := c.decryptStrategy(br)
	if err != nil {
		return 0, err
	}
	cs := rabin.New(strategy)

	cur := make([]byte, c.cipherSize)
	next := make([]byte, c.cipherSize)
	more, err := readBlock(br, cur)
	if err != nil {
		return 0, err
	}

	var written int64
	blocks := 0
	for more {
		// One block of lookahead tells whether cur is the last block.
		more, err = readBlock(br, next)
		if err != nil {
			return written, fmt.Errorf("codec: block %d: %w", blocks+1, err)
		}

		m, err := cs.Decrypt(sk, new(big.Int).SetBytes(cur))
		if err != nil {
			c.log.Warn("codec: decrypt block failed", "block", blocks, "error", err)
			return written, fmt.Errorf("codec: block %d: %w", blocks, err)
		}

		width := c.plainSize
		if !more {
			width, err = c.finalWidth(m, written, length)
			if err != nil {
				return written, err
			}
		}
		out := make([]byte, width)
		if err := putBlock(out, m); err != nil {
			return written, fmt.Errorf("codec: block %d: %w", blocks, err)
		}
		if _, err := dst.Write(out); err != nil {
			return written, fmt.Errorf("codec: write block %d: %w", blocks, err)
		}
		written += int64(width)
		blocks++
		cur, next = next, cur
	}

	if length >= 0 && written != length {
		return written, fmt.Errorf("%w: wrote %d bytes, want %d", ErrLengthMismatch, written, length)
	}
	c.log.Debug("codec: stream decrypted",
		"strategy", c.strategyName(), "blocks", blocks, "bytes", written)
	return written, nil
}

// finalWidth returns the byte width of the last plaintext block.
func (c *Codec) finalWidth(m *big.Int, written, length int64) (int, error) {
	if length < 0 {
		// Every encrypted block carried at least one byte.
		return max((m.BitLen()+7)/8, 1), nil
	}
	rem := length - written
	if rem < 1 || rem > int64(c.plainSize) {
		return 0, fmt.Errorf("%w: %d bytes left for the last block of up to %d",
			ErrLengthMismatch, rem, c.plainSize)
	}
	if (m.BitLen()+7)/8 > int(rem) {
		return 0, fmt.Errorf("%w: last block holds %d bits, %d bytes expected",
			ErrLengthMismatch, m.BitLen(), rem)
	}
	return int(rem), nil
}

// decryptStrategy returns the strategy for one ciphertext stream, reading
// the header first when the codec was set up for stateful padding.
func (c *Codec) decryptStrategy(br *bufio.Reader) (padding.Strategy, error) {
	if c.builder == nil {
		return c.strategy, nil
	}
	state, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	s, err := c.builder.Build(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	c.log.Debug("codec: header parsed", "state_bits", state.BitLen())
	return s, nil
}

// readBlock fills block from r. It returns false at a clean end of stream
// and ErrTruncatedBlock when the stream ends inside the block.
func readBlock(r io.Reader, block []byte) (bool, error) {
	_, err := io.ReadFull(r, block)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, io.EOF):
		return false, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return false, ErrTruncatedBlock
	default:
		return false, fmt.Errorf("codec: read ciphertext: %w", err)
	}
}

// writeHeader writes the decimal form of state followed by the terminator.
func writeHeader(w io.Writer, state *big.Int) error {
	rec := append([]byte(state.Text(10)), HeaderTerminator)
	if len(rec)-1 > MaxHeaderLen {
		return fmt.Errorf("%w: state has %d digits", ErrInvalidHeader, len(rec)-1)
	}
	if _, err := w.Write(rec); err != nil {
		return fmt.Errorf("codec: write header: %w", err)
	}
	return nil
}

// readHeader reads and parses the header record.
func readHeader(br *bufio.Reader) (*big.Int, error) {
	var buf bytes.Buffer
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: missing terminator", ErrInvalidHeader)
			}
			return nil, fmt.Errorf("codec: read header: %w", err)
		}
		if b == HeaderTerminator {
			break
		}
		if buf.Len() == MaxHeaderLen {
			return nil, fmt.Errorf("%w: longer than %d bytes", ErrInvalidHeader, MaxHeaderLen)
		}
		buf.WriteByte(b)
	}

	text := buf.String()
	for _, r := range text {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: not a decimal integer", ErrInvalidHeader)
		}
	}
	state, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("%w: not a decimal integer", ErrInvalidHeader)
	}
	return state, nil
}

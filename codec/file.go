package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bitfsorg/librabin-go/rabin"
)

const (
	// EncryptedExt is appended to the path of an encrypted file.
	EncryptedExt = ".enc"

	// DecryptedExt is appended to the path of a decrypted file.
	DecryptedExt = ".dec"
)

// Encrypt encrypts plaintext in memory.
func (c *Codec) Encrypt(pk *rabin.PublicKey, plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.EncryptStream(pk, &buf, bytes.NewReader(plaintext)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decrypt decrypts ciphertext in memory. See DecryptStream for how the last
// block is sized.
func (c *Codec) Decrypt(sk *rabin.SecretKey, ciphertext []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.DecryptStream(sk, &buf, bytes.NewReader(ciphertext)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecryptWithLength decrypts ciphertext whose plaintext had length bytes.
func (c *Codec) DecryptWithLength(sk *rabin.SecretKey, ciphertext []byte, length int64) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.DecryptStreamWithLength(sk, &buf, bytes.NewReader(ciphertext), length); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncryptFile encrypts the file at path into path+".enc". It returns the
// output path and the plaintext length, which the caller should keep for
// DecryptFileWithLength. A partially written output file is left in place
// on error.
func (c *Codec) EncryptFile(pk *rabin.PublicKey, path string) (string, int64, error) {
	outPath := path + EncryptedExt
	var n int64
	err := transformFile(path, outPath, func(w io.Writer, r io.Reader) error {
		var err error
		n, err = c.EncryptStream(pk, w, r)
		return err
	})
	return outPath, n, err
}

// DecryptFile decrypts the file at path into path+".dec" and returns the
// output path.
func (c *Codec) DecryptFile(sk *rabin.SecretKey, path string) (string, error) {
	outPath := path + DecryptedExt
	err := transformFile(path, outPath, func(w io.Writer, r io.Reader) error {
		_, err := c.DecryptStream(sk, w, r)
		return err
	})
	return outPath, err
}

// DecryptFileWithLength is DecryptFile restoring exactly length bytes.
func (c *Codec) DecryptFileWithLength(sk *rabin.SecretKey, path string, length int64) (string, error) {
	outPath := path + DecryptedExt
	err := transformFile(path, outPath, func(w io.Writer, r io.Reader) error {
		_, err := c.DecryptStreamWithLength(sk, w, r, length)
		return err
	})
	return outPath, err
}

// transformFile streams inPath through fn into outPath. The output is
// flushed even when fn fails so partial results are visible to the caller.
func transformFile(inPath, outPath string, fn func(io.Writer, io.Reader) error) (err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("codec: open input: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("codec: create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("codec: close output: %w", cerr)
		}
	}()

	w := bufio.NewWriter(out)
	fnErr := fn(w, bufio.NewReader(in))
	if ferr := w.Flush(); ferr != nil && fnErr == nil {
		return fmt.Errorf("codec: flush output: %w", ferr)
	}
	return fnErr
}

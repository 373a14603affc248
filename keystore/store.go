// Package keystore persists Rabin key pairs in a bbolt database and reads
// and writes them as YAML key files.
//
// A secret key is stored as its two primes only; the modulus is recomputed
// on load. Keys are addressed by a user-chosen name or by the HASH160
// fingerprint of their modulus.
package keystore

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/librabin-go/rabin"
)

// MaxNameLen bounds the length of a key name.
const MaxNameLen = 64

var (
	bucketKeys         = []byte("keys")
	bucketFingerprints = []byte("fingerprints")
)

// Entry describes a stored key without its secret material.
type Entry struct {
	Name        string
	Fingerprint []byte
	Bits        int
}

// Store wraps a bbolt database holding key pairs.
// It is safe for concurrent use.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the key database at dbPath.
// The parent directory is created if it does not exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("keystore: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("keystore: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketKeys, bucketFingerprints} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("keystore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores key under name. Returns ErrDuplicateKey if the name or the
// modulus is already present.
func (s *Store) Put(name string, key *rabin.KeyPair) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if key == nil || key.Secret == nil {
		return fmt.Errorf("%w: key pair", ErrNilParam)
	}
	fp := key.Secret.Public().Fingerprint()

	return s.db.Update(func(tx *bbolt.Tx) error {
		kb := tx.Bucket(bucketKeys)
		fb := tx.Bucket(bucketFingerprints)
		if kb.Get([]byte(name)) != nil {
			return fmt.Errorf("%w: name %q", ErrDuplicateKey, name)
		}
		if existing := fb.Get(fp); existing != nil {
			return fmt.Errorf("%w: modulus already stored as %q", ErrDuplicateKey, existing)
		}
		if err := kb.Put([]byte(name), encodeRecord(key.Secret)); err != nil {
			return fmt.Errorf("keystore: put key: %w", err)
		}
		if err := fb.Put(fp, []byte(name)); err != nil {
			return fmt.Errorf("keystore: put fingerprint: %w", err)
		}
		return nil
	})
}

// Get loads the key pair stored under name.
func (s *Store) Get(name string) (*rabin.KeyPair, error) {
	var key *rabin.KeyPair
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketKeys).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		var err error
		key, err = decodeRecord(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// GetByFingerprint loads the key pair whose modulus hashes to fp and returns
// it with its name.
func (s *Store) GetByFingerprint(fp []byte) (string, *rabin.KeyPair, error) {
	if len(fp) != rabin.FingerprintSize {
		return "", nil, fmt.Errorf("%w: fingerprint must be %d bytes", ErrNotFound, rabin.FingerprintSize)
	}

	var (
		name string
		key  *rabin.KeyPair
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		n := tx.Bucket(bucketFingerprints).Get(fp)
		if n == nil {
			return ErrNotFound
		}
		data := tx.Bucket(bucketKeys).Get(n)
		if data == nil {
			return fmt.Errorf("%w: fingerprint index points to missing key %q", ErrCorruptRecord, n)
		}
		name = string(n)
		var err error
		key, err = decodeRecord(data)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return name, key, nil
}

// Delete removes the key stored under name and its fingerprint index entry.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		kb := tx.Bucket(bucketKeys)
		data := kb.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		key, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketFingerprints).Delete(key.Public.Fingerprint()); err != nil {
			return fmt.Errorf("keystore: delete fingerprint: %w", err)
		}
		if err := kb.Delete([]byte(name)); err != nil {
			return fmt.Errorf("keystore: delete key: %w", err)
		}
		return nil
	})
}

// List returns all stored keys in byte order of their names.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKeys).ForEach(func(k, v []byte) error {
			key, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("%q: %w", k, err)
			}
			entries = append(entries, Entry{
				Name:        string(k),
				Fingerprint: key.Public.Fingerprint(),
				Bits:        key.Public.BitLen(),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ValidateName checks that name is 1..MaxNameLen characters drawn from
// letters, digits, '.', '_' and '-'.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLen {
		return fmt.Errorf("%w: length must be 1..%d", ErrInvalidName, MaxNameLen)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, r)
		}
	}
	return nil
}

// encodeRecord serializes the primes as two length-prefixed big-endian
// integers: [4-byte len][p][4-byte len][q].
func encodeRecord(sk *rabin.SecretKey) []byte {
	p, q := sk.P().Bytes(), sk.Q().Bytes()
	buf := make([]byte, 0, 8+len(p)+len(q))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p)))
	buf = append(buf, p...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(q)))
	return append(buf, q...)
}

// decodeRecord parses a record written by encodeRecord. The returned slice
// from bbolt is only valid inside the transaction; the integers are copied.
func decodeRecord(data []byte) (*rabin.KeyPair, error) {
	p, rest, err := readInt(data)
	if err != nil {
		return nil, err
	}
	q, rest, err := readInt(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptRecord, len(rest))
	}
	sk, err := rabin.NewSecretKey(p, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return &rabin.KeyPair{Secret: sk, Public: sk.Public()}, nil
}

func readInt(data []byte) (*big.Int, []byte, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%w: short length prefix", ErrCorruptRecord)
	}
	n := binary.BigEndian.Uint32(data)
	data = data[4:]
	if uint64(n) > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: integer of %d bytes, %d left", ErrCorruptRecord, n, len(data))
	}
	return new(big.Int).SetBytes(data[:n]), data[n:], nil
}

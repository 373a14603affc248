package keystore

import "errors"

var (
	// ErrNotFound indicates no key is stored under the given name or fingerprint.
	ErrNotFound = errors.New("keystore: key not found")

	// ErrDuplicateKey indicates the name or the modulus is already stored.
	ErrDuplicateKey = errors.New("keystore: duplicate key")

	// ErrInvalidName indicates an empty, oversized or malformed key name.
	ErrInvalidName = errors.New("keystore: invalid key name")

	// ErrCorruptRecord indicates a stored record that fails to decode.
	ErrCorruptRecord = errors.New("keystore: corrupt key record")

	// ErrInvalidKeyFile indicates a key file with missing or malformed fields.
	ErrInvalidKeyFile = errors.New("keystore: invalid key file")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("keystore: required parameter is nil")
)

// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidPadding indicates the padding scheme name is not recognized.
	ErrInvalidPadding = errors.New("config: invalid padding (must be \"append\", \"copy\", \"fixed\", or \"nonce\")")

	// ErrInvalidPaddingBits indicates a non-positive padding size.
	ErrInvalidPaddingBits = errors.New("config: padding bits must be positive")

	// ErrInvalidSuffix indicates a missing or non-positive fixed suffix.
	ErrInvalidSuffix = errors.New("config: fixed padding needs a positive decimal suffix")

	// ErrInvalidNonceSeed indicates a nonce seed that is not hex.
	ErrInvalidNonceSeed = errors.New("config: nonce seed must be hex")

	// ErrInvalidPrimeBits indicates a prime size below rabin.MinPrimeBits.
	ErrInvalidPrimeBits = errors.New("config: prime size too small")

	// ErrInvalidBlockSize indicates non-positive block sizes or a ciphertext
	// block not wider than the plaintext block.
	ErrInvalidBlockSize = errors.New("config: invalid block sizes")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")

	// ErrInvalidConfigValue indicates a numeric key holds a non-numeric value.
	ErrInvalidConfigValue = errors.New("config: invalid configuration value")

	// ErrStatelessPadding indicates a padding scheme without stream state,
	// for which no padding.Builder exists.
	ErrStatelessPadding = errors.New("config: padding has no stream state")
)

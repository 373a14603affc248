package padding

import "errors"

var (
	// ErrInvalidPaddingSize indicates a non-positive number of padding bits.
	ErrInvalidPaddingSize = errors.New("padding: padding size must be positive")

	// ErrInvalidSuffix indicates a nil or non-positive suffix value.
	ErrInvalidSuffix = errors.New("padding: suffix must be a positive integer")

	// ErrPlaintextTooShort indicates the plaintext has fewer bits than the
	// scheme needs to build its padding.
	ErrPlaintextTooShort = errors.New("padding: plaintext too short for padding")

	// ErrInvalidPlaintext indicates a nil or negative plaintext.
	ErrInvalidPlaintext = errors.New("padding: invalid plaintext")

	// ErrDisambiguation indicates that zero or more than one of the four
	// decryption candidates carried the expected padding.
	ErrDisambiguation = errors.New("padding: cannot determine plaintext candidate")

	// ErrInvalidState indicates a header state value a builder cannot use.
	ErrInvalidState = errors.New("padding: invalid strategy state")
)

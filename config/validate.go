// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/bitfsorg/librabin-go/rabin"
)

// validLogLevels maps the accepted log level strings to slog levels.
var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.PrimeBits < rabin.MinPrimeBits {
		return fmt.Errorf("%w: %d < %d", ErrInvalidPrimeBits, cfg.PrimeBits, rabin.MinPrimeBits)
	}

	if cfg.PlaintextBlock <= 0 || cfg.CiphertextBlock <= cfg.PlaintextBlock {
		return fmt.Errorf("%w: plaintext %d, ciphertext %d", ErrInvalidBlockSize, cfg.PlaintextBlock, cfg.CiphertextBlock)
	}

	switch cfg.Padding {
	case PaddingAppend, PaddingCopy, PaddingNonce:
		if cfg.PaddingBits < 1 {
			return ErrInvalidPaddingBits
		}
	case PaddingFixed:
		if _, err := cfg.suffix(); err != nil {
			return err
		}
	default:
		return ErrInvalidPadding
	}

	if _, err := cfg.nonceSeed(); err != nil {
		return err
	}

	if _, ok := validLogLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		return ErrInvalidLogLevel
	}

	return nil
}

// SlogLevel returns the slog level for cfg.LogLevel, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	if l, ok := validLogLevels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}

// suffix parses the fixed suffix.
func (c Config) suffix() (*big.Int, error) {
	v, ok := new(big.Int).SetString(c.Suffix, 10)
	if !ok || v.Sign() <= 0 {
		return nil, ErrInvalidSuffix
	}
	return v, nil
}

// nonceSeed decodes the nonce seed; empty means none.
func (c Config) nonceSeed() ([]byte, error) {
	if c.NonceSeed == "" {
		return nil, nil
	}
	seed, err := hex.DecodeString(c.NonceSeed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNonceSeed, err)
	}
	return seed, nil
}

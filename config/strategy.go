// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bitfsorg/librabin-go/codec"
	"github.com/bitfsorg/librabin-go/padding"
	"github.com/bitfsorg/librabin-go/rabin"
)

// Strategy builds the configured padding strategy for encrypting to pk.
//
// With nonce padding the nonce is derived from NonceSeed and the key
// fingerprint when a seed is set, and drawn from random otherwise (nil for
// crypto/rand).
func (c Config) Strategy(pk *rabin.PublicKey, random io.Reader) (padding.Strategy, error) {
	switch c.Padding {
	case PaddingAppend:
		return padding.NewAppendBits(c.PaddingBits)
	case PaddingCopy:
		return padding.NewCopyBits(c.PaddingBits)
	case PaddingFixed:
		v, err := c.suffix()
		if err != nil {
			return nil, err
		}
		return padding.NewFixedSuffix(v)
	case PaddingNonce:
		seed, err := c.nonceSeed()
		if err != nil {
			return nil, err
		}
		if seed == nil {
			return padding.NewRandomNonce(random, c.PaddingBits)
		}
		if pk == nil {
			return nil, rabin.ErrNilKey
		}
		return padding.DeriveNonce(seed, pk.Fingerprint(), c.PaddingBits)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPadding, c.Padding)
	}
}

// Builder returns the decrypt-side builder for stateful paddings. Nonce
// headers shorter than PaddingBits are rejected. Stateless paddings return
// ErrStatelessPadding.
func (c Config) Builder() (padding.Builder, error) {
	switch c.Padding {
	case PaddingFixed:
		v, err := c.suffix()
		if err != nil {
			return nil, err
		}
		return padding.FixedSuffixBuilder{MinBits: v.BitLen()}, nil
	case PaddingNonce:
		return padding.NonceBuilder{MinBits: c.PaddingBits}, nil
	case PaddingAppend, PaddingCopy:
		return nil, fmt.Errorf("%w: %s", ErrStatelessPadding, c.Padding)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPadding, c.Padding)
	}
}

// EncryptCodec returns a codec encrypting to pk with the configured
// strategy and block sizes.
//
// Stateless paddings are refused with ErrStatelessPadding: they cannot pad a
// block holding fewer than PaddingBits bits, so zero-filled regions or a
// short tail abort ordinary files. They remain usable for integers and
// selftest through Strategy.
func (c Config) EncryptCodec(pk *rabin.PublicKey, random io.Reader, log *slog.Logger) (*codec.Codec, error) {
	if c.Padding == PaddingAppend || c.Padding == PaddingCopy {
		return nil, fmt.Errorf("%w: %s padding cannot encrypt arbitrary files, use fixed or nonce",
			ErrStatelessPadding, c.Padding)
	}
	s, err := c.Strategy(pk, random)
	if err != nil {
		return nil, err
	}
	return codec.New(s, c.codecOptions(log)...)
}

// DecryptCodec returns a codec for decrypting streams produced under this
// configuration. Stateful paddings are rebuilt from each stream's header.
func (c Config) DecryptCodec(log *slog.Logger) (*codec.Codec, error) {
	b, err := c.Builder()
	if err == nil {
		return codec.NewWithBuilder(b, c.codecOptions(log)...)
	}
	if !errors.Is(err, ErrStatelessPadding) {
		return nil, err
	}
	s, err := c.Strategy(nil, nil)
	if err != nil {
		return nil, err
	}
	return codec.New(s, c.codecOptions(log)...)
}

func (c Config) codecOptions(log *slog.Logger) []codec.Option {
	return []codec.Option{
		codec.WithBlockSizes(c.PlaintextBlock, c.CiphertextBlock),
		codec.WithLogger(log),
	}
}

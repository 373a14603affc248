// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the librabin tool configuration, a plain
// "key = value" file with '#' comments kept in the data directory.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bitfsorg/librabin-go/codec"
	"github.com/bitfsorg/librabin-go/rabin"
)

// Padding scheme names accepted in the "padding" key.
const (
	PaddingAppend = "append"
	PaddingCopy   = "copy"
	PaddingFixed  = "fixed"
	PaddingNonce  = "nonce"
)

// Config holds the tool settings.
type Config struct {
	DataDir         string
	PrimeBits       int
	PlaintextBlock  int
	CiphertextBlock int
	Padding         string
	PaddingBits     int
	Suffix          string // decimal, fixed padding only
	NonceSeed       string // hex, optional
	LogLevel        string
	LogFile         string
}

// DefaultDataDir returns ~/.rabin, or .rabin in the working directory when
// the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rabin"
	}
	return filepath.Join(home, ".rabin")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:         DefaultDataDir(),
		PrimeBits:       rabin.DefaultPrimeBits,
		PlaintextBlock:  codec.DefaultPlaintextBlockSize,
		CiphertextBlock: codec.DefaultCiphertextBlockSize,
		Padding:         PaddingNonce,
		PaddingBits:     128,
		LogLevel:        "info",
	}
}

// ConfigPath returns the configuration file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// KeystorePath returns the key database path inside dataDir.
func KeystorePath(dataDir string) string {
	return filepath.Join(dataDir, "keys.db")
}

// LoadConfig reads the file at path on top of DefaultConfig.
// Unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# librabin Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "primebits = %d\n", cfg.PrimeBits)
	fmt.Fprintf(&b, "plaintextblock = %d\n", cfg.PlaintextBlock)
	fmt.Fprintf(&b, "ciphertextblock = %d\n", cfg.CiphertextBlock)
	fmt.Fprintf(&b, "padding = %s\n", cfg.Padding)
	fmt.Fprintf(&b, "paddingbits = %d\n", cfg.PaddingBits)
	fmt.Fprintf(&b, "suffix = %s\n", cfg.Suffix)
	fmt.Fprintf(&b, "nonceseed = %s\n", cfg.NonceSeed)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)

	// The nonce seed is secret material.
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "primebits":
		return parseInt(key, value, &c.PrimeBits)
	case "plaintextblock":
		return parseInt(key, value, &c.PlaintextBlock)
	case "ciphertextblock":
		return parseInt(key, value, &c.CiphertextBlock)
	case "padding":
		c.Padding = value
	case "paddingbits":
		return parseInt(key, value, &c.PaddingBits)
	case "suffix":
		c.Suffix = value
	case "nonceseed":
		c.NonceSeed = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	}
	return nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return strings.ToLower(key), strings.TrimSpace(value), nil
}

func parseInt(key, value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s = %q", ErrInvalidConfigValue, key, value)
	}
	*dst = n
	return nil
}

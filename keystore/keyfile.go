package keystore

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bitfsorg/librabin-go/rabin"
)

// publicKeyFile is the YAML form of a public key. The fingerprint is
// informative on write and verified on read when present.
type publicKeyFile struct {
	Modulus     string `yaml:"modulus"`
	Fingerprint string `yaml:"fingerprint,omitempty"`
}

// secretKeyFile is the YAML form of a secret key: the two primes, decimal.
type secretKeyFile struct {
	P string `yaml:"p"`
	Q string `yaml:"q"`
}

// WritePublicKeyFile writes pk to path as YAML with mode 0644.
func WritePublicKeyFile(path string, pk *rabin.PublicKey) error {
	if pk == nil {
		return fmt.Errorf("%w: public key", ErrNilParam)
	}
	data, err := yaml.Marshal(publicKeyFile{
		Modulus:     pk.N().Text(10),
		Fingerprint: hex.EncodeToString(pk.Fingerprint()),
	})
	if err != nil {
		return fmt.Errorf("keystore: encode public key: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("keystore: write public key: %w", err)
	}
	return nil
}

// ReadPublicKeyFile reads a public key written by WritePublicKeyFile.
func ReadPublicKeyFile(path string) (*rabin.PublicKey, error) {
	var f publicKeyFile
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	n, err := parseDecimal("modulus", f.Modulus)
	if err != nil {
		return nil, err
	}
	pk, err := rabin.NewPublicKey(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyFile, err)
	}
	if f.Fingerprint != "" {
		fp, err := hex.DecodeString(f.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("%w: fingerprint is not hex", ErrInvalidKeyFile)
		}
		if !bytes.Equal(fp, pk.Fingerprint()) {
			return nil, fmt.Errorf("%w: fingerprint does not match modulus", ErrInvalidKeyFile)
		}
	}
	return pk, nil
}

// WriteSecretKeyFile writes sk to path as YAML with mode 0600.
func WriteSecretKeyFile(path string, sk *rabin.SecretKey) error {
	if sk == nil {
		return fmt.Errorf("%w: secret key", ErrNilParam)
	}
	data, err := yaml.Marshal(secretKeyFile{
		P: sk.P().Text(10),
		Q: sk.Q().Text(10),
	})
	if err != nil {
		return fmt.Errorf("keystore: encode secret key: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("keystore: write secret key: %w", err)
	}
	return nil
}

// ReadSecretKeyFile reads a key pair written by WriteSecretKeyFile.
func ReadSecretKeyFile(path string) (*rabin.KeyPair, error) {
	var f secretKeyFile
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	p, err := parseDecimal("p", f.P)
	if err != nil {
		return nil, err
	}
	q, err := parseDecimal("q", f.Q)
	if err != nil {
		return nil, err
	}
	sk, err := rabin.NewSecretKey(p, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyFile, err)
	}
	return &rabin.KeyPair{Secret: sk, Public: sk.Public()}, nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("keystore: read key file: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKeyFile, err)
	}
	return nil
}

func parseDecimal(field, s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidKeyFile, field)
	}
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a decimal integer", ErrInvalidKeyFile, field)
	}
	return x, nil
}

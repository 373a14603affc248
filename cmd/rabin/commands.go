package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"math/big"

	"github.com/bitfsorg/librabin-go/keystore"
	"github.com/bitfsorg/librabin-go/rabin"
)

func cmdKeygen(e *env, args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	var (
		name   = fs.String("name", "", "Key name")
		bits   = fs.Int("bits", e.cfg.PrimeBits, "Bit length of each prime")
		export = fs.String("export", "", "Also write the key to FILE and FILE.pub")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := keystore.ValidateName(*name); err != nil {
		return err
	}

	e.log.Info("generating key", "name", *name, "prime_bits", *bits)
	key, err := rabin.GenerateKey(*bits)
	if err != nil {
		return err
	}

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Put(*name, key); err != nil {
		return err
	}

	if *export != "" {
		if err := keystore.WriteSecretKeyFile(*export, key.Secret); err != nil {
			return err
		}
		if err := keystore.WritePublicKeyFile(*export+".pub", key.Public); err != nil {
			return err
		}
	}

	fp := hex.EncodeToString(key.Public.Fingerprint())
	e.log.Info("key stored", "name", *name, "fingerprint", fp)
	fmt.Fprintf(e.out, "%s %s %d\n", *name, fp, key.Public.BitLen())
	return nil
}

func cmdImport(e *env, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	var (
		name = fs.String("name", "", "Key name")
		file = fs.String("file", "", "Secret key file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := keystore.ReadSecretKeyFile(*file)
	if err != nil {
		return err
	}

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Put(*name, key); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s %s %d\n", *name, hex.EncodeToString(key.Public.Fingerprint()), key.Public.BitLen())
	return nil
}

func cmdList(e *env, args []string) error {
	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return err
	}
	for _, ent := range entries {
		fmt.Fprintf(e.out, "%s %s %d\n", ent.Name, hex.EncodeToString(ent.Fingerprint), ent.Bits)
	}
	return nil
}

func cmdEncrypt(e *env, args []string) error {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	var (
		name = fs.String("key", "", "Stored key name")
		pub  = fs.String("pub", "", "Public key file (instead of -key)")
		in   = fs.String("in", "", "Input file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var pk *rabin.PublicKey
	switch {
	case *pub != "":
		var err error
		if pk, err = keystore.ReadPublicKeyFile(*pub); err != nil {
			return err
		}
	case *name != "":
		key, err := e.loadKey(*name)
		if err != nil {
			return err
		}
		pk = key.Public
	default:
		return errors.New("encrypt: -key or -pub is required")
	}

	c, err := e.cfg.EncryptCodec(pk, nil, e.log)
	if err != nil {
		return err
	}
	outPath, n, err := c.EncryptFile(pk, *in)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s %d\n", outPath, n)
	return nil
}

func cmdDecrypt(e *env, args []string) error {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	var (
		name   = fs.String("key", "", "Stored key name")
		in     = fs.String("in", "", "Input file")
		length = fs.Int64("length", -1, "Original plaintext length, if known")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := e.loadKey(*name)
	if err != nil {
		return err
	}

	c, err := e.cfg.DecryptCodec(e.log)
	if err != nil {
		return err
	}
	var outPath string
	if *length >= 0 {
		outPath, err = c.DecryptFileWithLength(key.Secret, *in, *length)
	} else {
		outPath, err = c.DecryptFile(key.Secret, *in)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, outPath)
	return nil
}

// cmdSelftest encrypts and decrypts random integers under a fresh key.
// Plaintext sizes are drawn from [16, bitlen(n) - 1 - overhead) bits.
func cmdSelftest(e *env, args []string) error {
	fs := flag.NewFlagSet("selftest", flag.ContinueOnError)
	var (
		rounds = fs.Int("rounds", 100, "Number of round trips")
		bits   = fs.Int("bits", e.cfg.PrimeBits, "Bit length of each prime")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	total := *rounds
	if total < 1 {
		return errors.New("selftest: rounds must be positive")
	}

	key, err := rabin.GenerateKey(*bits)
	if err != nil {
		return err
	}
	s, err := e.cfg.Strategy(key.Public, nil)
	if err != nil {
		return err
	}
	cs := rabin.New(s)

	minBits := max(16, e.cfg.PaddingBits)
	maxBits := key.Public.BitLen() - 1 - s.Overhead()
	if maxBits <= minBits {
		return fmt.Errorf("selftest: key of %d bits leaves no room for plaintext", key.Public.BitLen())
	}

	failures := 0
	for i := 0; i < total; i++ {
		m, err := randomBits(minBits, maxBits)
		if err != nil {
			return err
		}
		ct, err := cs.Encrypt(key.Public, m)
		if err != nil {
			return fmt.Errorf("selftest: round %d: %w", i, err)
		}
		got, err := cs.Decrypt(key.Secret, ct)
		switch {
		case err != nil:
			failures++
			e.log.Warn("round failed", "round", i, "bits", m.BitLen(), "error", err)
		case got.Cmp(m) != 0:
			return fmt.Errorf("selftest: round %d: decrypted value differs from plaintext", i)
		}
		if total >= 10 && i%(total/10) == 0 {
			e.log.Debug("selftest progress", "percent", 100*i/total)
		}
	}

	fmt.Fprintf(e.out, "rounds=%d failures=%d\n", total, failures)
	if failures > 0 {
		return fmt.Errorf("selftest: %d of %d rounds failed", failures, total)
	}
	return nil
}

func (e *env) loadKey(name string) (*rabin.KeyPair, error) {
	store, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Get(name)
}

// randomBits returns a random integer whose bit length is drawn uniformly
// from [lo, hi).
func randomBits(lo, hi int) (*big.Int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo)))
	if err != nil {
		return nil, err
	}
	size := lo + int(n.Int64())
	m, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), uint(size-1)))
	if err != nil {
		return nil, err
	}
	return m.SetBit(m, size-1, 1), nil
}

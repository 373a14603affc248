package padding

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helper functions ---

func bin(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 2)
	require.True(t, ok, "invalid binary literal %q", s)
	return v
}

// decoys returns three values that never carry any padding of the tested
// sizes: odd numbers whose low bits alternate.
func decoys() [3]*big.Int {
	return [3]*big.Int{
		new(big.Int).SetUint64(0x5555555555555551),
		new(big.Int).SetUint64(0x2aaaaaaaaaaaaaab),
		new(big.Int).SetUint64(0x1234567890abcde1),
	}
}

func candidatesWith(x *big.Int, pos int) Candidates {
	d := decoys()
	var c Candidates
	j := 0
	for i := range c {
		if i == pos {
			c[i] = x
			continue
		}
		c[i] = d[j]
		j++
	}
	return c
}

// --- AppendBits / CopyBits tests ---

func TestSelfCopy_Pad(t *testing.T) {
	tests := []struct {
		name string
		k    int
		m    string
		want string
	}{
		{"k=4", 4, "101101", "1011011101"},
		{"k equals length", 4, "1001", "10011001"},
		{"k=1", 1, "10", "100"},
		{"k=8", 8, "111100001010", "11110000101000001010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab, err := NewAppendBits(tt.k)
			require.NoError(t, err)
			cb, err := NewCopyBits(tt.k)
			require.NoError(t, err)

			got, err := ab.Pad(bin(t, tt.m))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text(2))

			got, err = cb.Pad(bin(t, tt.m))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text(2))
			assert.Equal(t, tt.k, cb.Overhead())
		})
	}
}

func TestSelfCopy_PadTooShort(t *testing.T) {
	ab, err := NewAppendBits(16)
	require.NoError(t, err)
	cb, err := NewCopyBits(16)
	require.NoError(t, err)

	short := big.NewInt(0x7fff) // 15 bits
	_, err = ab.Pad(short)
	assert.ErrorIs(t, err, ErrPlaintextTooShort)

	err = cb.CheckPlaintext(short)
	assert.ErrorIs(t, err, ErrPlaintextTooShort)
	assert.Contains(t, err.Error(), "plaintext has 15 bits")
	_, err = cb.Pad(short)
	assert.ErrorIs(t, err, ErrPlaintextTooShort)

	_, err = cb.Pad(big.NewInt(0))
	assert.ErrorIs(t, err, ErrPlaintextTooShort)

	assert.NoError(t, cb.CheckPlaintext(big.NewInt(0x8000)))
}

func TestSelfCopy_InvalidInput(t *testing.T) {
	_, err := NewAppendBits(0)
	assert.ErrorIs(t, err, ErrInvalidPaddingSize)
	_, err = NewCopyBits(-3)
	assert.ErrorIs(t, err, ErrInvalidPaddingSize)

	cb, _ := NewCopyBits(4)
	_, err = cb.Pad(nil)
	assert.ErrorIs(t, err, ErrInvalidPlaintext)
	_, err = cb.Pad(big.NewInt(-100))
	assert.ErrorIs(t, err, ErrInvalidPlaintext)
}

func TestSelfCopy_Unpad(t *testing.T) {
	cb, err := NewCopyBits(16)
	require.NoError(t, err)

	m := new(big.Int).SetUint64(0xabcdef0123)
	padded, err := cb.Pad(m)
	require.NoError(t, err)

	for pos := 0; pos < 4; pos++ {
		got, err := cb.Unpad(candidatesWith(padded, pos))
		require.NoError(t, err, "position %d", pos)
		assert.Equal(t, 0, m.Cmp(got))
	}
}

func TestSelfCopy_UnpadNoMatch(t *testing.T) {
	ab, err := NewAppendBits(16)
	require.NoError(t, err)
	d := decoys()

	_, err = ab.Unpad(Candidates{d[0], d[1], d[2], big.NewInt(3)})
	assert.ErrorIs(t, err, ErrDisambiguation)
	assert.Contains(t, err.Error(), "0 of 4")
}

func TestSelfCopy_UnpadAmbiguous(t *testing.T) {
	ab, err := NewAppendBits(8)
	require.NoError(t, err)

	a, _ := ab.Pad(big.NewInt(0x1234))
	b, _ := ab.Pad(big.NewInt(0x5678))
	d := decoys()

	_, err = ab.Unpad(Candidates{a, d[0], b, d[1]})
	assert.ErrorIs(t, err, ErrDisambiguation)
	assert.Contains(t, err.Error(), "2 of 4")
}

func TestSelfCopy_UnpadIgnoresShortCandidates(t *testing.T) {
	cb, err := NewCopyBits(8)
	require.NoError(t, err)

	// 0x0101 repeats its low byte but only has 9 bits; it cannot be the
	// padding of an 8-bit plaintext.
	m := big.NewInt(0xb7)
	padded, _ := cb.Pad(m)
	d := decoys()

	got, err := cb.Unpad(Candidates{big.NewInt(0x0101), d[0], padded, d[1]})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(got))
}

// --- FixedSuffix / Nonce tests ---

func TestSuffix_Pad(t *testing.T) {
	v := bin(t, "1011")
	fs, err := NewFixedSuffix(v)
	require.NoError(t, err)
	ns, err := NewNonce(v)
	require.NoError(t, err)

	for _, s := range []Strategy{fs, ns} {
		got, err := s.Pad(bin(t, "110"))
		require.NoError(t, err)
		assert.Equal(t, "1101011", got.Text(2))

		got, err = s.Pad(big.NewInt(0))
		require.NoError(t, err)
		assert.Equal(t, "1011", got.Text(2))
		assert.Equal(t, 4, s.Overhead())
	}
}

func TestSuffix_InvalidValue(t *testing.T) {
	for _, v := range []*big.Int{nil, big.NewInt(0), big.NewInt(-7)} {
		_, err := NewFixedSuffix(v)
		assert.ErrorIs(t, err, ErrInvalidSuffix)
		_, err = NewNonce(v)
		assert.ErrorIs(t, err, ErrInvalidSuffix)
	}
}

func TestSuffix_Unpad(t *testing.T) {
	v := new(big.Int).SetUint64(0xf00dfeed)
	ns, err := NewNonce(v)
	require.NoError(t, err)

	m := new(big.Int).SetUint64(0x0123456789)
	padded, err := ns.Pad(m)
	require.NoError(t, err)

	for pos := 0; pos < 4; pos++ {
		got, err := ns.Unpad(candidatesWith(padded, pos))
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(got))
	}
}

func TestSuffix_UnpadFailures(t *testing.T) {
	v := new(big.Int).SetUint64(0xf00dfeed)
	fs, err := NewFixedSuffix(v)
	require.NoError(t, err)
	d := decoys()

	_, err = fs.Unpad(Candidates{d[0], d[1], d[2], big.NewInt(1)})
	assert.ErrorIs(t, err, ErrDisambiguation)

	a, _ := fs.Pad(big.NewInt(1))
	b, _ := fs.Pad(big.NewInt(2))
	_, err = fs.Unpad(Candidates{a, b, d[0], d[1]})
	assert.ErrorIs(t, err, ErrDisambiguation)
	assert.Contains(t, err.Error(), "2 of 4")
}

func TestSuffix_StateIsCopy(t *testing.T) {
	v := big.NewInt(0xbeef)
	fs, err := NewFixedSuffix(v)
	require.NoError(t, err)

	v.SetInt64(1)
	st := fs.State()
	assert.Equal(t, int64(0xbeef), st.Int64())
	st.SetInt64(2)
	assert.Equal(t, int64(0xbeef), fs.State().Int64())
}

func TestNewRandomNonce(t *testing.T) {
	for _, bits := range []int{1, 7, 16, 64, 129} {
		n, err := NewRandomNonce(nil, bits)
		require.NoError(t, err)
		assert.Equal(t, bits, n.State().BitLen())
		assert.Equal(t, bits, n.Overhead())
	}

	a, _ := NewRandomNonce(nil, 128)
	b, _ := NewRandomNonce(nil, 128)
	assert.NotEqual(t, 0, a.State().Cmp(b.State()))

	_, err := NewRandomNonce(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidPaddingSize)
}

func TestNewRandomNonce_ReaderFailure(t *testing.T) {
	_, err := NewRandomNonce(errReader{}, 32)
	require.Error(t, err)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

// --- Builder tests ---

func TestBuilders(t *testing.T) {
	v := new(big.Int).SetUint64(0xc0ffee11)

	fs, err := FixedSuffixBuilder{}.Build(v)
	require.NoError(t, err)
	_, ok := fs.(*FixedSuffix)
	assert.True(t, ok)

	ns, err := NonceBuilder{MinBits: 32}.Build(v)
	require.NoError(t, err)
	nonce, ok := ns.(*Nonce)
	require.True(t, ok)
	assert.Equal(t, 0, v.Cmp(nonce.State()))

	_, err = NonceBuilder{MinBits: 64}.Build(v)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = FixedSuffixBuilder{}.Build(big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = NonceBuilder{}.Build(nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStatefulBuilderRoundTrip(t *testing.T) {
	orig, err := NewRandomNonce(nil, 48)
	require.NoError(t, err)

	var s Stateful = orig
	rebuilt, err := s.Builder().Build(s.State())
	require.NoError(t, err)

	m := big.NewInt(987654321)
	a, _ := orig.Pad(m)
	b, _ := rebuilt.Pad(m)
	assert.Equal(t, 0, a.Cmp(b))
}

func TestName(t *testing.T) {
	ab, _ := NewAppendBits(16)
	cb, _ := NewCopyBits(8)
	fs, _ := NewFixedSuffix(big.NewInt(0xffff))
	ns, _ := NewNonce(big.NewInt(0xff))

	assert.Equal(t, "append-bits(16)", Name(ab))
	assert.Equal(t, "copy-bits(8)", Name(cb))
	assert.Equal(t, "fixed-suffix(16 bits)", Name(fs))
	assert.Equal(t, "nonce(8 bits)", Name(ns))
	assert.Equal(t, "none", Name(nil))
}

// --- DeriveNonce tests ---

func TestDeriveNonce(t *testing.T) {
	secret := []byte("stream secret")
	salt := bytes.Repeat([]byte{0x42}, 20)

	a, err := DeriveNonce(secret, salt, 64)
	require.NoError(t, err)
	b, err := DeriveNonce(secret, salt, 64)
	require.NoError(t, err)
	assert.Equal(t, 0, a.State().Cmp(b.State()), "derivation must be deterministic")
	assert.Equal(t, 64, a.State().BitLen())

	c, err := DeriveNonce(secret, []byte("other salt"), 64)
	require.NoError(t, err)
	assert.NotEqual(t, 0, a.State().Cmp(c.State()))

	for _, bits := range []int{1, 13, 255} {
		n, err := DeriveNonce(secret, salt, bits)
		require.NoError(t, err)
		assert.Equal(t, bits, n.State().BitLen())
	}
}

func TestDeriveNonce_InvalidInput(t *testing.T) {
	_, err := DeriveNonce(nil, nil, 64)
	assert.Error(t, err)
	_, err = DeriveNonce([]byte("s"), nil, 0)
	assert.ErrorIs(t, err, ErrInvalidPaddingSize)
}

// --- Fuzz tests ---

func FuzzSelfCopyRoundTrip(f *testing.F) {
	f.Add([]byte{0x80, 0x01}, uint8(16))
	f.Add([]byte{0xff, 0xff, 0xff, 0xff}, uint8(3))
	f.Add([]byte{0x01}, uint8(1))

	f.Fuzz(func(t *testing.T, data []byte, k uint8) {
		bits := int(k%64) + 1
		m := new(big.Int).SetBytes(data)
		cb, err := NewCopyBits(bits)
		require.NoError(t, err)

		padded, err := cb.Pad(m)
		if m.BitLen() < bits {
			require.ErrorIs(t, err, ErrPlaintextTooShort)
			return
		}
		require.NoError(t, err)
		assert.Equal(t, m.BitLen()+bits, padded.BitLen())

		got, err := cb.Unpad(Candidates{padded, nil, nil, nil})
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(got))
	})
}

func FuzzSuffixRoundTrip(f *testing.F) {
	f.Add([]byte{0x00}, uint64(1))
	f.Add([]byte{0xde, 0xad}, uint64(0xbeef))

	f.Fuzz(func(t *testing.T, data []byte, v uint64) {
		if v == 0 {
			return
		}
		m := new(big.Int).SetBytes(data)
		s, err := NewFixedSuffix(new(big.Int).SetUint64(v))
		require.NoError(t, err)

		padded, err := s.Pad(m)
		require.NoError(t, err)
		got, err := s.Unpad(Candidates{nil, padded, nil, nil})
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(got))
	})
}

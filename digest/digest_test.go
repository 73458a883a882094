package digest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-network/kelvin/digest"
)

func TestSumDeterministic(t *testing.T) {
	a := digest.Sum(digest.SHA256, []byte("hello world"))
	b := digest.Sum(digest.SHA256, []byte("hello world"))
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hex(), b.Hex())
}

func TestSumDiffersOnContent(t *testing.T) {
	a := digest.Sum(digest.SHA256, []byte("hello"))
	b := digest.Sum(digest.SHA256, []byte("world"))
	require.False(t, a.Equal(b))
}

func TestDifferentAlgorithmsNeverEqual(t *testing.T) {
	a := digest.Sum(digest.SHA256, []byte("hello"))
	b := digest.Sum(digest.Blake3, []byte("hello"))
	require.False(t, a.Equal(b))
}

func TestHexRoundTrip(t *testing.T) {
	d := digest.Sum(digest.SHA256, []byte("round trip me"))
	parsed, err := digest.FromHex(digest.SHA256, d.Hex())
	require.NoError(t, err)
	require.True(t, d.Equal(parsed))
}

func TestFromHexRejectsWrongSize(t *testing.T) {
	_, err := digest.FromHex(digest.SHA256, "abcd")
	require.Error(t, err)
}

func TestCompareTotalOrder(t *testing.T) {
	a := digest.Sum(digest.SHA256, []byte("a"))
	b := digest.Sum(digest.SHA256, []byte("b"))
	if a.Hex() > b.Hex() {
		a, b = b, a
	}
	require.LessOrEqual(t, a.Compare(b), -1)
	require.GreaterOrEqual(t, b.Compare(a), 1)
	require.Equal(t, 0, a.Compare(a))
}

func TestUninitializedZeroValue(t *testing.T) {
	var d digest.Digest
	require.True(t, d.Uninitialized())

	d2 := digest.Sum(digest.SHA256, []byte("x"))
	require.False(t, d2.Uninitialized())
}

func TestParseAlgorithm(t *testing.T) {
	algo, ok := digest.ParseAlgorithm("sha256")
	require.True(t, ok)
	require.Equal(t, digest.SHA256, algo)

	_, ok = digest.ParseAlgorithm("md5")
	require.False(t, ok)
}

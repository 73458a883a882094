package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/digest"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	s := codec.NewSink(digest.SHA256)
	require.NoError(t, s.WriteUint64(42))
	hello := codec.Bytes("hello")
	require.NoError(t, s.WriteContent(&hello))
	require.NoError(t, s.WriteByte(7))
	data, err := s.Bytes()
	require.NoError(t, err)

	src := codec.NewSource(data)
	n, err := src.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(42), n)

	var b codec.Bytes
	require.NoError(t, src.ReadContent(&b))
	require.Equal(t, codec.Bytes("hello"), b)

	tag, err := src.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(7), tag)
}

func TestOptionalRoundTrip(t *testing.T) {
	s := codec.NewSink(digest.SHA256)
	present := codec.Some[*codec.Bytes](ptr(codec.Bytes("present")))
	require.NoError(t, codec.EncodeOptional(s, present))
	absent := codec.None[*codec.Bytes]()
	require.NoError(t, codec.EncodeOptional(s, absent))
	data, err := s.Bytes()
	require.NoError(t, err)

	src := codec.NewSource(data)
	newBytes := func() *codec.Bytes { return new(codec.Bytes) }

	got, err := codec.DecodeOptional(src, newBytes)
	require.NoError(t, err)
	require.True(t, got.Valid)
	require.Equal(t, codec.Bytes("present"), *got.Value)

	got2, err := codec.DecodeOptional(src, newBytes)
	require.NoError(t, err)
	require.False(t, got2.Valid)
}

func TestSliceRoundTrip(t *testing.T) {
	s := codec.NewSink(digest.SHA256)
	items := codec.Slice[*codec.Uint64]{ptr(codec.Uint64(1)), ptr(codec.Uint64(2)), ptr(codec.Uint64(3))}
	require.NoError(t, codec.EncodeSlice(s, items))
	data, err := s.Bytes()
	require.NoError(t, err)

	src := codec.NewSource(data)
	got, err := codec.DecodeSlice(src, func() *codec.Uint64 { return new(codec.Uint64) })
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, codec.Uint64(2), *got[1])
}

func TestDigestRoundTrip(t *testing.T) {
	s := codec.NewSink(digest.SHA256)
	d := digest.Sum(digest.SHA256, []byte("payload"))
	require.NoError(t, s.WriteDigest(d))
	data, err := s.Bytes()
	require.NoError(t, err)
	require.Len(t, data, digest.SHA256.Size())

	src := codec.NewSource(data)
	got, err := src.ReadDigest(digest.SHA256)
	require.NoError(t, err)
	require.True(t, d.Equal(got))
}

func TestTruncatedStreamIsDecodeError(t *testing.T) {
	src := codec.NewSource([]byte{1, 2, 3})
	_, err := src.ReadUint64()
	require.ErrorIs(t, err, codec.ErrDecode)
}

func ptr[T any](v T) *T { return &v }

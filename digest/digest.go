// Package digest abstracts over the cryptographic hash function used to
// identify content-addressed blobs (spec component C1, "ByteHash").
package digest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// maxSize is the largest digest size produced by any supported Algorithm.
// Digest inlines its hash bytes in a fixed array of this size so that
// constructing and comparing digests does not allocate, the same trick
// used by the teacher's integrity.Digest.
const maxSize = 32

// Digest is the fixed-width identity of a persisted blob. Only the first
// Algorithm.Size() bytes of hash are meaningful; the rest are unspecified
// and must be ignored.
type Digest struct {
	hash [maxSize]byte
	algo Algorithm
}

// Zero is the uninitialized digest. No real blob ever hashes to it.
var Zero Digest

// New builds a Digest from raw hash bytes produced by algo.
func New(algo Algorithm, hash []byte) Digest {
	if len(hash) != algo.Size() {
		panic(fmt.Sprintf("digest: hash length %d does not match %s size %d", len(hash), algo, algo.Size()))
	}
	var d Digest
	d.algo = algo
	copy(d.hash[:], hash)
	return d
}

// Bytes returns the algorithm-sized hash bytes.
func (d Digest) Bytes() []byte {
	return d.hash[:d.algo.Size()]
}

// Algorithm returns the algorithm that produced this digest.
func (d Digest) Algorithm() Algorithm { return d.algo }

// Hex returns the lowercase hex encoding of the digest bytes.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.Bytes())
}

// FromHex parses a hex-encoded digest for the given algorithm.
func FromHex(algo Algorithm, s string) (Digest, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: invalid hex %q: %w", s, err)
	}
	if len(raw) != algo.Size() {
		return Digest{}, fmt.Errorf("digest: hex %q has %d bytes, want %d for %s", s, len(raw), algo.Size(), algo)
	}
	return New(algo, raw), nil
}

// Uninitialized reports whether d is the zero value.
func (d Digest) Uninitialized() bool {
	return d.algo == Algorithm{} && d.hash == [maxSize]byte{}
}

// Equal reports whether two digests denote the same content. Digests of
// different algorithms are never equal, even if their bytes happen to
// coincide.
func (d Digest) Equal(other Digest) bool {
	if d.algo != other.algo {
		return false
	}
	return bytes.Equal(d.Bytes(), other.Bytes())
}

// Compare defines the total byte-lex order over digests required by
// spec.md ("Digests are totally ordered (byte-lex)"). Digests of different
// algorithms are ordered by algorithm name first.
func (d Digest) Compare(other Digest) int {
	if d.algo != other.algo {
		if d.algo.name < other.algo.name {
			return -1
		}
		return 1
	}
	return bytes.Compare(d.Bytes(), other.Bytes())
}

func (d Digest) String() string {
	if d.Uninitialized() {
		return "<empty>"
	}
	return d.algo.String() + ":" + d.Hex()
}

// Algorithm identifies a supported hash function. The zero Algorithm is
// invalid; use one of the predeclared values.
type Algorithm struct{ name string }

func (a Algorithm) String() string { return a.name }

// Size returns the digest width, in bytes, produced by a.
func (a Algorithm) Size() int {
	switch a {
	case SHA256:
		return 32
	case Blake3:
		return 32
	}
	panic("digest: unsupported algorithm " + a.name)
}

// Hasher incrementally consumes bytes and finalizes to a Digest. It mirrors
// hash.Hash but returns this package's Digest type instead of raw bytes.
type Hasher interface {
	Writer
	// Sum finalizes the hash and returns the resulting Digest. The Hasher
	// must not be written to again afterwards.
	Sum() Digest
}

// Writer is the subset of io.Writer a Hasher must support; kept as its own
// interface so Sink (package codec) can accept either a Hasher or a plain
// io.Writer without importing hash.Hash.
type Writer interface {
	Write(p []byte) (int, error)
}

// NewHasher creates a fresh Hasher for the given algorithm.
func (a Algorithm) NewHasher() Hasher {
	switch a {
	case SHA256:
		return &stdHasher{h: newSHA256(), algo: a}
	case Blake3:
		return &stdHasher{h: newBlake3(), algo: a}
	}
	panic("digest: unsupported algorithm " + a.name)
}

type stdHasher struct {
	h    hash.Hash
	algo Algorithm
}

func (s *stdHasher) Write(p []byte) (int, error) { return s.h.Write(p) }

func (s *stdHasher) Sum() Digest {
	return New(s.algo, s.h.Sum(nil))
}

// Sum is a convenience for hashing a single byte slice in one call.
func Sum(algo Algorithm, data []byte) Digest {
	h := algo.NewHasher()
	_, _ = h.Write(data)
	return h.Sum()
}

var (
	// SHA256 is the default algorithm: SIMD-accelerated via
	// github.com/minio/sha256-simd, a drop-in replacement for crypto/sha256
	// that the pack's blockchain-adjacent repos (erigon, HORNET-Storage)
	// pull in for the same reason - hashing many small blobs on a hot path.
	SHA256 = Algorithm{"sha256"}
	// Blake3 is an optional, faster algorithm for deployments that don't
	// need SHA-2 interoperability, backed by lukechampine.com/blake3.
	Blake3 = Algorithm{"blake3"}

	// KnownAlgorithms lists every Algorithm this package can construct a
	// Hasher for, used by the config layer to validate user input.
	KnownAlgorithms = []Algorithm{SHA256, Blake3}
)

// ParseAlgorithm parses a case-insensitive algorithm name as used in
// configuration files and directory-layout path segments.
func ParseAlgorithm(name string) (Algorithm, bool) {
	for _, a := range KnownAlgorithms {
		if strings.EqualFold(a.name, name) {
			return a, true
		}
	}
	return Algorithm{}, false
}

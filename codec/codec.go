// Package codec implements the streaming encode/decode contract shared by
// every persistable value (spec components C3 "Sink/Source" and C4
// "Content"). A Sink hashes bytes as it writes them and finalizes to the
// digest of what was written; a Source reads the inverse primitives back
// out of a blob fetched by digest.
package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dusk-network/kelvin/digest"
)

// ErrDecode is returned when a Source encounters an unexpected tag or a
// truncated stream (spec.md §7, "Decode").
var ErrDecode = errors.New("codec: malformed encoding")

// Content is implemented by every value that can be persisted: primitives
// the substrate provides out of the box, and user-defined Compounds and
// annotations.
type Content interface {
	Encode(*Sink) error
	Decode(*Source) error
}

// Sink accumulates the byte-encoding of one node and hashes it as it goes.
// It is finalized exactly once, yielding the digest under which the bytes
// are (or will be) stored.
//
// The assemble-then-hand-over discipline mirrors the teacher's
// service/cas/disk.go staging-file pattern: bytes are assembled in memory
// first and only handed to the Store as one unit (the Store's backend does
// the staging and rename; Finalize itself only returns the digest).
type Sink struct {
	buf    *bufio.Writer
	raw    *sinkBuffer
	hasher digest.Hasher
	algo   digest.Algorithm
	err    error
}

type sinkBuffer struct {
	data []byte
}

func (b *sinkBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// NewSink creates a Sink that hashes with algo.
func NewSink(algo digest.Algorithm) *Sink {
	raw := &sinkBuffer{}
	hasher := algo.NewHasher()
	mw := io.MultiWriter(raw, hasher)
	return &Sink{
		buf:    bufio.NewWriter(mw),
		raw:    raw,
		hasher: hasher,
		algo:   algo,
	}
}

func (s *Sink) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first error encountered by any write, if any.
func (s *Sink) Err() error { return s.err }

// WriteByte writes a single tag byte (spec.md §6: the Handle tag byte).
func (s *Sink) WriteByte(b byte) error {
	if s.err != nil {
		return s.err
	}
	if err := s.buf.WriteByte(b); err != nil {
		s.fail(err)
	}
	return s.err
}

// WriteUint64 writes n as a fixed 8-byte little-endian integer (spec.md §6).
func (s *Sink) WriteUint64(n uint64) error {
	if s.err != nil {
		return s.err
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], n)
	if _, err := s.buf.Write(tmp[:]); err != nil {
		s.fail(err)
	}
	return s.err
}

// WriteBytes writes a length-prefixed byte slice: a u64 count followed by
// the raw bytes (spec.md §6).
func (s *Sink) WriteBytes(p []byte) error {
	if err := s.WriteUint64(uint64(len(p))); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	if _, err := s.buf.Write(p); err != nil {
		s.fail(err)
	}
	return s.err
}

// WriteString writes a string using the same length-prefixed encoding as
// WriteBytes.
func (s *Sink) WriteString(str string) error {
	return s.WriteBytes([]byte(str))
}

// WriteDigest writes a fixed-width digest's raw bytes (spec.md §6: "Digest
// bytes are written raw").
func (s *Sink) WriteDigest(d digest.Digest) error {
	if s.err != nil {
		return s.err
	}
	if _, err := s.buf.Write(d.Bytes()); err != nil {
		s.fail(err)
	}
	return s.err
}

// WriteContent encodes v into the sink.
func (s *Sink) WriteContent(v Content) error {
	if s.err != nil {
		return s.err
	}
	if err := v.Encode(s); err != nil {
		s.fail(err)
	}
	return s.err
}

// Bytes flushes and returns the accumulated encoding without finalizing
// the digest. Used by callers (store.Store) that need both the digest and
// the raw bytes to hand to a Backend.
func (s *Sink) Bytes() ([]byte, error) {
	if err := s.buf.Flush(); err != nil {
		s.fail(err)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.raw.data, nil
}

// Finalize flushes any buffered bytes and returns the digest of everything
// written so far. The Sink must not be written to again.
func (s *Sink) Finalize() (digest.Digest, error) {
	if err := s.buf.Flush(); err != nil {
		s.fail(err)
	}
	if s.err != nil {
		return digest.Digest{}, s.err
	}
	return s.hasher.Sum(), nil
}

// Source reads the inverse primitives back out of one decoded blob.
type Source struct {
	r   *bufio.Reader
	err error
}

// NewSource wraps raw bytes fetched from a Store for one blob.
func NewSource(data []byte) *Source {
	return &Source{r: bufio.NewReader(newByteReader(data))}
}

func newByteReader(data []byte) io.Reader {
	return &sliceReader{data: data}
}

type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func (s *Source) fail(err error) {
	if s.err == nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: %v", ErrDecode, err)
		}
		s.err = err
	}
}

// Err returns the first error encountered by any read, if any.
func (s *Source) Err() error { return s.err }

// ReadByte reads a single tag byte.
func (s *Source) ReadByte() (byte, error) {
	if s.err != nil {
		return 0, s.err
	}
	b, err := s.r.ReadByte()
	if err != nil {
		s.fail(err)
		return 0, s.err
	}
	return b, nil
}

// ReadUint64 reads a fixed 8-byte little-endian integer.
func (s *Source) ReadUint64() (uint64, error) {
	if s.err != nil {
		return 0, s.err
	}
	var tmp [8]byte
	if _, err := io.ReadFull(s.r, tmp[:]); err != nil {
		s.fail(err)
		return 0, s.err
	}
	return binary.LittleEndian.Uint64(tmp[:]), nil
}

// ReadBytes reads a length-prefixed byte slice.
func (s *Source) ReadBytes() ([]byte, error) {
	n, err := s.ReadUint64()
	if err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		s.fail(err)
		return nil, s.err
	}
	return buf, nil
}

// ReadString reads a length-prefixed string.
func (s *Source) ReadString() (string, error) {
	b, err := s.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadDigest reads algo.Size() raw bytes into a Digest.
func (s *Source) ReadDigest(algo digest.Algorithm) (digest.Digest, error) {
	if s.err != nil {
		return digest.Digest{}, s.err
	}
	buf := make([]byte, algo.Size())
	if _, err := io.ReadFull(s.r, buf); err != nil {
		s.fail(err)
		return digest.Digest{}, s.err
	}
	return digest.New(algo, buf), nil
}

// ReadContent decodes into v.
func (s *Source) ReadContent(v Content) error {
	if s.err != nil {
		return s.err
	}
	if err := v.Decode(s); err != nil {
		s.fail(err)
	}
	return s.err
}

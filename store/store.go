// Package store implements the content-addressed blob repository backed by
// a directory on disk (spec component C2, "Store"). It owns an in-memory
// read cache, writes blobs through a Backend, and exposes the small root-pointer
// protocol Root (package kelvin) builds on.
//
// The on-disk layout follows spec.md §6 exactly:
//
//	<root>/data/<first-byte-hex>/<full-digest-hex>   one file per blob
//	<root>/roots/<name>                              one file per named root
//	<root>/tmp/                                       staging area for atomic renames
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/digest"
	"github.com/dusk-network/kelvin/internal/logging"
)

// Sentinel errors surfaced by the core, per spec.md §7.
var (
	ErrNotFound = errors.New("store: digest not found")
	ErrCorrupt  = errors.New("store: blob does not re-hash to its digest")
)

// Backend is the capability a Store delegates actual blob storage to. The
// default is diskBackend; package store/remote provides an alternative
// that proxies to a remote CAS. Keeping this as a small interface (rather
// than a trait hierarchy) follows spec.md §9's design note to prefer
// composition over deep inheritance.
type Backend interface {
	// Put writes bytes under digest, already computed by the caller. It is
	// a no-op if the blob already exists (natural deduplication, spec.md §4.2).
	Put(d digest.Digest, data []byte) error
	// Get returns the raw bytes stored under d, or ErrNotFound.
	Get(d digest.Digest) ([]byte, error)
	// Has reports whether d is present without reading its bytes.
	Has(d digest.Digest) (bool, error)
}

// Store is the content-addressed blob repository. It is safe for
// concurrent readers; writers are not serialized by the Store itself
// (diskBackend uses atomic rename, so concurrent Puts of the same digest
// race harmlessly onto the same final path).
type Store struct {
	backend Backend
	algo    digest.Algorithm
	rootDir string

	cache  *readCache
	single singleflight.Group
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithBackend overrides the default on-disk Backend, e.g. with
// store/remote.Backend.
func WithBackend(b Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithCacheBytes bounds the in-memory read cache by total blob size.
func WithCacheBytes(n int64) Option {
	return func(s *Store) { s.cache = newReadCache(n) }
}

// Open creates or opens a Store rooted at dir, using algo to verify blob
// integrity on read. dir and its roots/ subdirectory are created if they
// don't exist yet; data/ and tmp/ are created too unless WithBackend
// replaces the default disk backend.
func Open(dir string, algo digest.Algorithm, opts ...Option) (*Store, error) {
	s := &Store{
		algo:    algo,
		rootDir: dir,
		cache:   newReadCache(64 << 20), // 64 MiB default, matching the teacher's conservative default cache size
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		disk, err := newDiskBackend(dir, algo)
		if err != nil {
			return nil, err
		}
		s.backend = disk
	}
	if err := os.MkdirAll(filepath.Join(dir, "roots"), 0o755); err != nil {
		return nil, err
	}
	return s, nil
}

// Algorithm returns the digest algorithm this Store hashes with.
func (s *Store) Algorithm() digest.Algorithm { return s.algo }

// Put hashes data and writes it to the backend, returning its digest.
// Idempotent: writing the same bytes twice is a no-op the second time.
func (s *Store) Put(data []byte) (digest.Digest, error) {
	d := digest.Sum(s.algo, data)
	if err := s.backend.Put(d, data); err != nil {
		return digest.Digest{}, err
	}
	s.cache.put(d, data)
	return d, nil
}

// PutSink finalizes sink (a node's Handle-sequence encoding, assembled by
// kelvin.Persist's post-order walk) and writes it using the digest the Sink
// already computed while streaming, rather than re-hashing the assembled
// bytes a second time.
func (s *Store) PutSink(sink *codec.Sink) (digest.Digest, error) {
	data, err := sink.Bytes()
	if err != nil {
		return digest.Digest{}, err
	}
	d, err := sink.Finalize()
	if err != nil {
		return digest.Digest{}, err
	}
	if err := s.backend.Put(d, data); err != nil {
		return digest.Digest{}, err
	}
	s.cache.put(d, data)
	return d, nil
}

// Get returns the bytes for d, preferring the in-memory cache. Concurrent
// Gets of the same digest are deduplicated via singleflight so a cache
// stampede on a hot subtree root only costs one disk read.
func (s *Store) Get(d digest.Digest) ([]byte, error) {
	if data, ok := s.cache.get(d); ok {
		return data, nil
	}
	v, err, _ := s.single.Do(d.Hex(), func() (any, error) {
		data, err := s.backend.Get(d)
		if err != nil {
			return nil, err
		}
		if !digest.Sum(s.algo, data).Equal(d) {
			return nil, fmt.Errorf("%w: %s", ErrCorrupt, d)
		}
		s.cache.put(d, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Has reports whether d is present, without populating the cache.
func (s *Store) Has(d digest.Digest) (bool, error) {
	if _, ok := s.cache.get(d); ok {
		return true, nil
	}
	return s.backend.Has(d)
}

// InsertRoot atomically replaces the pointer file for name with d
// (spec.md §4.2, §4.9). The write-temp-then-rename discipline mirrors the
// teacher's blobFinalizer in service/cas/disk.go.
func (s *Store) InsertRoot(name string, d digest.Digest) error {
	dir := filepath.Join(s.rootDir, "roots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(d.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpPath)
		return err
	}
	logging.Debugf("store: root %q now points to %s", name, d)
	return nil
}

// GetRoot reads the pointer file for name, returning (digest, true), or
// (zero, false) if no such root has ever been set.
func (s *Store) GetRoot(name string) (digest.Digest, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.rootDir, "roots", name))
	if errors.Is(err, os.ErrNotExist) {
		return digest.Digest{}, false, nil
	}
	if err != nil {
		return digest.Digest{}, false, err
	}
	if len(data) != s.algo.Size() {
		return digest.Digest{}, false, fmt.Errorf("store: root %q has %d bytes, want %d", name, len(data), s.algo.Size())
	}
	return digest.New(s.algo, data), true, nil
}

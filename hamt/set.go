package hamt

import (
	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/compound"
	"github.com/dusk-network/kelvin/digest"
	"github.com/dusk-network/kelvin/store"
)

// Set is a persistent set built directly on Map, storing struct{} values.
// It demonstrates that a second canonical Compound doesn't need its own
// node type: the Entry[K, struct{}] leaf shape is enough.
type Set[K comparable, A annotate.Associative[A]] struct {
	m *Map[K, struct{}, A]
}

// NewSet constructs an empty Set. encodeKey/decodeKey (de)serialize K; the
// struct{} value needs no wire representation.
func NewSet[K comparable, A annotate.Associative[A]](
	st *store.Store,
	algo digest.Algorithm,
	derive func(K) A,
	encodeKey func(*codec.Sink, K) error,
	decodeKey func(*codec.Source) (K, error),
	encodeAnnotation func(*codec.Sink, A) error,
	decodeAnnotation func(*codec.Source) (A, error),
	hashFn func(K) uint64,
) *Set[K, A] {
	scheme := compound.Scheme[Entry[K, struct{}], A]{
		Algorithm: algo,
		Derive:    func(e Entry[K, struct{}]) A { return derive(e.Key) },
		EncodeLeaf: func(s *codec.Sink, e Entry[K, struct{}]) error {
			return encodeKey(s, e.Key)
		},
		DecodeLeaf: func(src *codec.Source) (Entry[K, struct{}], error) {
			k, err := decodeKey(src)
			return Entry[K, struct{}]{Key: k}, err
		},
		EncodeAnnotation: encodeAnnotation,
		DecodeAnnotation: decodeAnnotation,
	}
	return &Set[K, A]{m: NewMap[K, struct{}, A](st, scheme, hashFn)}
}

// Add inserts key, reporting nothing about whether it was already present
// (Set, unlike Map, has no associated value whose prior version matters).
func (s *Set[K, A]) Add(key K) error { return s.m.Insert(key, struct{}{}) }

// Remove deletes key, reporting whether it was present.
func (s *Set[K, A]) Remove(key K) (bool, error) { return s.m.Remove(key) }

// Contains reports whether key is in the set.
func (s *Set[K, A]) Contains(key K) (bool, error) {
	_, ok, err := s.m.Get(key)
	return ok, err
}

// Len returns the number of elements in the set.
func (s *Set[K, A]) Len() int { return s.m.Len() }

// Iter returns every key in the set's traversal order.
func (s *Set[K, A]) Iter() ([]K, error) {
	entries, err := s.m.Iter()
	if err != nil {
		return nil, err
	}
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys, nil
}

// Persist writes the set's full trie to its Store.
func (s *Set[K, A]) Persist() (digest.Digest, A, error) { return s.m.Persist() }

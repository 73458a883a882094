package hamt

import (
	"errors"
	"fmt"

	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/compound"
	"github.com/dusk-network/kelvin/cursor"
	"github.com/dusk-network/kelvin/digest"
	"github.com/dusk-network/kelvin/kelvin"
	"github.com/dusk-network/kelvin/store"
)

// ErrMaxDepthExceeded is returned (in practice, never, outside of a
// pathological or adversarial hash function) when two distinct keys
// collide across every bit of their hash.
var ErrMaxDepthExceeded = errors.New("hamt: hash collision exceeds maximum trie depth")

// Map is a persistent key/value hash array mapped trie. It is safe to use
// concurrently for reads; like the rest of the substrate, mutation is
// single-writer (spec.md §5).
type Map[K comparable, V any, A annotate.Associative[A]] struct {
	root    *node[K, V, A]
	scheme  compound.Scheme[Entry[K, V], A]
	hashFn  func(K) uint64
	store   *store.Store
	newNode func() compound.Compound[Entry[K, V], A]
	count   int
}

// NewMap constructs an empty Map. scheme must encode/decode Entry[K,V] and
// derive A from it; hashFn distributes K across the trie's 32-way levels
// and need not be cryptographic, only well-distributed (spec.md's design
// notes pass such behavior as an explicit capability rather than requiring
// K to implement a Hash trait, which Go cannot express for arbitrary
// comparable types without reflection).
func NewMap[K comparable, V any, A annotate.Associative[A]](
	st *store.Store,
	scheme compound.Scheme[Entry[K, V], A],
	hashFn func(K) uint64,
) *Map[K, V, A] {
	return &Map[K, V, A]{
		root:   newNode[K, V, A](),
		scheme: scheme,
		hashFn: hashFn,
		store:  st,
		newNode: func() compound.Compound[Entry[K, V], A] {
			return newNode[K, V, A]()
		},
	}
}

// LoadMap restores a Map previously written by Persist, from its digest.
func LoadMap[K comparable, V any, A annotate.Associative[A]](
	st *store.Store,
	scheme compound.Scheme[Entry[K, V], A],
	hashFn func(K) uint64,
	d digest.Digest,
) (*Map[K, V, A], error) {
	m := NewMap[K, V, A](st, scheme, hashFn)
	restored, err := kelvin.Restore[Entry[K, V], A](st, d, scheme, m.newNode)
	if err != nil {
		return nil, fmt.Errorf("hamt: load: %w", err)
	}
	m.root = restored.(*node[K, V, A])
	anno := compound.Fold[Entry[K, V], A](m.root, scheme)
	m.count = cardinalityHint(anno)
	return m, nil
}

// cardinalityHint recovers a usable Len() after LoadMap when A happens to
// be annotate.Cardinality; for any other annotation type it returns -1,
// since the substrate does not require A to carry a count at all.
func cardinalityHint[A any](anno A) int {
	if c, ok := any(anno).(annotate.Cardinality); ok {
		return int(c)
	}
	return -1
}

// Len returns the number of entries currently in the map. After LoadMap
// with a non-Cardinality annotation scheme, this returns -1; call Iter and
// count its result instead.
func (m *Map[K, V, A]) Len() int { return m.count }

// Get looks up key, materializing any Persisted subtree it must cross.
func (m *Map[K, V, A]) Get(key K) (V, bool, error) {
	var zero V
	h := m.hashFn(key)
	n := compound.Compound[Entry[K, V], A](m.root)
	level := 0
	for {
		slot := slotAt(h, level)
		handle := n.Children()[slot]
		switch handle.Kind() {
		case compound.KindEmpty:
			return zero, false, nil
		case compound.KindLeaf:
			e, _ := handle.Leaf()
			if e.Key == key {
				return e.Val, true, nil
			}
			return zero, false, nil
		case compound.KindOwned:
			owned, _ := handle.Owned()
			n = owned
			level++
		case compound.KindPersisted:
			d, _ := handle.Digest()
			restored, err := kelvin.Restore[Entry[K, V], A](m.store, d, m.scheme, m.newNode)
			if err != nil {
				return zero, false, err
			}
			n = restored
			level++
		}
	}
}

// Insert adds or overwrites key/val, cloning every node on the affected
// path so earlier Snapshots keep observing the tree as it was (spec.md
// property 6).
func (m *Map[K, V, A]) Insert(key K, val V) error {
	h := m.hashFn(key)
	added := false
	newRoot, err := m.insert(m.root, h, 0, key, val, &added)
	if err != nil {
		return err
	}
	m.root = newRoot
	if added {
		m.count++
	}
	return nil
}

func (m *Map[K, V, A]) insert(n *node[K, V, A], hash uint64, level int, key K, val V, added *bool) (*node[K, V, A], error) {
	if level > maxLevel {
		return nil, ErrMaxDepthExceeded
	}
	clone := n.Clone().(*node[K, V, A])
	slot := slotAt(hash, level)
	handle := clone.children[slot]

	switch handle.Kind() {
	case compound.KindEmpty:
		clone.children[slot] = compound.Leaf[Entry[K, V], A](Entry[K, V]{Key: key, Val: val})
		*added = true

	case compound.KindLeaf:
		existing, _ := handle.Leaf()
		if existing.Key == key {
			clone.children[slot] = compound.Leaf[Entry[K, V], A](Entry[K, V]{Key: key, Val: val})
			break
		}
		// Collision: push both the existing and new entry one level
		// deeper into a fresh sub-node, reusing insert so any further
		// collision at that level splits again automatically.
		sub := newNode[K, V, A]()
		existingHash := m.hashFn(existing.Key)
		sub, err := m.insert(sub, existingHash, level+1, existing.Key, existing.Val, new(bool))
		if err != nil {
			return nil, err
		}
		sub, err = m.insert(sub, hash, level+1, key, val, added)
		if err != nil {
			return nil, err
		}
		clone.children[slot] = compound.Owned[Entry[K, V], A](sub)

	case compound.KindOwned:
		owned, _ := handle.Owned()
		sub, err := m.insert(owned.(*node[K, V, A]), hash, level+1, key, val, added)
		if err != nil {
			return nil, err
		}
		clone.children[slot] = compound.Owned[Entry[K, V], A](sub)

	case compound.KindPersisted:
		d, _ := handle.Digest()
		restored, err := kelvin.Restore[Entry[K, V], A](m.store, d, m.scheme, m.newNode)
		if err != nil {
			return nil, err
		}
		sub, err := m.insert(restored.(*node[K, V, A]), hash, level+1, key, val, added)
		if err != nil {
			return nil, err
		}
		clone.children[slot] = compound.Owned[Entry[K, V], A](sub)
	}
	return clone, nil
}

// Remove deletes key if present, reporting whether it was found.
func (m *Map[K, V, A]) Remove(key K) (bool, error) {
	h := m.hashFn(key)
	removed := false
	newRoot, err := m.remove(m.root, h, 0, key, &removed)
	if err != nil {
		return false, err
	}
	m.root = newRoot
	if removed {
		m.count--
	}
	return removed, nil
}

func (m *Map[K, V, A]) remove(n *node[K, V, A], hash uint64, level int, key K, removed *bool) (*node[K, V, A], error) {
	clone := n.Clone().(*node[K, V, A])
	slot := slotAt(hash, level)
	handle := clone.children[slot]

	switch handle.Kind() {
	case compound.KindEmpty:
		// Nothing here; not found.
	case compound.KindLeaf:
		existing, _ := handle.Leaf()
		if existing.Key == key {
			clone.children[slot] = compound.Empty[Entry[K, V], A]()
			*removed = true
		}
	case compound.KindOwned:
		owned, _ := handle.Owned()
		sub, err := m.remove(owned.(*node[K, V, A]), hash, level+1, key, removed)
		if err != nil {
			return nil, err
		}
		clone.children[slot] = compound.Owned[Entry[K, V], A](sub)
		if _, ok := cursor.First[Entry[K, V], A]().Select(sub.Children()); !ok {
			clone.children[slot] = compound.Empty[Entry[K, V], A]()
		}
	case compound.KindPersisted:
		d, _ := handle.Digest()
		restored, err := kelvin.Restore[Entry[K, V], A](m.store, d, m.scheme, m.newNode)
		if err != nil {
			return nil, err
		}
		sub, err := m.remove(restored.(*node[K, V, A]), hash, level+1, key, removed)
		if err != nil {
			return nil, err
		}
		clone.children[slot] = compound.Owned[Entry[K, V], A](sub)
		if _, ok := cursor.First[Entry[K, V], A]().Select(sub.Children()); !ok {
			clone.children[slot] = compound.Empty[Entry[K, V], A]()
		}
	}
	return clone, nil
}

// Iter returns every entry in the map's traversal order, descending
// through any Persisted subtree as needed.
func (m *Map[K, V, A]) Iter() ([]Entry[K, V], error) {
	br, err := cursor.New[Entry[K, V], A](m.store, m.root, m.scheme, m.newNode, cursor.First[Entry[K, V], A]())
	if errors.Is(err, cursor.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Entry[K, V]
	leaf, _ := br.Leaf()
	out = append(out, leaf)
	for {
		ok, err := br.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		leaf, _ := br.Leaf()
		out = append(out, leaf)
	}
	return out, nil
}

// Persist writes the map's full trie to its Store and returns the
// resulting Snapshot digest and subtree annotation.
func (m *Map[K, V, A]) Persist() (digest.Digest, A, error) {
	d, anno, err := kelvin.Persist[Entry[K, V], A](m.store, m.root, m.scheme)
	if err != nil {
		var zero A
		return digest.Digest{}, zero, fmt.Errorf("hamt: persist: %w", err)
	}
	return d, anno, nil
}

// Package cursor implements the search-and-traversal engine (spec
// component C8): a Method describes where to go at each level of a tree,
// Branch is a read-only cursor built by repeatedly applying a Method, and
// BranchMut is the copy-on-write variant that lets a caller mutate a leaf
// in place without disturbing any other Handle aliasing the same subtree.
package cursor

import (
	"errors"

	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/compound"
	"github.com/dusk-network/kelvin/store"
)

// ErrNotFound is returned when a Method never selects a leaf during
// descent from the root.
var ErrNotFound = errors.New("cursor: no matching leaf")

// Method decides, given one node's children, which slot to descend into
// next. Select inspects Kind and Annotation only; it must never mutate.
// The same Method is re-applied at every level during descent, so a
// Method encodes a search criterion (leftmost, by key, by predicate over
// an annotation), not a fixed path.
type Method[L any, A annotate.Associative[A]] interface {
	Select(children []compound.Handle[L, A]) (slot int, ok bool)
}

type firstMethod[L any, A annotate.Associative[A]] struct{}

// First selects the leftmost non-empty slot at every level, the Method
// used to reach the tree's first leaf in traversal order.
func First[L any, A annotate.Associative[A]]() Method[L, A] {
	return firstMethod[L, A]{}
}

func (firstMethod[L, A]) Select(children []compound.Handle[L, A]) (int, bool) {
	for i := range children {
		if children[i].Kind() != compound.KindEmpty {
			return i, true
		}
	}
	return 0, false
}

type successorMethod[L any, A annotate.Associative[A]] struct{ after int }

// Successor selects the leftmost non-empty slot strictly after index
// after, used by Branch.Next to advance one step at the frame being
// revisited.
func Successor[L any, A annotate.Associative[A]](after int) Method[L, A] {
	return successorMethod[L, A]{after: after}
}

func (m successorMethod[L, A]) Select(children []compound.Handle[L, A]) (int, bool) {
	for i := m.after + 1; i < len(children); i++ {
		if children[i].Kind() != compound.KindEmpty {
			return i, true
		}
	}
	return 0, false
}

type frame[L any, A annotate.Associative[A]] struct {
	node compound.Compound[L, A]
	slot int
}

// materializer holds what both Branch and BranchMut need to lazily fetch
// and decode a Persisted handle's subtree.
type materializer[L any, A annotate.Associative[A]] struct {
	store   *store.Store
	scheme  compound.Scheme[L, A]
	newNode func() compound.Compound[L, A]
}

func (m materializer[L, A]) materialize(h compound.Handle[L, A]) (compound.Compound[L, A], error) {
	d, _ := h.Digest()
	data, err := m.store.Get(d)
	if err != nil {
		return nil, err
	}
	return compound.DecodeNode[L, A](codec.NewSource(data), m.newNode, m.scheme)
}

// Branch is a read-only cursor over a tree, pinned at the leaf a Method
// selected. Descending through a Persisted handle fetches and decodes its
// subtree on demand (spec.md §4.8, "lazy materialization").
type Branch[L any, A annotate.Associative[A]] struct {
	materializer[L, A]
	frames  []frame[L, A]
	leaf    L
	hasLeaf bool
}

// New builds a Branch by applying method at every level starting from
// root. newNode constructs a fresh, empty node of the concrete Compound
// type used by this tree, needed to decode any Persisted handle crossed
// along the way.
func New[L any, A annotate.Associative[A]](
	st *store.Store,
	root compound.Compound[L, A],
	scheme compound.Scheme[L, A],
	newNode func() compound.Compound[L, A],
	method Method[L, A],
) (*Branch[L, A], error) {
	b := &Branch[L, A]{materializer: materializer[L, A]{store: st, scheme: scheme, newNode: newNode}}
	if err := b.descend(root, method); err != nil {
		return nil, err
	}
	if !b.hasLeaf {
		return nil, ErrNotFound
	}
	return b, nil
}

func (b *Branch[L, A]) descend(node compound.Compound[L, A], method Method[L, A]) error {
	for {
		children := node.Children()
		slot, ok := method.Select(children)
		if !ok {
			return nil
		}
		b.frames = append(b.frames, frame[L, A]{node: node, slot: slot})
		h := children[slot]
		switch h.Kind() {
		case compound.KindLeaf:
			leaf, _ := h.Leaf()
			b.leaf = leaf
			b.hasLeaf = true
			return nil
		case compound.KindEmpty:
			return nil
		case compound.KindPersisted:
			child, err := b.materialize(h)
			if err != nil {
				return err
			}
			node = child
		case compound.KindOwned:
			owned, _ := h.Owned()
			node = owned
		}
	}
}

// Leaf returns the leaf value the cursor currently targets.
func (b *Branch[L, A]) Leaf() (L, bool) { return b.leaf, b.hasLeaf }

// Next advances to the next leaf in traversal order: it pops frames until
// one has an unvisited successor slot, then descends with First below it
// (spec.md §4.8).
func (b *Branch[L, A]) Next() (bool, error) {
	for len(b.frames) > 0 {
		top := &b.frames[len(b.frames)-1]
		children := top.node.Children()
		slot, ok := Successor[L, A](top.slot).Select(children)
		if !ok {
			b.frames = b.frames[:len(b.frames)-1]
			continue
		}
		top.slot = slot
		h := children[slot]
		if h.Kind() == compound.KindLeaf {
			leaf, _ := h.Leaf()
			b.leaf = leaf
			b.hasLeaf = true
			return true, nil
		}
		var node compound.Compound[L, A]
		var err error
		if h.Kind() == compound.KindPersisted {
			node, err = b.materialize(h)
		} else {
			node, _ = h.Owned()
		}
		if err != nil {
			return false, err
		}
		b.hasLeaf = false
		if err := b.descend(node, First[L, A]()); err != nil {
			return false, err
		}
		if b.hasLeaf {
			return true, nil
		}
	}
	b.hasLeaf = false
	return false, nil
}

// BranchMut is the mutable counterpart of Branch. Every node on its spine
// is a private clone, made via Compound.Clone before descending into it,
// so mutating through a BranchMut never alters a node still reachable from
// another Handle or Branch (spec.md §4.8, property 6).
type BranchMut[L any, A annotate.Associative[A]] struct {
	materializer[L, A]
	root    compound.Compound[L, A]
	frames  []frame[L, A]
	leaf    L
	hasLeaf bool
}

// NewMut clones root and applies method at every level, cloning each node
// it descends into before recursing. The returned cursor is built even if
// method finds no leaf: when method selects an Empty slot, that slot is the
// cursor's position and becomes the attachment point for Insert-style
// callers via SetLeaf. When method selects nothing at some level
// (ok=false), no frame is added for it, so the position stays at the last
// slot selected above; if nothing is selected at the root, the cursor has
// no position and SetLeaf and Remove panic.
func NewMut[L any, A annotate.Associative[A]](
	st *store.Store,
	root compound.Compound[L, A],
	scheme compound.Scheme[L, A],
	newNode func() compound.Compound[L, A],
	method Method[L, A],
) (*BranchMut[L, A], error) {
	b := &BranchMut[L, A]{materializer: materializer[L, A]{store: st, scheme: scheme, newNode: newNode}}
	clone := root.Clone()
	b.root = clone
	if err := b.descend(clone, method); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BranchMut[L, A]) descend(node compound.Compound[L, A], method Method[L, A]) error {
	for {
		children := node.Children()
		slot, ok := method.Select(children)
		if !ok {
			return nil
		}
		b.frames = append(b.frames, frame[L, A]{node: node, slot: slot})
		h := children[slot]
		switch h.Kind() {
		case compound.KindLeaf:
			leaf, _ := h.Leaf()
			b.leaf = leaf
			b.hasLeaf = true
			return nil
		case compound.KindEmpty:
			return nil
		case compound.KindPersisted:
			restored, err := b.materialize(h)
			if err != nil {
				return err
			}
			clone := restored.Clone()
			node.SetChild(slot, compound.Owned[L, A](clone))
			node = clone
		case compound.KindOwned:
			owned, _ := h.Owned()
			clone := owned.Clone()
			node.SetChild(slot, compound.Owned[L, A](clone))
			node = clone
		}
	}
}

// Leaf returns the leaf value at the cursor's current position, if any.
func (b *BranchMut[L, A]) Leaf() (L, bool) { return b.leaf, b.hasLeaf }

// SetLeaf writes v at the cursor's current position, whether that slot was
// previously Empty (an insert) or already held a leaf (an update).
func (b *BranchMut[L, A]) SetLeaf(v L) {
	top := &b.frames[len(b.frames)-1]
	top.node.SetChild(top.slot, compound.Leaf[L, A](v))
	b.leaf = v
	b.hasLeaf = true
}

// Remove clears the cursor's current position back to Empty.
func (b *BranchMut[L, A]) Remove() {
	top := &b.frames[len(b.frames)-1]
	top.node.SetChild(top.slot, compound.Empty[L, A]())
	var zero L
	b.leaf = zero
	b.hasLeaf = false
}

// Release returns the (possibly newly cloned) root node reflecting every
// mutation made through this cursor. The caller is responsible for
// re-embedding it — typically as a fresh compound.Owned handle — into
// whatever structure referenced the original root.
func (b *BranchMut[L, A]) Release() compound.Compound[L, A] {
	return b.root
}

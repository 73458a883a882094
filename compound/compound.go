package compound

import (
	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
)

// Compound is the contract every internal node type must satisfy to
// participate in the substrate (spec.md §4.6, component C6). It exposes
// its children as a fixed- or variable-length sequence of Handles and
// (de)serializes whatever node-local state it keeps beyond that sequence
// (e.g. a B-tree node's separator keys; hamt's node keeps none).
//
// Concrete implementations are expected to use pointer receivers, since
// SetChild and DecodeLocal mutate node state in place (mirroring how the
// teacher's manifest types are always handled by pointer).
type Compound[L any, A annotate.Associative[A]] interface {
	// Children returns this node's child handles in encode/search order.
	// Implementations must return a slice view, not a copy, so that
	// SetChild's mutations are visible to callers holding an earlier
	// Children() result only if they also hold the node itself; cursor
	// code re-fetches Children() after every SetChild rather than caching
	// the slice across a mutation.
	Children() []Handle[L, A]
	// SetChild replaces the handle at slot i.
	SetChild(i int, h Handle[L, A])
	// Arity returns the fixed number of child slots, or 0 if the node's
	// child count varies and must be decoded with a length prefix.
	Arity() int
	// EncodeLocal writes node-local fields that aren't part of the child
	// handle sequence (spec.md §4.6: "local fields, then its Handle
	// sequence"). A node with no local state beyond its children is free
	// to make this a no-op.
	EncodeLocal(*codec.Sink) error
	// DecodeLocal reads back what EncodeLocal wrote, populating the
	// receiver in place.
	DecodeLocal(*codec.Source) error
	// Clone returns a node holding an independent copy of local state and
	// the child-handle slice (but not a deep copy of owned subtrees —
	// aliased Owned/Persisted handles are safe to share until the next
	// mutation clones them too). This backs BranchMut's copy-on-write
	// discipline (spec.md §4.8, property 6: mutating a Branch must never
	// alter a Handle still referenced by another snapshot).
	Clone() Compound[L, A]
}

// EncodeNode writes c's full on-disk representation: its local fields
// followed by its handle sequence (spec.md §4.6/§6). Every handle in
// Children() must already be Empty, Leaf, or Persisted — persist must run
// first (kelvin.Persist replaces Owned handles before calling this).
func EncodeNode[L any, A annotate.Associative[A]](s *codec.Sink, c Compound[L, A], scheme Scheme[L, A]) error {
	if err := c.EncodeLocal(s); err != nil {
		return err
	}
	children := c.Children()
	if c.Arity() == 0 {
		if err := s.WriteUint64(uint64(len(children))); err != nil {
			return err
		}
	}
	for _, h := range children {
		if err := EncodeHandle(s, h, scheme); err != nil {
			return err
		}
	}
	return nil
}

// DecodeNode reads back a node written by EncodeNode into a fresh instance
// produced by newNode.
func DecodeNode[L any, A annotate.Associative[A]](src *codec.Source, newNode func() Compound[L, A], scheme Scheme[L, A]) (Compound[L, A], error) {
	node := newNode()
	if err := node.DecodeLocal(src); err != nil {
		return nil, err
	}
	n := node.Arity()
	if n == 0 {
		count, err := src.ReadUint64()
		if err != nil {
			return nil, err
		}
		n = int(count)
	}
	for i := 0; i < n; i++ {
		h, err := DecodeHandle(src, scheme)
		if err != nil {
			return nil, err
		}
		node.SetChild(i, h)
	}
	return node, nil
}

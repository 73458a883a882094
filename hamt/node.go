// Package hamt provides a 32-way hash array mapped trie, the canonical
// Compound implementation this toolkit ships out of the box (spec.md's
// open question on HAMT fan-out is resolved in SPEC_FULL.md by fixing
// fanout at 32, i.e. 5 residual bits consumed per level). Map and Set are
// built entirely on package compound/cursor/kelvin's public surface — they
// have no special access to the substrate.
package hamt

import (
	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/compound"
)

const (
	// fanout is the number of child slots per node: 2^bitsPerLevel.
	fanout = 32
	// bitsPerLevel is how many bits of a key's hash each level consumes.
	bitsPerLevel = 5
	slotMask     = fanout - 1
	// maxLevel bounds recursion depth against a genuine 64-bit hash
	// collision between two distinct keys (astronomically unlikely with a
	// well-distributed hash, but shifting a uint64 by >= 64 wraps to 0 in
	// Go rather than erroring, which would otherwise spin forever).
	maxLevel = 13
)

// Entry is one key/value pair stored at a HAMT leaf. Key and Val are
// exported so callers can write their own EncodeLeaf/DecodeLeaf for
// compound.Scheme without needing hamt to know how to serialize arbitrary
// K/V types itself.
type Entry[K comparable, V any] struct {
	Key K
	Val V
}

// node is the HAMT's Compound implementation: a dense array of fanout
// child slots, addressed by 5 bits of a key's hash per level. It carries
// no local state beyond its children (an unoccupied slot is represented by
// compound.KindEmpty, so there is no separate occupancy bitmap to persist)
// — see DESIGN.md for why this trades the classic bitmap-compressed
// encoding for a simpler, uniform fixed-arity Compound implementation.
type node[K comparable, V any, A annotate.Associative[A]] struct {
	children [fanout]compound.Handle[Entry[K, V], A]
}

func newNode[K comparable, V any, A annotate.Associative[A]]() *node[K, V, A] {
	return &node[K, V, A]{}
}

func (n *node[K, V, A]) Children() []compound.Handle[Entry[K, V], A] {
	return n.children[:]
}

func (n *node[K, V, A]) SetChild(i int, h compound.Handle[Entry[K, V], A]) {
	n.children[i] = h
}

func (n *node[K, V, A]) Arity() int { return fanout }

func (n *node[K, V, A]) EncodeLocal(*codec.Sink) error { return nil }

func (n *node[K, V, A]) DecodeLocal(*codec.Source) error { return nil }

func (n *node[K, V, A]) Clone() compound.Compound[Entry[K, V], A] {
	clone := *n
	return &clone
}

func slotAt(hash uint64, level int) int {
	if level >= maxLevel {
		return 0
	}
	return int((hash >> uint(level*bitsPerLevel)) & slotMask)
}

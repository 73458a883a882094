// Package kelvin implements the persist/restore orchestration and the
// durable named-root pointer (spec component C9). It is the toolkit's
// top-level package: it ties together compound, codec, and store without
// introducing any new on-disk format of its own.
package kelvin

import (
	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/compound"
	"github.com/dusk-network/kelvin/digest"
	"github.com/dusk-network/kelvin/store"
)

// Persist performs the post-order walk spec.md §4.9 describes: every
// reachable Owned handle is recursively persisted first and replaced with
// a Persisted handle carrying the child's digest and annotation, then node
// itself is encoded and written. After Persist returns, every handle
// reachable from node is Empty, Leaf, or Persisted — invariant 3.
func Persist[L any, A annotate.Associative[A]](
	st *store.Store,
	node compound.Compound[L, A],
	scheme compound.Scheme[L, A],
) (digest.Digest, A, error) {
	children := node.Children()
	for i := range children {
		h := children[i]
		if h.Kind() != compound.KindOwned {
			continue
		}
		owned, _ := h.Owned()
		childDigest, childAnno, err := Persist(st, owned, scheme)
		if err != nil {
			var zero A
			return digest.Digest{}, zero, err
		}
		node.SetChild(i, compound.Persisted[L, A](childDigest, childAnno))
	}

	sink := codec.NewSink(scheme.Algorithm)
	if err := compound.EncodeNode[L, A](sink, node, scheme); err != nil {
		var zero A
		return digest.Digest{}, zero, err
	}
	d, err := st.PutSink(sink)
	if err != nil {
		var zero A
		return digest.Digest{}, zero, err
	}
	return d, compound.Fold[L, A](node, scheme), nil
}

// Restore fetches the blob stored under d and decodes it into a fresh node
// produced by newNode, reversing exactly one level of Persist (the node's
// own children remain Persisted/Leaf/Empty until something descends
// through them — restore does not recursively materialize a whole
// subtree, matching spec.md §4.9's "lazy" restore).
func Restore[L any, A annotate.Associative[A]](
	st *store.Store,
	d digest.Digest,
	scheme compound.Scheme[L, A],
	newNode func() compound.Compound[L, A],
) (compound.Compound[L, A], error) {
	data, err := st.Get(d)
	if err != nil {
		return nil, err
	}
	return compound.DecodeNode[L, A](codec.NewSource(data), newNode, scheme)
}

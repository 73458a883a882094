package compound

import (
	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/digest"
)

// Scheme bundles the capabilities a concrete tree instantiation must supply
// so the substrate (Handle, Compound, cursor, kelvin) can stay generic over
// leaf and annotation types without reflection. This is the Go rendering of
// spec.md §9's design note: "prefer passing behavior as explicit capability
// objects at construction over implicit trait resolution" — Rust's kelvin
// leans on trait bounds the compiler resolves; Go generics can't express
// "construct a fresh A" or "decode into this interface value" the same way,
// so the constructor functions travel alongside the type parameters instead.
type Scheme[L any, A annotate.Associative[A]] struct {
	// Algorithm is the digest algorithm Persisted handles are encoded
	// against; it must match the Store the tree is persisted into.
	Algorithm digest.Algorithm

	// Derive computes a leaf's annotation (spec.md §4.7, Annotation::derive).
	Derive func(leaf L) A

	// EncodeLeaf and DecodeLeaf (de)serialize a leaf value. Leaves are
	// user-defined and need not implement codec.Content themselves — see
	// codec's Optional/Pair/Slice for why a pointer-receiver Decode method
	// can't be satisfied generically without an explicit factory.
	EncodeLeaf func(*codec.Sink, L) error
	DecodeLeaf func(*codec.Source) (L, error)

	// EncodeAnnotation and DecodeAnnotation (de)serialize the annotation
	// stored alongside a Persisted handle, so a Branch can prune a subtree
	// using only its annotation, without fetching the subtree's bytes
	// (spec.md §4.5, "Persisted carries enough information to search without
	// fetching the referenced bytes").
	EncodeAnnotation func(*codec.Sink, A) error
	DecodeAnnotation func(*codec.Source) (A, error)
}

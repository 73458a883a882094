package compound

import (
	"errors"

	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/digest"
)

// Kind discriminates a Handle's variant (spec.md §4.4).
type Kind uint8

const (
	// KindEmpty is the absent child: "there is nothing here" rather than
	// "there is a value that happens to be zero."
	KindEmpty Kind = iota
	// KindLeaf holds a value directly, inline.
	KindLeaf
	// KindOwned holds an in-memory, not-yet-persisted subtree. spec.md §9's
	// design note collapses the original design's separate Shared variant
	// into Owned: Go's garbage collector makes a distinct refcounted-alias
	// variant unnecessary, and BranchMut achieves the same copy-on-write
	// behavior by cloning whichever Compound it's about to mutate.
	KindOwned
	// KindPersisted references a subtree already written to a Store by
	// digest, carrying its annotation alongside so callers can prune a
	// search without fetching it.
	KindPersisted
)

// Handle is the substrate's sole mechanism for addressing a subtree
// (spec.md §4.4, component C5). It is a tagged union over four variants;
// Go has no enum/union syntax, so this mirrors the teacher's pattern for
// small closed tagged unions (integrity.Digest's algorithm tag) rather than
// reaching for an interface, which would let external packages add
// non-exhaustive "variants" the substrate can't reason about.
type Handle[L any, A annotate.Associative[A]] struct {
	kind Kind

	leaf  L
	owned Compound[L, A]

	persistedDigest digest.Digest

	// annotation memoizes the result of Annotation(): nil until first
	// forced, then cached for the handle's lifetime (spec.md §4.4,
	// "Annotation computation is memoized after first access").
	annotation *A
}

// Empty constructs the absent-child Handle.
func Empty[L any, A annotate.Associative[A]]() Handle[L, A] {
	return Handle[L, A]{kind: KindEmpty}
}

// Leaf constructs a Handle holding v directly.
func Leaf[L any, A annotate.Associative[A]](v L) Handle[L, A] {
	return Handle[L, A]{kind: KindLeaf, leaf: v}
}

// Owned constructs a Handle over an in-memory subtree not yet persisted.
func Owned[L any, A annotate.Associative[A]](c Compound[L, A]) Handle[L, A] {
	return Handle[L, A]{kind: KindOwned, owned: c}
}

// Persisted constructs a Handle referencing a subtree already written under
// d, with its annotation already known (no fetch required to read it).
func Persisted[L any, A annotate.Associative[A]](d digest.Digest, a A) Handle[L, A] {
	anno := a
	return Handle[L, A]{kind: KindPersisted, persistedDigest: d, annotation: &anno}
}

// Kind reports which variant h holds.
func (h Handle[L, A]) Kind() Kind { return h.kind }

// Leaf returns the inline value and true, or the zero value and false if h
// is not KindLeaf.
func (h Handle[L, A]) Leaf() (L, bool) {
	if h.kind != KindLeaf {
		var zero L
		return zero, false
	}
	return h.leaf, true
}

// Owned returns the in-memory subtree and true, or nil and false if h is
// not KindOwned.
func (h Handle[L, A]) Owned() (Compound[L, A], bool) {
	if h.kind != KindOwned {
		return nil, false
	}
	return h.owned, true
}

// Digest returns the referenced subtree's digest and true, or the zero
// digest and false if h is not KindPersisted.
func (h Handle[L, A]) Digest() (digest.Digest, bool) {
	if h.kind != KindPersisted {
		return digest.Digest{}, false
	}
	return h.persistedDigest, true
}

// ErrOwnedHandle is returned by EncodeHandle when asked to encode a
// KindOwned handle: spec.md invariant 3 requires every reachable handle be
// Empty/Leaf/Persisted once a subtree has been persisted, so reaching this
// means persist was skipped or the caller is encoding before persisting.
var ErrOwnedHandle = errors.New("compound: cannot encode an Owned handle; call kelvin.Persist first")

// Annotation returns h's annotation, deriving and caching it on first call
// (spec.md §4.4, §4.7). Empty contributes the zero value of A, which every
// concrete annotation type is expected to define as its fold identity.
func (h *Handle[L, A]) Annotation(scheme Scheme[L, A]) A {
	if h.annotation != nil {
		return *h.annotation
	}
	var result A
	switch h.kind {
	case KindEmpty:
		var zero A
		result = zero
	case KindLeaf:
		result = scheme.Derive(h.leaf)
	case KindOwned:
		result = Fold(h.owned, scheme)
	case KindPersisted:
		// Persisted always sets annotation at construction; reaching here
		// means a Persisted Handle was built without one, which is a bug
		// in the caller, not a runtime condition to recover from.
		panic("compound: Persisted handle missing its annotation")
	}
	h.annotation = &result
	return result
}

// Fold derives c's subtree annotation by folding its children's annotations
// left to right (spec.md §4.7, property 4's "declared association
// direction"). Empty children do not contribute a term.
func Fold[L any, A annotate.Associative[A]](c Compound[L, A], scheme Scheme[L, A]) A {
	children := c.Children()
	terms := make([]A, 0, len(children))
	for i := range children {
		if children[i].Kind() == KindEmpty {
			continue
		}
		terms = append(terms, children[i].Annotation(scheme))
	}
	return annotate.Fold(terms)
}

// EncodeHandle writes h's tag byte followed by its variant payload
// (spec.md §4.4/§6).
func EncodeHandle[L any, A annotate.Associative[A]](s *codec.Sink, h Handle[L, A], scheme Scheme[L, A]) error {
	switch h.kind {
	case KindEmpty:
		return s.WriteByte(0)
	case KindLeaf:
		if err := s.WriteByte(1); err != nil {
			return err
		}
		return scheme.EncodeLeaf(s, h.leaf)
	case KindPersisted:
		if err := s.WriteByte(2); err != nil {
			return err
		}
		if err := s.WriteDigest(h.persistedDigest); err != nil {
			return err
		}
		return scheme.EncodeAnnotation(s, *h.annotation)
	case KindOwned:
		return ErrOwnedHandle
	default:
		return ErrOwnedHandle
	}
}

// DecodeHandle reads back a Handle written by EncodeHandle. A decoded
// handle is always Empty, Leaf, or Persisted — never Owned, matching
// invariant 3.
func DecodeHandle[L any, A annotate.Associative[A]](src *codec.Source, scheme Scheme[L, A]) (Handle[L, A], error) {
	tag, err := src.ReadByte()
	if err != nil {
		return Handle[L, A]{}, err
	}
	switch tag {
	case 0:
		return Empty[L, A](), nil
	case 1:
		leaf, err := scheme.DecodeLeaf(src)
		if err != nil {
			return Handle[L, A]{}, err
		}
		return Leaf[L, A](leaf), nil
	case 2:
		d, err := src.ReadDigest(scheme.Algorithm)
		if err != nil {
			return Handle[L, A]{}, err
		}
		anno, err := scheme.DecodeAnnotation(src)
		if err != nil {
			return Handle[L, A]{}, err
		}
		return Persisted[L, A](d, anno), nil
	default:
		return Handle[L, A]{}, codec.ErrDecode
	}
}

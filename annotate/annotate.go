// Package annotate implements the associative annotation algebra (spec
// component C7): a fold that derives a subtree-level summary from leaves
// and propagates it through Handles.
package annotate

// Associative is an associative combine operation over A. Implementations
// must satisfy (a.Combine(b)).Combine(c) == a.Combine(b.Combine(c)) for all
// a, b, c — spec.md §3 requires associativity but explicitly does not
// require, and the substrate must not assume, commutativity.
type Associative[A any] interface {
	Combine(other A) A
}

// Fold reduces a sequence of annotations left-to-right using Combine,
// matching the "declared association direction" spec.md §8's property 4
// requires tests to check. The zero value of A is returned for an empty
// sequence, representing the fold's identity (spec.md §3: "Identity...MAY
// be represented by Option<A>"; this module uses the zero value rather
// than a wrapper type, so annotation types should define a zero value that
// behaves as an identity wherever that's meaningful, e.g. Cardinality's
// zero is 0).
func Fold[A Associative[A]](values []A) A {
	var acc A
	if len(values) == 0 {
		return acc
	}
	acc = values[0]
	for _, v := range values[1:] {
		acc = acc.Combine(v)
	}
	return acc
}

package annotate

// Tuple2 combines two independent annotations componentwise, so a single
// subtree can be searched by either dimension without walking it twice
// (spec.md §4.7 calls out componentwise combinators as the idiomatic way to
// compose annotations rather than writing a new bespoke type per pair).
type Tuple2[A Associative[A], B Associative[B]] struct {
	First  A
	Second B
}

// Combine combines each component independently.
func (t Tuple2[A, B]) Combine(other Tuple2[A, B]) Tuple2[A, B] {
	return Tuple2[A, B]{
		First:  t.First.Combine(other.First),
		Second: t.Second.Combine(other.Second),
	}
}

package annotate

import "github.com/dusk-network/kelvin/digest"

// Checksum folds a subtree into a single digest independent of its shape:
// two subtrees with the same leaves combined in the same order produce the
// same Checksum even if their internal branching differs, which is useful
// for comparing trees built with different arities (spec.md §4.7 names
// checksumming as a canonical annotation use case alongside Cardinality).
type Checksum struct {
	Algo  digest.Algorithm
	Value digest.Digest
}

// LeafChecksum derives a Checksum annotation from a leaf's encoded bytes.
func LeafChecksum(algo digest.Algorithm, leafBytes []byte) Checksum {
	return Checksum{Algo: algo, Value: digest.Sum(algo, leafBytes)}
}

// Combine re-hashes the concatenation of both digests. The zero Checksum
// (Value's zero digest, Algo unset) only arises from Fold's empty-sequence
// case; Combine with a genuinely empty side should not occur in practice
// since Fold skips Empty handles, but is handled defensively by returning
// the non-zero side.
func (c Checksum) Combine(other Checksum) Checksum {
	if c.Algo.String() == "" {
		return other
	}
	if other.Algo.String() == "" {
		return c
	}
	buf := make([]byte, 0, 2*c.Algo.Size())
	buf = append(buf, c.Value.Bytes()...)
	buf = append(buf, other.Value.Bytes()...)
	return Checksum{Algo: c.Algo, Value: digest.Sum(c.Algo, buf)}
}

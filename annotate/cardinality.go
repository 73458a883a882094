package annotate

import "github.com/dusk-network/kelvin/codec"

// Cardinality counts leaves in a subtree (spec.md §4.7's canonical example
// annotation). Its identity is the zero value, matching Fold's empty-slice
// behavior.
type Cardinality uint64

// Combine adds two subtree counts.
func (c Cardinality) Combine(other Cardinality) Cardinality { return c + other }

// Encode writes c as a fixed 8-byte integer.
func (c Cardinality) Encode(s *codec.Sink) error { return s.WriteUint64(uint64(c)) }

// Decode reads back a Cardinality written by Encode.
func (c *Cardinality) Decode(src *codec.Source) error {
	n, err := src.ReadUint64()
	if err != nil {
		return err
	}
	*c = Cardinality(n)
	return nil
}

// DecodeCardinality is the free-function counterpart used wherever a
// Scheme needs a factory-less decode (Cardinality's Decode is safe to call
// on a zero value directly, since it holds no pointers, but this keeps the
// call site uniform with annotations that do).
func DecodeCardinality(src *codec.Source) (Cardinality, error) {
	var c Cardinality
	err := c.Decode(src)
	return c, err
}

// EncodeCardinality mirrors DecodeCardinality for symmetry at call sites
// that pass function values rather than methods.
func EncodeCardinality(s *codec.Sink, c Cardinality) error { return c.Encode(s) }

package compound_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/compound"
	"github.com/dusk-network/kelvin/digest"
)

// pairNode is a minimal fixed-arity-2 Compound used to exercise the
// substrate independent of any concrete tree (HAMT, etc). It has no
// node-local state beyond its two children.
type pairNode struct {
	children [2]compound.Handle[string, annotate.Cardinality]
}

func (p *pairNode) Children() []compound.Handle[string, annotate.Cardinality] {
	return p.children[:]
}

func (p *pairNode) SetChild(i int, h compound.Handle[string, annotate.Cardinality]) {
	p.children[i] = h
}

func (p *pairNode) Arity() int { return 2 }

func (p *pairNode) EncodeLocal(*codec.Sink) error { return nil }

func (p *pairNode) DecodeLocal(*codec.Source) error { return nil }

func (p *pairNode) Clone() compound.Compound[string, annotate.Cardinality] {
	clone := *p
	return &clone
}

func testScheme() compound.Scheme[string, annotate.Cardinality] {
	return compound.Scheme[string, annotate.Cardinality]{
		Algorithm: digest.SHA256,
		Derive:    func(string) annotate.Cardinality { return 1 },
		EncodeLeaf: func(s *codec.Sink, v string) error {
			return s.WriteString(v)
		},
		DecodeLeaf: func(src *codec.Source) (string, error) {
			return src.ReadString()
		},
		EncodeAnnotation: annotate.EncodeCardinality,
		DecodeAnnotation: annotate.DecodeCardinality,
	}
}

func TestHandleAnnotationMemoizesDerive(t *testing.T) {
	scheme := testScheme()
	h := compound.Leaf[string, annotate.Cardinality]("x")

	got := h.Annotation(scheme)
	require.Equal(t, annotate.Cardinality(1), got)
	// A second call must return the same cached value even if Derive would
	// now disagree, proving memoization rather than re-derivation.
	scheme.Derive = func(string) annotate.Cardinality { return 99 }
	require.Equal(t, annotate.Cardinality(1), h.Annotation(scheme))
}

func TestFoldSkipsEmptyChildren(t *testing.T) {
	scheme := testScheme()
	node := &pairNode{}
	node.SetChild(0, compound.Leaf[string, annotate.Cardinality]("a"))
	node.SetChild(1, compound.Empty[string, annotate.Cardinality]())

	got := compound.Fold[string, annotate.Cardinality](node, scheme)
	require.Equal(t, annotate.Cardinality(1), got)
}

func TestEncodeDecodeNodeRoundTrip(t *testing.T) {
	scheme := testScheme()
	node := &pairNode{}
	node.SetChild(0, compound.Leaf[string, annotate.Cardinality]("left"))
	node.SetChild(1, compound.Persisted[string, annotate.Cardinality](
		digest.Sum(digest.SHA256, []byte("right-subtree")), annotate.Cardinality(3)))

	sink := codec.NewSink(digest.SHA256)
	require.NoError(t, compound.EncodeNode[string, annotate.Cardinality](sink, node, scheme))
	data, err := sink.Bytes()
	require.NoError(t, err)

	decoded, err := compound.DecodeNode[string, annotate.Cardinality](
		codec.NewSource(data),
		func() compound.Compound[string, annotate.Cardinality] { return &pairNode{} },
		scheme,
	)
	require.NoError(t, err)

	children := decoded.Children()
	leaf, ok := children[0].Leaf()
	require.True(t, ok)
	require.Equal(t, "left", leaf)

	d, ok := children[1].Digest()
	require.True(t, ok)
	require.True(t, d.Equal(digest.Sum(digest.SHA256, []byte("right-subtree"))))
	require.Equal(t, annotate.Cardinality(3), children[1].Annotation(scheme))
}

func TestEncodeOwnedHandleFails(t *testing.T) {
	scheme := testScheme()
	owned := compound.Owned[string, annotate.Cardinality](&pairNode{})
	sink := codec.NewSink(digest.SHA256)
	err := compound.EncodeHandle[string, annotate.Cardinality](sink, owned, scheme)
	require.ErrorIs(t, err, compound.ErrOwnedHandle)
}

func TestCloneIsIndependent(t *testing.T) {
	node := &pairNode{}
	node.SetChild(0, compound.Leaf[string, annotate.Cardinality]("original"))

	clone := node.Clone()
	clone.SetChild(0, compound.Leaf[string, annotate.Cardinality]("mutated"))

	leaf, _ := node.Children()[0].Leaf()
	require.Equal(t, "original", leaf, "mutating the clone must not affect the source node")
}

package kelvin_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/codec"
	"github.com/dusk-network/kelvin/compound"
	"github.com/dusk-network/kelvin/digest"
	"github.com/dusk-network/kelvin/kelvin"
	"github.com/dusk-network/kelvin/store"
)

// fourNode is the same fixed-arity-4 fixture used across the substrate's
// package tests, redeclared here to keep kelvin's tests independent of any
// concrete tree package.
type fourNode struct {
	children [4]compound.Handle[string, annotate.Cardinality]
}

func newFourNode() compound.Compound[string, annotate.Cardinality] { return &fourNode{} }

func (n *fourNode) Children() []compound.Handle[string, annotate.Cardinality] { return n.children[:] }

func (n *fourNode) SetChild(i int, h compound.Handle[string, annotate.Cardinality]) {
	n.children[i] = h
}

func (n *fourNode) Arity() int { return 4 }

func (n *fourNode) EncodeLocal(*codec.Sink) error { return nil }

func (n *fourNode) DecodeLocal(*codec.Source) error { return nil }

func (n *fourNode) Clone() compound.Compound[string, annotate.Cardinality] {
	clone := *n
	return &clone
}

func testScheme() compound.Scheme[string, annotate.Cardinality] {
	return compound.Scheme[string, annotate.Cardinality]{
		Algorithm:        digest.SHA256,
		Derive:           func(string) annotate.Cardinality { return 1 },
		EncodeLeaf:       func(s *codec.Sink, v string) error { return s.WriteString(v) },
		DecodeLeaf:       func(src *codec.Source) (string, error) { return src.ReadString() },
		EncodeAnnotation: annotate.EncodeCardinality,
		DecodeAnnotation: annotate.DecodeCardinality,
	}
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), digest.SHA256)
	require.NoError(t, err)
	return s
}

func buildTwoLevelTree() *fourNode {
	leaf := &fourNode{}
	leaf.SetChild(0, compound.Leaf[string, annotate.Cardinality]("deep-a"))
	leaf.SetChild(1, compound.Leaf[string, annotate.Cardinality]("deep-b"))

	root := &fourNode{}
	root.SetChild(0, compound.Owned[string, annotate.Cardinality](leaf))
	root.SetChild(2, compound.Leaf[string, annotate.Cardinality]("shallow"))
	return root
}

func TestPersistReplacesOwnedWithPersisted(t *testing.T) {
	scheme := testScheme()
	st := openTestStore(t)
	root := buildTwoLevelTree()

	d, anno, err := kelvin.Persist[string, annotate.Cardinality](st, root, scheme)
	require.NoError(t, err)
	require.Equal(t, annotate.Cardinality(3), anno)
	require.False(t, d.Uninitialized())

	// Invariant 3: no Owned handle remains reachable after Persist.
	require.Equal(t, compound.KindPersisted, root.Children()[0].Kind())
	require.Equal(t, compound.KindLeaf, root.Children()[2].Kind())
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	scheme := testScheme()
	st := openTestStore(t)
	root := buildTwoLevelTree()

	d, _, err := kelvin.Persist[string, annotate.Cardinality](st, root, scheme)
	require.NoError(t, err)

	restored, err := kelvin.Restore[string, annotate.Cardinality](st, d, scheme, newFourNode)
	require.NoError(t, err)

	leaf, ok := restored.Children()[2].Leaf()
	require.True(t, ok)
	require.Equal(t, "shallow", leaf)

	childDigest, ok := restored.Children()[0].Digest()
	require.True(t, ok, "the nested subtree should be Persisted, not re-inlined")

	nested, err := kelvin.Restore[string, annotate.Cardinality](st, childDigest, scheme, newFourNode)
	require.NoError(t, err)
	deepLeaf, ok := nested.Children()[0].Leaf()
	require.True(t, ok)
	require.Equal(t, "deep-a", deepLeaf)
}

func TestRootSetAndCurrent(t *testing.T) {
	scheme := testScheme()
	st := openTestStore(t)
	root := kelvin.OpenRoot[string, annotate.Cardinality](st, "main", scheme, newFourNode)

	_, found, err := root.Current()
	require.NoError(t, err)
	require.False(t, found)

	snap, err := root.SetRoot(buildTwoLevelTree())
	require.NoError(t, err)
	require.Equal(t, annotate.Cardinality(3), snap.Annotation)

	current, found, err := root.Current()
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, current.Digest.Equal(snap.Digest))
	require.Equal(t, annotate.Cardinality(3), current.Annotation)
}

func TestRootWatchObservesUpdate(t *testing.T) {
	scheme := testScheme()
	st := openTestStore(t)
	writer := kelvin.OpenRoot[string, annotate.Cardinality](st, "watched", scheme, newFourNode)
	reader := kelvin.OpenRoot[string, annotate.Cardinality](st, "watched", scheme, newFourNode)

	updates, stop, err := reader.Watch()
	require.NoError(t, err)
	defer stop()

	snap, err := writer.SetRoot(buildTwoLevelTree())
	require.NoError(t, err)

	select {
	case got := <-updates:
		require.True(t, got.Digest.Equal(snap.Digest))
	case <-timeoutC():
		t.Fatal("timed out waiting for root watch notification")
	}
}

package kelvin

import (
	"github.com/dusk-network/kelvin/annotate"
	"github.com/dusk-network/kelvin/compound"
	"github.com/dusk-network/kelvin/digest"
	"github.com/dusk-network/kelvin/internal/logging"
	"github.com/dusk-network/kelvin/store"
)

// Snapshot is an immutable, durable pointer to a persisted tree: its
// digest and the subtree-wide annotation Persist computed for it, so a
// caller can inspect the tree's summary (e.g. Cardinality) without
// restoring it first (spec.md §4.9).
type Snapshot[L any, A annotate.Associative[A]] struct {
	Digest     digest.Digest
	Annotation A
}

// Root is a named, mutable pointer to the current Snapshot of one tree
// within a Store (spec.md §4.2/§4.9's root-pointer protocol). Multiple
// Roots over the same Store, possibly in different processes, can
// WatchRoot each other's updates.
type Root[L any, A annotate.Associative[A]] struct {
	store   *store.Store
	name    string
	scheme  compound.Scheme[L, A]
	newNode func() compound.Compound[L, A]
}

// OpenRoot binds name within st to the given tree scheme. name need not
// already exist; Current reports found=false until the first SetRoot.
func OpenRoot[L any, A annotate.Associative[A]](
	st *store.Store,
	name string,
	scheme compound.Scheme[L, A],
	newNode func() compound.Compound[L, A],
) *Root[L, A] {
	return &Root[L, A]{store: st, name: name, scheme: scheme, newNode: newNode}
}

// SetRoot persists node and atomically repoints this Root at the result
// (spec.md §4.2: set_root establishes happens-before for any reader that
// subsequently observes the new value).
func (r *Root[L, A]) SetRoot(node compound.Compound[L, A]) (Snapshot[L, A], error) {
	d, anno, err := Persist(r.store, node, r.scheme)
	if err != nil {
		return Snapshot[L, A]{}, err
	}
	if err := r.store.InsertRoot(r.name, d); err != nil {
		return Snapshot[L, A]{}, err
	}
	return Snapshot[L, A]{Digest: d, Annotation: anno}, nil
}

// Current reads this Root's latest Snapshot, restoring its top-level node
// so the returned Snapshot's Annotation reflects the tree as stored.
func (r *Root[L, A]) Current() (Snapshot[L, A], bool, error) {
	d, found, err := r.store.GetRoot(r.name)
	if err != nil || !found {
		return Snapshot[L, A]{}, found, err
	}
	node, err := Restore(r.store, d, r.scheme, r.newNode)
	if err != nil {
		return Snapshot[L, A]{}, false, err
	}
	return Snapshot[L, A]{Digest: d, Annotation: compound.Fold[L, A](node, r.scheme)}, true, nil
}

// Restore reconstructs the top-level node a Snapshot points to.
func (r *Root[L, A]) Restore(snap Snapshot[L, A]) (compound.Compound[L, A], error) {
	return Restore(r.store, snap.Digest, r.scheme, r.newNode)
}

// Watch streams a Snapshot every time another process updates this Root's
// named pointer (built on store.WatchRoot). The caller must invoke the
// returned stop function when done.
func (r *Root[L, A]) Watch() (<-chan Snapshot[L, A], func() error, error) {
	updates, stop, err := r.store.WatchRoot(r.name)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan Snapshot[L, A], 1)
	go func() {
		defer close(out)
		for d := range updates {
			node, err := Restore(r.store, d, r.scheme, r.newNode)
			if err != nil {
				logging.Warningf("kelvin: watch %s: restoring %s: %v", r.name, d, err)
				continue
			}
			out <- Snapshot[L, A]{Digest: d, Annotation: compound.Fold[L, A](node, r.scheme)}
		}
	}()
	return out, stop, nil
}

package enact

import (
	"context"
)

// Ref[T] is a content-addressed handle to a committed value of type T: a
// digest plus an optional cached copy. Two Refs are equal iff their digests
// are equal — RefVal never compares cached content. Packing a Ref yields
// only its digest (see pack.go), which is what keeps the store graph
// acyclic by construction: a value must be committed, and thus digested,
// before it can be embedded in another.
type Ref[T any] struct {
	d      Digest
	typ    TypeID
	cached *T
}

func (r Ref[T]) digest() Digest { return r.d }
func (r Ref[T]) typeID() TypeID { return r.typ }

// Digest returns the ref's content digest.
func (r Ref[T]) Digest() Digest { return r.d }

// IsZero reports whether this is the zero Ref (no digest, no cached value).
func (r Ref[T]) IsZero() bool { return r.d.IsZero() }

// Cached returns the ref's cached value and whether one is present. A
// cache miss is not an error — call Checkout to fetch from the store.
func (r Ref[T]) Cached() (T, bool) {
	if r.cached == nil {
		var zero T
		return zero, false
	}
	return *r.cached, true
}

type storeCtxKey struct{}

// WithStore returns a context carrying store as the ambient current store.
// Nesting is natural: a nested WithStore shadows the outer one for its
// subtree and the outer store reappears once that context is no longer in
// use, the same way any context.Value does.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeCtxKey{}, store)
}

// CurrentStore returns the ambient store from ctx, or ErrNoActiveStore if
// none is set.
func CurrentStore(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(storeCtxKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrNoActiveStore
	}
	return s, nil
}

// Store owns a StorageBackend and provides the commit/checkout/modify
// operations over it. A Store is safe for concurrent use; the backend is
// responsible for its own internal synchronization.
type Store struct {
	backend StorageBackend
}

// NewStore constructs a Store over backend.
func NewStore(backend StorageBackend) *Store {
	return &Store{backend: backend}
}

// Commit packs, hashes, and persists value, returning a Ref to it. Committing
// structurally-equal values (even across separate calls or separate Go
// instances) always yields the same digest.
func Commit[T Resource](s *Store, value T) (Ref[T], error) {
	p, err := packResource(value)
	if err != nil {
		return Ref[T]{}, err
	}
	data, err := encodePacked(p)
	if err != nil {
		return Ref[T]{}, err
	}
	d := defaultDigester.sum(data)
	if err := s.backend.Commit(d, data); err != nil {
		return Ref[T]{}, err
	}
	emitCommit(d, len(data))
	v := value
	return Ref[T]{d: d, typ: value.TypeID(), cached: &v}, nil
}

// Checkout fetches and reconstructs the value behind ref. If ref carries a
// cached copy, Checkout still re-reads from the backend — callers who want
// the cheap path should use ref.Cached() first.
func Checkout[T Resource](s *Store, ref Ref[T]) (T, error) {
	var zero T
	data, err := s.backend.Get(ref.d)
	if err != nil {
		return zero, err
	}
	p, err := decodePacked(data)
	if err != nil {
		return zero, err
	}
	res, err := unpackResource(p)
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		// The stored type-id had no registered reconstructor for T, or
		// resolved to a different Go type; fall back to FromFields using
		// the registry entry for T's own type-id, if one exists.
		fields := fieldMapOf(res)
		rebuilt, ferr := FromFields(ref.typ, fields)
		if ferr != nil {
			return zero, newRegistryError(ref.typ.String(), "checked-out value is not assignable to requested type")
		}
		typed, ok = rebuilt.(T)
		if !ok {
			return zero, newRegistryError(ref.typ.String(), "checked-out value is not assignable to requested type")
		}
	}
	emitCheckout(ref.d, ref.typ.Name)
	return typed, nil
}

// Modify checks out ref, clones it via its Cloner[T] method, applies fn to
// the clone, commits the result, and returns a Ref
// to the new value. The old digest is untouched and remains retrievable —
// Modify never deletes or overwrites a committed object, only rebinds the
// returned Ref to a new one.
func Modify[T interface {
	Resource
	Cloner[T]
}](s *Store, ref Ref[T], fn func(T) T) (Ref[T], error) {
	current, err := Checkout(s, ref)
	if err != nil {
		return Ref[T]{}, err
	}
	clone := current.Clone()
	next := fn(clone)
	return Commit(s, next)
}

// Deepcopy checks out ref and returns an independent in-memory copy (via
// its Cloner[T] method), without touching
// the store. Useful for taking a mutable working copy without committing
// a new digest until the caller decides to.
func Deepcopy[T interface {
	Resource
	Cloner[T]
}](s *Store, ref Ref[T]) (T, error) {
	current, err := Checkout(s, ref)
	if err != nil {
		var zero T
		return zero, err
	}
	return current.Clone(), nil
}

func fieldMapOf(r Resource) map[string]FieldValue {
	names := r.FieldNames()
	values := r.FieldValues()
	m := make(map[string]FieldValue, len(names))
	for i, n := range names {
		m[n] = values[i]
	}
	return m
}

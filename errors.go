package enact

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error kinds.
var (
	// ErrNotFound indicates a digest is absent from a storage backend.
	ErrNotFound = errors.New("not found")

	// ErrPacking indicates a cycle was detected or an unsupported value was
	// encountered while packing a resource for hashing.
	ErrPacking = errors.New("packing error")

	// ErrRegistry indicates a duplicate/conflicting type registration, or an
	// unknown type-id at unpack time.
	ErrRegistry = errors.New("registry error")

	// ErrNoActiveStore indicates a store operation was attempted outside an
	// active store scope.
	ErrNoActiveStore = errors.New("no active store")

	// ErrReplay indicates a divergence between a recorded and a live call
	// during strict replay.
	ErrReplay = errors.New("replay error")

	// ErrIncompleteSubinvocation indicates a child invocation was registered
	// but never finalized before its parent attempted to finish.
	ErrIncompleteSubinvocation = errors.New("incomplete subinvocation")
)

// RegistryError wraps ErrRegistry with the type-id that triggered it and the reason.
type RegistryError struct {
	Err    error  // ErrRegistry
	TypeID string // the type-id text involved
	Reason string // human-readable detail
}

func (e *RegistryError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (type %s)", e.Err.Error(), e.Reason, e.TypeID)
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.TypeID)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// PackingError wraps ErrPacking with the field path that triggered it.
type PackingError struct {
	Err  error  // ErrPacking
	Path string // dotted path to the offending value, when known
}

func (e *PackingError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Path)
	}
	return e.Err.Error()
}

func (e *PackingError) Unwrap() error { return e.Err }

// NotFoundError wraps ErrNotFound with the missing digest.
type NotFoundError struct {
	Err    error // ErrNotFound
	Digest Digest
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Digest.String())
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ReplayError wraps ErrReplay with the divergence context: which node and
// call index disagreed, and what was expected versus observed.
type ReplayError struct {
	Err        error // ErrReplay
	NodePath   string
	ChildIndex int
	Expected   string
	Observed   string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("%s at %s child %d: expected %s, observed %s",
		e.Err.Error(), e.NodePath, e.ChildIndex, e.Expected, e.Observed)
}

func (e *ReplayError) Unwrap() error { return e.Err }

// IncompleteSubinvocationError wraps ErrIncompleteSubinvocation with the
// offending child's position in its parent's children list.
type IncompleteSubinvocationError struct {
	Err        error // ErrIncompleteSubinvocation
	ParentPath string
	ChildIndex int
}

func (e *IncompleteSubinvocationError) Error() string {
	return fmt.Sprintf("%s: %s child %d never finished", e.Err.Error(), e.ParentPath, e.ChildIndex)
}

func (e *IncompleteSubinvocationError) Unwrap() error { return e.Err }

func newRegistryError(typeID, reason string) error {
	return &RegistryError{Err: ErrRegistry, TypeID: typeID, Reason: reason}
}

func newPackingError(path string) error {
	return &PackingError{Err: ErrPacking, Path: path}
}

func newNotFoundError(digest Digest) error {
	return &NotFoundError{Err: ErrNotFound, Digest: digest}
}

func newReplayError(nodePath string, childIndex int, expected, observed string) error {
	return &ReplayError{Err: ErrReplay, NodePath: nodePath, ChildIndex: childIndex, Expected: expected, Observed: observed}
}

func newIncompleteSubinvocationError(parentPath string, childIndex int) error {
	return &IncompleteSubinvocationError{Err: ErrIncompleteSubinvocation, ParentPath: parentPath, ChildIndex: childIndex}
}

package enact

import (
	"encoding/json"
	"reflect"
	"sync"
)

// TypeID identifies a registered resource type. Its canonical text form is a
// JSON object — {"name": "...", "distribution_key": string|null} — which is
// what gets embedded in a packed (res, type-id, fields) tuple and in a
// KindTypeRef FieldValue. DistributionKey is nil for types that don't
// participate in sharding/partitioning.
type TypeID struct {
	Name            string  `json:"name"`
	DistributionKey *string `json:"distribution_key"`
}

// NewTypeID constructs a TypeID with no distribution key.
func NewTypeID(name string) TypeID {
	return TypeID{Name: name}
}

// NewTypeIDWithDistribution constructs a TypeID carrying a distribution key.
func NewTypeIDWithDistribution(name, key string) TypeID {
	return TypeID{Name: name, DistributionKey: &key}
}

// String renders the canonical JSON text form used for hashing and registry
// lookup. Two TypeIDs are equal iff their String() forms match.
func (t TypeID) String() string {
	b, err := json.Marshal(t)
	if err != nil {
		// Name and DistributionKey are both plain strings; Marshal cannot fail.
		panic(err)
	}
	return string(b)
}

// descriptor is a registered type's identity plus its reconstruction
// function. ForeignType is set only for wrapped-resource descriptors (§4.2):
// a registration that lets a non-Resource Go type be stored by wrapping it.
type descriptor struct {
	typeID      TypeID
	newFromFields func(map[string]FieldValue) (Resource, error)
	foreignType reflect.Type
}

// registry mirrors the teacher's plansCache shape: a read-mostly cache
// guarded by a double-checked RWMutex, except here registration is an
// explicit caller action rather than a lazily-built reflection cache.
type registryT struct {
	mu            sync.RWMutex
	byID          map[string]descriptor
	byForeignType map[reflect.Type]descriptor
}

var globalRegistry = &registryT{
	byID:          make(map[string]descriptor),
	byForeignType: make(map[reflect.Type]descriptor),
}

// Register adds a type descriptor to the registry. Re-registering a type-id
// that is already present with the same foreign type (none, for Register)
// is a no-op that keeps the first factory; factories are not compared, so a
// different factory is not detected. Registering a type-id already held
// with a different foreign type is a RegistryError.
func Register(id TypeID, newFromFields func(map[string]FieldValue) (Resource, error)) error {
	return registerDescriptor(descriptor{typeID: id, newFromFields: newFromFields})
}

// RegisterWrapper adds a descriptor for a foreign (non-Resource) Go type,
// recorded so LookupWrapperFor can find it at the model boundary.
func RegisterWrapper(id TypeID, foreign reflect.Type, newFromFields func(map[string]FieldValue) (Resource, error)) error {
	return registerDescriptor(descriptor{typeID: id, newFromFields: newFromFields, foreignType: foreign})
}

func registerDescriptor(d descriptor) error {
	key := d.typeID.String()

	globalRegistry.mu.RLock()
	if existing, ok := globalRegistry.byID[key]; ok {
		globalRegistry.mu.RUnlock()
		if existing.foreignType == d.foreignType {
			return nil // idempotent re-registration
		}
		return newRegistryError(key, "conflicting registration for type-id")
	}
	globalRegistry.mu.RUnlock()

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if existing, ok := globalRegistry.byID[key]; ok {
		if existing.foreignType == d.foreignType {
			return nil
		}
		return newRegistryError(key, "conflicting registration for type-id")
	}

	globalRegistry.byID[key] = d
	if d.foreignType != nil {
		globalRegistry.byForeignType[d.foreignType] = d
	}
	return nil
}

// LookupByTypeID returns the descriptor registered for id, if any.
func LookupByTypeID(id TypeID) (d descriptor, ok bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	d, ok = globalRegistry.byID[id.String()]
	return d, ok
}

// LookupWrapperFor returns the wrapper descriptor registered for a foreign
// Go type, if any.
func LookupWrapperFor(t reflect.Type) (d descriptor, ok bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	d, ok = globalRegistry.byForeignType[t]
	return d, ok
}

// ResetRegistry clears all registrations. Primarily useful for test isolation.
func ResetRegistry() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.byID = make(map[string]descriptor)
	globalRegistry.byForeignType = make(map[reflect.Type]descriptor)
}

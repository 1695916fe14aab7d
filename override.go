package enact

// Override interfaces let a Go type bypass reflection when AutoResource
// derives or rebuilds its fields. FieldSource is consulted for struct values
// met while reflecting over fields (a nested struct field); the top-level T of
// AutoResource[T] is always scanned with sentinel, FieldSource or not.
// FieldSink is consulted when fieldsToStruct rebuilds the T of a registered
// AutoResource[T]. In those places the interface method replaces walking the
// fields — the same bypass-for-hot-paths-and-custom-
// logic shape the teacher uses for its Encryptable/Hashable interfaces.
//
// These exist chiefly for "wrapped resources": foreign types this module
// doesn't control (so they can't be taught to implement Resource directly)
// but that still need to be embedded in a committed value. Register a
// wrapper with RegisterWrapper and let it implement FieldSource/FieldSink
// instead of relying on struct reflection.

// FieldSource bypasses reflection when deriving a Resource's fields.
type FieldSource interface {
	// EnactFields returns the field names and values in declared order.
	EnactFields() (names []string, values []FieldValue)
}

// FieldSink bypasses reflection when reconstructing a value from fields.
type FieldSink interface {
	// EnactFromFields populates the receiver from named fields. The
	// receiver is a zero value of the target type; mutations are expected.
	EnactFromFields(fields map[string]FieldValue) error
}

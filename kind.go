package enact

// Kind identifies which variant of the closed FieldValue sum type a value
// holds. FieldValue is modeled as a tagged union rather than an open class
// hierarchy: see FieldValue in fieldvalue.go.
type Kind string

const (
	// KindInt is a signed 64-bit integer.
	KindInt Kind = "int"

	// KindFloat is an IEEE-754 double.
	KindFloat Kind = "float"

	// KindBool is a boolean.
	KindBool Kind = "bool"

	// KindString is a UTF-8 string.
	KindString Kind = "string"

	// KindBytes is a byte string.
	KindBytes Kind = "bytes"

	// KindNull is the single null value.
	KindNull Kind = "null"

	// KindSeq is an ordered sequence of FieldValues.
	KindSeq Kind = "seq"

	// KindMap is a string-keyed mapping of FieldValues.
	KindMap Kind = "map"

	// KindResource is a nested Resource.
	KindResource Kind = "resource"

	// KindTypeRef is a reference to a registered type.
	KindTypeRef Kind = "typeref"

	// KindRef is a reference into a store.
	KindRef Kind = "ref"
)

// validKinds enumerates every member of the closed FieldValue universe.
var validKinds = map[Kind]bool{
	KindInt:      true,
	KindFloat:    true,
	KindBool:     true,
	KindString:   true,
	KindBytes:    true,
	KindNull:     true,
	KindSeq:      true,
	KindMap:      true,
	KindResource: true,
	KindTypeRef:  true,
	KindRef:      true,
}

// IsValidKind returns true if k is a known FieldValue variant.
func IsValidKind(k Kind) bool {
	return validKinds[k]
}

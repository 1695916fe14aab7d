package enact

import "math"

// FieldValue is the recursive leaf universe every Resource field, sequence
// element, and map value is drawn from. It is a closed tagged union: exactly
// one of the typed accessors below is meaningful, selected by Kind.
//
// FieldValue is immutable once constructed; the constructor functions
// (Int, Float, Bool, Str, Bytes, Null, Seq, Map, ResourceVal, TypeRefVal,
// RefVal) are the only way to produce one.
type FieldValue struct {
	kind Kind

	i   int64
	f   float64
	b   bool
	s   string
	by  []byte
	seq []FieldValue
	m   map[string]FieldValue
	res Resource
	typ TypeID
	ref anyRef
}

// anyRef is the type-erased shape of a Ref[T], used so FieldValue can hold a
// reference without being generic itself. Ref[T] implements it.
type anyRef interface {
	digest() Digest
	typeID() TypeID
}

// Kind reports which variant this FieldValue holds.
func (v FieldValue) Kind() Kind { return v.kind }

// Int constructs an integer FieldValue.
func Int(i int64) FieldValue { return FieldValue{kind: KindInt, i: i} }

// Float constructs a double FieldValue. NaN and -0.0 are canonicalized at
// pack time (see pack.go), not at construction time, so AsFloat still
// returns the original bits; Equal applies the packer's canonicalization.
func Float(f float64) FieldValue { return FieldValue{kind: KindFloat, f: f} }

// Bool constructs a boolean FieldValue.
func Bool(b bool) FieldValue { return FieldValue{kind: KindBool, b: b} }

// Str constructs a UTF-8 string FieldValue.
func Str(s string) FieldValue { return FieldValue{kind: KindString, s: s} }

// Bytes constructs a byte-string FieldValue.
func Bytes(b []byte) FieldValue {
	cp := make([]byte, len(b))
	copy(cp, b)
	return FieldValue{kind: KindBytes, by: cp}
}

// Null returns the single null FieldValue.
func Null() FieldValue { return FieldValue{kind: KindNull} }

// Seq constructs an ordered-sequence FieldValue.
func Seq(elems ...FieldValue) FieldValue {
	cp := make([]FieldValue, len(elems))
	copy(cp, elems)
	return FieldValue{kind: KindSeq, seq: cp}
}

// Map constructs a string-keyed mapping FieldValue. Key order carries no
// semantic meaning; the packer canonicalizes order for hashing.
func Map(m map[string]FieldValue) FieldValue {
	cp := make(map[string]FieldValue, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return FieldValue{kind: KindMap, m: cp}
}

// ResourceVal wraps a nested Resource as a FieldValue.
func ResourceVal(r Resource) FieldValue { return FieldValue{kind: KindResource, res: r} }

// TypeRefVal constructs a reference-to-a-registered-type FieldValue.
func TypeRefVal(t TypeID) FieldValue { return FieldValue{kind: KindTypeRef, typ: t} }

// RefVal wraps a Ref[T] as a FieldValue. Packing a RefVal yields only the
// ref's digest, never the referred-to content (see pack.go); this is what
// keeps the store graph acyclic by construction.
func RefVal[T any](r Ref[T]) FieldValue { return FieldValue{kind: KindRef, ref: r} }

// AsInt returns the held integer. Caller must check Kind() == KindInt.
func (v FieldValue) AsInt() int64 { return v.i }

// AsFloat returns the held double. Caller must check Kind() == KindFloat.
func (v FieldValue) AsFloat() float64 { return v.f }

// AsBool returns the held boolean. Caller must check Kind() == KindBool.
func (v FieldValue) AsBool() bool { return v.b }

// AsString returns the held string. Caller must check Kind() == KindString.
func (v FieldValue) AsString() string { return v.s }

// AsBytes returns the held byte string. Caller must check Kind() == KindBytes.
func (v FieldValue) AsBytes() []byte { return v.by }

// AsSeq returns the held sequence. Caller must check Kind() == KindSeq.
func (v FieldValue) AsSeq() []FieldValue { return v.seq }

// AsMap returns the held mapping. Caller must check Kind() == KindMap.
func (v FieldValue) AsMap() map[string]FieldValue { return v.m }

// AsResource returns the held Resource. Caller must check Kind() == KindResource.
func (v FieldValue) AsResource() Resource { return v.res }

// AsTypeRef returns the held TypeID. Caller must check Kind() == KindTypeRef.
func (v FieldValue) AsTypeRef() TypeID { return v.typ }

// AsRef returns the type-erased ref. Caller must check Kind() == KindRef and
// know the concrete T to recover a typed Ref[T] via RefFromFieldValue.
func (v FieldValue) AsRef() anyRef { return v.ref }

// RefFromFieldValue recovers a typed Ref[T] from a KindRef FieldValue. It
// panics if v is not a KindRef holding a Ref[T] (a programmer error: callers
// must know the expected type from the field schema before calling this).
// RefFromFieldValue only succeeds when v's ref was constructed in-process as
// a Ref[T] — a ref recovered from a checkout (see unpack.go) holds only a
// digest and type-id, not a live Ref[T], so checked-out values should use
// RefAs instead.
func RefFromFieldValue[T any](v FieldValue) Ref[T] {
	return v.ref.(Ref[T])
}

// RefAs rebuilds a Ref[T] from any KindRef FieldValue's digest and type-id,
// regardless of whether the underlying anyRef was a live Ref[T] or a
// digest-only ref recovered from a checkout. Unlike RefFromFieldValue this
// never panics on a type mismatch — the returned Ref[T] simply carries no
// cached value, and a subsequent Checkout hits the backend.
func RefAs[T any](v FieldValue) Ref[T] {
	r := v.ref
	return Ref[T]{d: r.digest(), typ: r.typeID()}
}

// Equal reports whether two FieldValues are structurally equal under the
// same canonicalization rules the packer applies (NaN collapses to a single
// representative, -0.0 equals +0.0). It does not consult a store: two Refs
// are equal iff their digests are equal, regardless of cached content.
func (v FieldValue) Equal(other FieldValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return canonicalFloatBits(v.f) == canonicalFloatBits(other.f)
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindBytes:
		return string(v.by) == string(other.by)
	case KindNull:
		return true
	case KindSeq:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, val := range v.m {
			ov, ok := other.m[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	case KindResource:
		pa, err1 := packResource(v.res)
		pb, err2 := packResource(other.res)
		if err1 != nil || err2 != nil {
			return false
		}
		return digestEqualPacked(pa, pb)
	case KindTypeRef:
		return v.typ == other.typ
	case KindRef:
		return v.ref.digest() == other.ref.digest()
	}
	return false
}

func canonicalFloatBits(f float64) uint64 {
	if math.IsNaN(f) {
		return math.Float64bits(math.NaN())
	}
	if f == 0 {
		return math.Float64bits(0) // canonicalizes -0.0 to +0.0
	}
	return math.Float64bits(f)
}

func digestEqualPacked(a, b packedValue) bool {
	da, errA := Hash(a)
	db, errB := Hash(b)
	return errA == nil && errB == nil && da == db
}

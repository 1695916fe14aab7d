package enact

import "sort"

// packedValue is the canonicalized tree produced by packing a FieldValue or
// Resource for hashing and persistence (§4.3). Unlike FieldValue, a
// packedValue never holds a live Resource or Ref object — Refs have already
// been reduced to their digest, which is what keeps the store graph a
// Merkle DAG: a value must be committed (and thus digested) before it can
// be embedded in another.
type packedValue struct {
	tag  packTag
	i    int64
	f    float64
	b    bool
	s    string
	by   []byte
	seq  []packedValue
	pair []packedPair // canonicalized (key, packed-value), sorted by key
	typ  string       // type-id text, for tag == tagResource / tagRef / tagType
}

type packedPair struct {
	key string
	val packedValue
}

type packTag byte

const (
	tagInt packTag = iota
	tagFloat
	tagBool
	tagString
	tagBytes
	tagNull
	tagSeq
	tagMap
	tagResource
	tagRef
	tagType
)

// maxPackDepth bounds nested-resource recursion while packing. A value-typed
// Resource can't contain itself without going through a Ref (which packs to
// a digest, not content) or a pointer/interface indirection sentinel.Scan
// doesn't produce here, so a genuine infinite cycle can't occur; this is a
// backstop against a pathological FieldSource implementation, not a
// visited-set membership check. A visited-set keyed by Resource would need
// Resource values to be comparable, and FieldValue (held by Request,
// Response, Invocation, and any Resource with a FieldValue field) embeds a
// slice and a map, making it and anything containing it non-comparable —
// so cycle detection here is depth-bounded, never hash-based.
const maxPackDepth = 64

// packResource canonicalizes a Resource into its packed form: (res, type-id,
// [(field-name, packed-value) in declared field order]). Declared field
// order is preserved — unlike map packing, resource fields are NOT sorted,
// since their order is part of the type's identity.
func packResource(r Resource) (packedValue, error) {
	return packResourceDepth(r, 0, "")
}

func packResourceDepth(r Resource, depth int, path string) (packedValue, error) {
	if r == nil {
		return packedValue{}, newPackingError(path + ": nil resource")
	}
	if depth > maxPackDepth {
		return packedValue{}, newPackingError(path + ": nesting too deep (possible cycle)")
	}

	names := r.FieldNames()
	values := r.FieldValues()
	if len(names) != len(values) {
		return packedValue{}, newPackingError(path + ": field name/value length mismatch")
	}

	pairs := make([]packedPair, len(names))
	for i, name := range names {
		fieldPath := joinPath(path, name)
		pv, err := packFieldValue(values[i], depth+1, fieldPath)
		if err != nil {
			return packedValue{}, err
		}
		pairs[i] = packedPair{key: name, val: pv}
	}

	return packedValue{
		tag:  tagResource,
		typ:  r.TypeID().String(),
		pair: pairs,
	}, nil
}

// packFieldValue canonicalizes a single FieldValue, recursing into
// sequences, maps, and nested resources, bounded by maxPackDepth.
func packFieldValue(v FieldValue, depth int, path string) (packedValue, error) {
	if depth > maxPackDepth {
		return packedValue{}, newPackingError(path + ": nesting too deep (possible cycle)")
	}
	switch v.Kind() {
	case KindInt:
		return packedValue{tag: tagInt, i: v.AsInt()}, nil
	case KindFloat:
		return packedValue{tag: tagFloat, f: canonicalFloat(v.AsFloat())}, nil
	case KindBool:
		return packedValue{tag: tagBool, b: v.AsBool()}, nil
	case KindString:
		return packedValue{tag: tagString, s: v.AsString()}, nil
	case KindBytes:
		return packedValue{tag: tagBytes, by: v.AsBytes()}, nil
	case KindNull:
		return packedValue{tag: tagNull}, nil
	case KindSeq:
		elems := v.AsSeq()
		packed := make([]packedValue, len(elems))
		for i, e := range elems {
			pv, err := packFieldValue(e, depth+1, joinIndex(path, i))
			if err != nil {
				return packedValue{}, err
			}
			packed[i] = pv
		}
		return packedValue{tag: tagSeq, seq: packed}, nil
	case KindMap:
		m := v.AsMap()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys) // bytewise-ascending over UTF-8 bytes; see §9 open question
		pairs := make([]packedPair, len(keys))
		for i, k := range keys {
			pv, err := packFieldValue(m[k], depth+1, joinPath(path, k))
			if err != nil {
				return packedValue{}, err
			}
			pairs[i] = packedPair{key: k, val: pv}
		}
		return packedValue{tag: tagMap, pair: pairs}, nil
	case KindResource:
		return packResourceDepth(v.AsResource(), depth+1, path)
	case KindTypeRef:
		return packedValue{tag: tagType, typ: v.AsTypeRef().String()}, nil
	case KindRef:
		// Packing a Ref yields only its digest, never the referred-to
		// content: this is the invariant that makes cycles structurally
		// impossible (a Ref must be computed, i.e. hashed, before it can be
		// embedded in another resource).
		ref := v.AsRef()
		return packedValue{tag: tagRef, s: ref.digest().String(), typ: ref.typeID().String()}, nil
	}
	return packedValue{}, newPackingError(path + ": unknown field kind")
}

func canonicalFloat(f float64) float64 {
	bits := canonicalFloatBits(f)
	return floatFromBits(bits)
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func joinIndex(base string, i int) string {
	return joinPath(base, "["+itoa(i)+"]")
}

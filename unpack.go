package enact

import "encoding/json"

// unpackValue reconstructs a FieldValue from its packed form. Nested
// resources are rebuilt through the type registry when the type-id is
// known; otherwise they fall back to rawResource, which preserves the
// field names and values but can't be asserted to any particular Go type.
func unpackValue(p packedValue) (FieldValue, error) {
	switch p.tag {
	case tagInt:
		return Int(p.i), nil
	case tagFloat:
		return Float(p.f), nil
	case tagBool:
		return Bool(p.b), nil
	case tagString:
		return Str(p.s), nil
	case tagBytes:
		return Bytes(p.by), nil
	case tagNull:
		return Null(), nil
	case tagSeq:
		elems := make([]FieldValue, len(p.seq))
		for i, e := range p.seq {
			v, err := unpackValue(e)
			if err != nil {
				return FieldValue{}, err
			}
			elems[i] = v
		}
		return Seq(elems...), nil
	case tagMap:
		m := make(map[string]FieldValue, len(p.pair))
		for _, pr := range p.pair {
			v, err := unpackValue(pr.val)
			if err != nil {
				return FieldValue{}, err
			}
			m[pr.key] = v
		}
		return Map(m), nil
	case tagResource:
		res, err := unpackResource(p)
		if err != nil {
			return FieldValue{}, err
		}
		return ResourceVal(res), nil
	case tagType:
		id, err := parseTypeID(p.typ)
		if err != nil {
			return FieldValue{}, err
		}
		return TypeRefVal(id), nil
	case tagRef:
		id, err := parseTypeID(p.typ)
		if err != nil {
			return FieldValue{}, err
		}
		d, err := ParseDigest(p.s)
		if err != nil {
			return FieldValue{}, err
		}
		return refFieldValue(storedRef{d: d, t: id}), nil
	}
	return FieldValue{}, newPackingError("unknown pack tag on unpack")
}

// unpackResource reconstructs a Resource from a (res, type-id, fields)
// packedValue, preserving declared field order.
func unpackResource(p packedValue) (Resource, error) {
	id, err := parseTypeID(p.typ)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(p.pair))
	values := make([]FieldValue, len(p.pair))
	fields := make(map[string]FieldValue, len(p.pair))
	for i, pr := range p.pair {
		v, err := unpackValue(pr.val)
		if err != nil {
			return nil, err
		}
		names[i] = pr.key
		values[i] = v
		fields[pr.key] = v
	}

	if d, ok := LookupByTypeID(id); ok {
		res, err := d.newFromFields(fields)
		if err == nil {
			return res, nil
		}
	}

	return rawResource{id: id, names: names, values: values}, nil
}

func parseTypeID(s string) (TypeID, error) {
	var id TypeID
	if err := json.Unmarshal([]byte(s), &id); err != nil {
		return id, newPackingError("malformed type-id: " + s)
	}
	return id, nil
}

// refFieldValue constructs a KindRef FieldValue from a type-erased anyRef.
// It exists for the decode path, where the concrete Ref[T] type parameter
// isn't known; callers recover a typed Ref[T] via RefFromFieldValue only
// when T matches exactly, or via RefAs[T], which rebuilds a Ref[T]
// from a storedRef's digest and type-id regardless.
func refFieldValue(r anyRef) FieldValue {
	return FieldValue{kind: KindRef, ref: r}
}

// storedRef is the digest-only ref produced when decoding a KindRef value
// whose concrete Go type parameter isn't available at decode time.
type storedRef struct {
	d Digest
	t TypeID
}

func (s storedRef) digest() Digest { return s.d }
func (s storedRef) typeID() TypeID { return s.t }

// rawResource is the fallback Resource produced when a checked-out nested
// resource's type-id has no registered reconstructor. It round-trips fields
// faithfully but cannot be type-asserted to a caller's concrete struct type.
type rawResource struct {
	id     TypeID
	names  []string
	values []FieldValue
}

func (r rawResource) TypeID() TypeID          { return r.id }
func (r rawResource) FieldNames() []string    { return r.names }
func (r rawResource) FieldValues() []FieldValue { return r.values }

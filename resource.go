package enact

import (
	"fmt"
	"reflect"

	"github.com/zoobzio/sentinel"
)

// Resource is anything that can be committed to a store: a flat or nested
// bag of named FieldValues plus a type identity. FieldNames and FieldValues
// must return parallel slices in the same, stable declared order — that
// order is part of the type's packed identity (§4.3).
type Resource interface {
	TypeID() TypeID
	FieldNames() []string
	FieldValues() []FieldValue
}

// FromFields reconstructs a Resource of the type registered under id from
// its unpacked fields. It is the inverse of FieldNames/FieldValues, looked
// up through the registry rather than carried on the interface itself —
// a zero Resource value has nothing to dispatch a method call on.
func FromFields(id TypeID, fields map[string]FieldValue) (Resource, error) {
	d, ok := LookupByTypeID(id)
	if !ok {
		return nil, newRegistryError(id.String(), "no resource type registered for type-id")
	}
	return d.newFromFields(fields)
}

// AutoResource derives a Resource implementation for a plain Go struct T by
// scanning its exported fields with sentinel, the way the teacher's
// Processor derives field plans from struct tags (processor.go). Unlike the
// teacher's tag-driven transform pipeline, AutoResource needs no tags: every
// exported field becomes a resource field, named after the Go field name
// (overridable with an `enact:"name"` tag).
//
// AutoResource[T] must be registered once via RegisterAutoResource before
// FromFields can reconstruct values of T from a checked-out store entry.
type AutoResource[T any] struct {
	Value T
}

// NewAutoResource wraps a value of T for commit.
func NewAutoResource[T any](v T) AutoResource[T] {
	return AutoResource[T]{Value: v}
}

// TypeID returns the registered identity for T, derived from its Go package
// path and name. Call RegisterAutoResource[T] before relying on this.
func (a AutoResource[T]) TypeID() TypeID {
	return typeIDForGoType(reflect.TypeOf(a.Value))
}

// FieldNames lists T's exported field names, in declaration order, using
// sentinel's cached struct scan (the same scan the teacher's processor
// builds field plans from).
func (a AutoResource[T]) FieldNames() []string {
	spec := sentinel.Scan[T]()
	names := make([]string, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		names = append(names, autoFieldName(f))
	}
	return names
}

// FieldValues converts each exported field of the wrapped value to a
// FieldValue via reflection, in the same declaration order as FieldNames.
func (a AutoResource[T]) FieldValues() []FieldValue {
	spec := sentinel.Scan[T]()
	rv := reflect.ValueOf(a.Value)
	values := make([]FieldValue, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		fv := rv.FieldByIndex(f.Index)
		values = append(values, reflectToFieldValue(fv))
	}
	return values
}

// RegisterAutoResource registers T's AutoResource wrapper in the global
// registry so FromFields can reconstruct it by type-id.
func RegisterAutoResource[T any]() error {
	var zero T
	id := typeIDForGoType(reflect.TypeOf(zero))
	return Register(id, func(fields map[string]FieldValue) (Resource, error) {
		v, err := fieldsToStruct[T](fields)
		if err != nil {
			return nil, err
		}
		return AutoResource[T]{Value: v}, nil
	})
}

func typeIDForGoType(t reflect.Type) TypeID {
	if t == nil {
		return NewTypeID("unknown")
	}
	return NewTypeID(t.PkgPath() + "." + t.Name())
}

func autoFieldName(f sentinel.FieldMetadata) string {
	if name, ok := f.Tags["enact"]; ok && name != "" {
		return name
	}
	return f.Name
}

// reflectToFieldValue converts a single struct field's reflect.Value into a
// FieldValue. It covers the scalar and container shapes a plain data struct
// is expected to use; anything else (channels, funcs, unexported-only
// interfaces) is out of scope for automatic derivation.
func reflectToFieldValue(rv reflect.Value) FieldValue {
	switch rv.Kind() {
	case reflect.String:
		return Str(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Bytes())
		}
		elems := make([]FieldValue, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems[i] = reflectToFieldValue(rv.Index(i))
		}
		return Seq(elems...)
	case reflect.Map:
		m := make(map[string]FieldValue, rv.Len())
		for _, key := range rv.MapKeys() {
			m[fmt.Sprint(key.Interface())] = reflectToFieldValue(rv.MapIndex(key))
		}
		return Map(m)
	case reflect.Ptr:
		if rv.IsNil() {
			return Null()
		}
		return reflectToFieldValue(rv.Elem())
	case reflect.Struct:
		if res, ok := rv.Interface().(Resource); ok {
			return ResourceVal(res)
		}
		if src, ok := rv.Interface().(FieldSource); ok {
			return ResourceVal(fieldSourceResource{typeID: typeIDForGoType(rv.Type()), src: src})
		}
		return ResourceVal(structToAutoResource(rv))
	case reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return reflectToFieldValue(rv.Elem())
	default:
		return Null()
	}
}

// structToAutoResource wraps an arbitrary struct value so it satisfies
// Resource without requiring a generic type parameter at the reflect call
// site; used only for nested struct fields discovered during reflection.
type genericAutoResource struct {
	rv reflect.Value
}

func structToAutoResource(rv reflect.Value) genericAutoResource {
	return genericAutoResource{rv: rv}
}

func (g genericAutoResource) TypeID() TypeID {
	return typeIDForGoType(g.rv.Type())
}

func (g genericAutoResource) FieldNames() []string {
	t := g.rv.Type()
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if name := sf.Tag.Get("enact"); name != "" {
			names = append(names, name)
			continue
		}
		names = append(names, sf.Name)
	}
	return names
}

func (g genericAutoResource) FieldValues() []FieldValue {
	t := g.rv.Type()
	values := make([]FieldValue, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		values = append(values, reflectToFieldValue(g.rv.Field(i)))
	}
	return values
}

// fieldSourceResource adapts a type implementing FieldSource to Resource.
type fieldSourceResource struct {
	typeID TypeID
	src    FieldSource
}

func (f fieldSourceResource) TypeID() TypeID { return f.typeID }

func (f fieldSourceResource) FieldNames() []string {
	names, _ := f.src.EnactFields()
	return names
}

func (f fieldSourceResource) FieldValues() []FieldValue {
	_, values := f.src.EnactFields()
	return values
}

// fieldsToStruct reconstructs a T from named fields by setting each
// exported field whose name (or `enact` tag) matches a key. If T implements
// FieldSink, reconstruction is delegated to it instead of reflection.
func fieldsToStruct[T any](fields map[string]FieldValue) (T, error) {
	var out T
	if sink, ok := any(&out).(FieldSink); ok {
		err := sink.EnactFromFields(fields)
		return out, err
	}
	rv := reflect.ValueOf(&out).Elem()
	t := rv.Type()
	if t.Kind() != reflect.Struct {
		return out, newPackingError("AutoResource requires a struct type")
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Tag.Get("enact")
		if name == "" {
			name = sf.Name
		}
		fv, ok := fields[name]
		if !ok {
			continue
		}
		if err := setFieldFromValue(rv.Field(i), fv); err != nil {
			return out, err
		}
	}
	return out, nil
}

func setFieldFromValue(field reflect.Value, fv FieldValue) error {
	switch fv.Kind() {
	case KindString:
		field.SetString(fv.AsString())
	case KindBool:
		field.SetBool(fv.AsBool())
	case KindInt:
		switch field.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			field.SetUint(uint64(fv.AsInt()))
		default:
			field.SetInt(fv.AsInt())
		}
	case KindFloat:
		field.SetFloat(fv.AsFloat())
	case KindBytes:
		field.SetBytes(fv.AsBytes())
	case KindNull:
		field.Set(reflect.Zero(field.Type()))
	case KindSeq:
		elems := fv.AsSeq()
		slice := reflect.MakeSlice(field.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := setFieldFromValue(slice.Index(i), e); err != nil {
				return err
			}
		}
		field.Set(slice)
	case KindMap:
		m := fv.AsMap()
		mv := reflect.MakeMapWithSize(field.Type(), len(m))
		for k, v := range m {
			ev := reflect.New(field.Type().Elem()).Elem()
			if err := setFieldFromValue(ev, v); err != nil {
				return err
			}
			mv.SetMapIndex(reflect.ValueOf(k), ev)
		}
		field.Set(mv)
	default:
		return newPackingError(fmt.Sprintf("unsupported field kind %q for reconstruction", fv.Kind()))
	}
	return nil
}

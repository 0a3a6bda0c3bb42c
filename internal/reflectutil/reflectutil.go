// Package reflectutil is the reflection collaborator of the resolver. It
// enumerates the named fields of a structured type with their declared types
// and default values, reports which fields the type can be constructed with,
// and provides field accessors. Nothing in this package knows about
// annotations or protocols.
package reflectutil

import (
	"reflect"
	"strings"
)

// Field describes one named field of a structured type.
type Field struct {
	// Name is the resolved field key: typical:"name=..." > json tag > Go name.
	Name string
	// GoName is the declared Go field name.
	GoName string
	// Index addresses the field for reflect.Value.FieldByIndex.
	Index []int
	// Type is the declared Go type of the field.
	Type reflect.Type
	// ReadOnly marks fields the type cannot be constructed with
	// (typical:",readonly").
	ReadOnly bool
}

// Defaulter supplies per-field default values, keyed by resolved field name.
// Implement it on T or *T.
type Defaulter interface {
	FieldDefaults() map[string]any
}

// ResolveKey resolves the external-facing key for a struct field.
// Priority: typical:"name=..." > json tag name > Go field name; "-" disables.
func ResolveKey(sf reflect.StructField) string {
	if tt := sf.Tag.Get("typical"); tt != "" {
		if tt == "-" {
			return "-"
		}
		for _, p := range strings.Split(tt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

func isReadOnly(sf reflect.StructField) bool {
	tt := sf.Tag.Get("typical")
	for _, p := range strings.Split(tt, ",") {
		if strings.TrimSpace(p) == "readonly" {
			return true
		}
	}
	return false
}

// Fields enumerates the exported, enabled fields of rt in declaration order.
// rt must be a struct type; pointer types are dereferenced.
func Fields(rt reflect.Type) []Field {
	rt = deref(rt)
	if rt.Kind() != reflect.Struct {
		return nil
	}
	out := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := ResolveKey(sf)
		if name == "" || name == "-" {
			continue
		}
		out = append(out, Field{
			Name:     name,
			GoName:   sf.Name,
			Index:    sf.Index,
			Type:     sf.Type,
			ReadOnly: isReadOnly(sf),
		})
	}
	return out
}

// Params returns the set of field names the type can be constructed with:
// exported fields that are not marked read-only.
func Params(rt reflect.Type) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range Fields(rt) {
		if !f.ReadOnly {
			out[f.Name] = struct{}{}
		}
	}
	return out
}

// Defaults probes a zero value of rt (and *rt) for field-level default
// markers and returns them keyed by resolved field name. The result is nil
// when the type declares no defaults.
func Defaults(rt reflect.Type) map[string]any {
	rt = deref(rt)
	if rt.Kind() != reflect.Struct {
		return nil
	}
	zero := reflect.New(rt)
	if d, ok := zero.Interface().(Defaulter); ok {
		return d.FieldDefaults()
	}
	if d, ok := zero.Elem().Interface().(Defaulter); ok {
		return d.FieldDefaults()
	}
	return nil
}

// Comparable reports whether v may participate in map keys and equality
// checks. A nil value is comparable.
func Comparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// Getter builds an accessor for the field addressed by index. The accessor
// accepts both values and pointers of the owning type and returns nil for a
// nil pointer.
func Getter(index []int) func(any) any {
	return func(v any) any {
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil
			}
			rv = rv.Elem()
		}
		fv := rv.FieldByIndex(index)
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			return nil
		}
		return fv.Interface()
	}
}

// Instantiate allocates an addressable value of rt for field-by-field
// construction, returning the settable element.
func Instantiate(rt reflect.Type) reflect.Value {
	return reflect.New(deref(rt)).Elem()
}

func deref(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

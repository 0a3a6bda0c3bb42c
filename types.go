package typical

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Kind identifies the shape of a type description.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindBytes
	KindNil
	KindAny
	KindTime
	KindDuration
	KindList
	KindMap
	KindOptional
	KindUnion
	KindLiteral
	KindEnum
	KindStruct
	KindRef
	KindAlias
	KindStrict
	KindReadOnly
)

// Type is a raw type description. Descriptions are immutable values; the
// canonicalizer normalizes them into Annotations. Token returns a stable
// canonical identity used for cache keys and recursion detection.
type Type interface {
	Kind() Kind
	Token() string
}

// ---- primitives ----

// PrimitiveType covers scalar kinds whose shape needs no per-instance
// inspection.
type PrimitiveType struct{ kind Kind }

func (p PrimitiveType) Kind() Kind { return p.kind }

func (p PrimitiveType) Token() string {
	switch p.kind {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindNil:
		return "nil"
	case KindAny:
		return "any"
	case KindTime:
		return "time"
	case KindDuration:
		return "duration"
	}
	return "invalid"
}

// String returns the string description.
func String() Type { return PrimitiveType{KindString} }

// Int returns the integer description.
func Int() Type { return PrimitiveType{KindInt} }

// Float returns the floating-point description.
func Float() Type { return PrimitiveType{KindFloat} }

// Bool returns the boolean description.
func Bool() Type { return PrimitiveType{KindBool} }

// Bytes returns the byte-string description.
func Bytes() Type { return PrimitiveType{KindBytes} }

// Nil describes the "no value" alternative inside unions.
func Nil() Type { return PrimitiveType{KindNil} }

// Any describes a dynamic value whose shape cannot be pinned down.
func Any() Type { return PrimitiveType{KindAny} }

// Time describes a point in time (wire form RFC 3339).
func Time() Type { return PrimitiveType{KindTime} }

// Duration describes an elapsed time (wire form seconds).
func Duration() Type { return PrimitiveType{KindDuration} }

// ---- containers & special forms ----

// ListType describes a homogeneous sequence.
type ListType struct{ Elem Type }

func (l ListType) Kind() Kind    { return KindList }
func (l ListType) Token() string { return "list[" + l.Elem.Token() + "]" }

// ListOf builds a list description.
func ListOf(elem Type) Type { return ListType{Elem: elem} }

// MapType describes a homogeneous mapping.
type MapType struct{ Key, Elem Type }

func (m MapType) Kind() Kind    { return KindMap }
func (m MapType) Token() string { return "map[" + m.Key.Token() + "," + m.Elem.Token() + "]" }

// MapOf builds a map description.
func MapOf(key, elem Type) Type { return MapType{Key: key, Elem: elem} }

// OptionalType describes a value that may be absent.
type OptionalType struct{ Elem Type }

func (o OptionalType) Kind() Kind    { return KindOptional }
func (o OptionalType) Token() string { return "optional[" + o.Elem.Token() + "]" }

// OptionalOf wraps a description so null/absence is accepted.
func OptionalOf(elem Type) Type { return OptionalType{Elem: elem} }

// UnionType describes a choice between alternatives.
type UnionType struct{ Alts []Type }

func (u UnionType) Kind() Kind { return KindUnion }

func (u UnionType) Token() string {
	parts := make([]string, len(u.Alts))
	for i, a := range u.Alts {
		parts[i] = a.Token()
	}
	return "union[" + strings.Join(parts, "|") + "]"
}

// UnionOf builds a union description.
func UnionOf(alts ...Type) Type { return UnionType{Alts: alts} }

// LiteralType describes a fixed finite set of legal values.
type LiteralType struct{ Values []any }

func (l LiteralType) Kind() Kind { return KindLiteral }

func (l LiteralType) Token() string {
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		parts[i] = valueToken(v)
	}
	return "literal[" + strings.Join(parts, "|") + "]"
}

// LiteralOf builds a literal description from its legal values.
func LiteralOf(values ...any) Type { return LiteralType{Values: values} }

// EnumValue is one named member of an enum description.
type EnumValue struct {
	Name  string
	Value any
}

// EnumType describes a named, closed set of values.
type EnumType struct {
	Name   string
	Values []EnumValue
}

func (e EnumType) Kind() Kind    { return KindEnum }
func (e EnumType) Token() string { return "enum:" + e.Name }

// EnumOf builds an enum description.
func EnumOf(name string, values ...EnumValue) Type {
	return EnumType{Name: name, Values: values}
}

// StructType describes a structured record backed by a Go struct type.
// Fields are enumerated lazily during canonicalization so that
// self-referential records terminate in the recursion guard rather than at
// construction time.
type StructType struct{ rt reflect.Type }

func (s StructType) Kind() Kind    { return KindStruct }
func (s StructType) Token() string { return "struct:" + s.rt.String() }

// ReflectType exposes the backing Go type.
func (s StructType) ReflectType() reflect.Type { return s.rt }

// StructOf builds a struct description from a reflect.Type. Pointers are
// dereferenced; non-struct types panic since they indicate programmer error.
func StructOf(rt reflect.Type) Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		panic(fmt.Sprintf("typical: StructOf requires a struct type, got %s", rt))
	}
	return StructType{rt: rt}
}

// TypeOf derives a description from the Go type T.
func TypeOf[T any]() Type {
	return TypeFromReflect(reflect.TypeOf((*T)(nil)).Elem())
}

// RefType names a type that may not be resolvable yet (a forward reference).
type RefType struct{ Name string }

func (r RefType) Kind() Kind    { return KindRef }
func (r RefType) Token() string { return "ref:" + r.Name }

// RefTo builds a forward reference by registry name.
func RefTo(name string) Type { return RefType{Name: name} }

// AliasType is a thin named alias of another description (NewType-style
// supertype aliasing). The canonicalizer always resolves through it.
type AliasType struct {
	Name       string
	Underlying Type
}

func (a AliasType) Kind() Kind    { return KindAlias }
func (a AliasType) Token() string { return "alias:" + a.Name + "[" + a.Underlying.Token() + "]" }

// AliasOf builds a named alias description.
func AliasOf(name string, underlying Type) Type {
	return AliasType{Name: name, Underlying: underlying}
}

// StrictType marks its element for strict validation instead of coercion.
type StrictType struct{ Elem Type }

func (s StrictType) Kind() Kind    { return KindStrict }
func (s StrictType) Token() string { return "strict[" + s.Elem.Token() + "]" }

// StrictOf wraps a description in strict mode.
func StrictOf(elem Type) Type { return StrictType{Elem: elem} }

// ReadOnlyType marks a field its owner cannot be constructed with.
type ReadOnlyType struct{ Elem Type }

func (r ReadOnlyType) Kind() Kind    { return KindReadOnly }
func (r ReadOnlyType) Token() string { return "readonly[" + r.Elem.Token() + "]" }

// ReadOnlyOf wraps a description as read-only.
func ReadOnlyOf(elem Type) Type { return ReadOnlyType{Elem: elem} }

// ---- derivation from Go types ----

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	bytesType    = reflect.TypeOf([]byte(nil))
)

// TypeFromReflect maps a Go type onto a description. Pointers become
// optionals, named basic types become aliases of their underlying primitive,
// and structs become lazily-enumerated struct descriptions.
func TypeFromReflect(rt reflect.Type) Type {
	switch rt {
	case timeType:
		return Time()
	case durationType:
		return Duration()
	case bytesType:
		return Bytes()
	}
	switch rt.Kind() {
	case reflect.Pointer:
		return OptionalOf(TypeFromReflect(rt.Elem()))
	case reflect.Struct:
		return StructType{rt: rt}
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return Bytes()
		}
		return ListOf(TypeFromReflect(rt.Elem()))
	case reflect.Map:
		return MapOf(TypeFromReflect(rt.Key()), TypeFromReflect(rt.Elem()))
	case reflect.Interface:
		return Any()
	}
	prim := primitiveFromKind(rt.Kind())
	if prim == nil {
		return Any()
	}
	// Named basic types behave as thin aliases of their underlying primitive.
	if rt.PkgPath() != "" {
		return AliasOf(rt.String(), prim)
	}
	return prim
}

func primitiveFromKind(k reflect.Kind) Type {
	switch k {
	case reflect.String:
		return String()
	case reflect.Bool:
		return Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int()
	case reflect.Float32, reflect.Float64:
		return Float()
	}
	return nil
}

// valueToken renders a literal or omitted value into a stable token fragment.
func valueToken(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case Type:
		return "type:" + t.Token()
	case EnumValue:
		return "enumval:" + t.Name
	default:
		return fmt.Sprintf("%T=%v", v, v)
	}
}

func sortedTokens(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = valueToken(v)
	}
	sort.Strings(out)
	return out
}

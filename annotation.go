package typical

import "strconv"

// Ellipsis is the sentinel standing in for defaults that cannot participate
// in equality checks or cache keys (slices, maps, functions).
var Ellipsis = ellipsis{}

type ellipsis struct{}

func (ellipsis) String() string { return "..." }

// Parameter is the originating field or argument of an annotation: its name
// and default value, if any.
type Parameter struct {
	Name       string
	Default    any
	HasDefault bool
}

func (p Parameter) token() string {
	if !p.HasDefault {
		return p.Name
	}
	return p.Name + "=" + valueToken(p.Default)
}

// Getter reads one field off an instance of a structured type.
type Getter func(v any) any

// SerdeConfig is the resolved field-mapping artifact for one structured type.
//
// Invariants: FieldsOut keys are a subset of Fields keys; FieldsIn is the
// inverse of the pre-exclusion output map restricted to fields the type can
// be constructed with.
type SerdeConfig struct {
	Flags SerdeFlags
	// Fields maps internal field name to its (possibly delayed) annotation.
	Fields map[string]AnnotationT
	// FieldsOut maps internal name to external output name.
	FieldsOut map[string]string
	// FieldsIn maps external input name back to internal name.
	FieldsIn map[string]string
	// Getters accesses field values by internal name.
	Getters map[string]Getter
	// OmitValues lists values that drop a field from output when the field
	// currently holds one of them.
	OmitValues []any
	// fieldOrder preserves declaration order for deterministic output.
	fieldOrder []string
	// fieldIndex addresses each field for reflective construction.
	fieldIndex map[string][]int
	// constructible marks the fields the type can be constructed with;
	// read-only fields are absent and never demanded on input.
	constructible map[string]struct{}
}

func emptyConfig(flags SerdeFlags) *SerdeConfig {
	return &SerdeConfig{Flags: flags}
}

// FieldNames returns internal field names in declaration order.
func (c *SerdeConfig) FieldNames() []string {
	return append([]string(nil), c.fieldOrder...)
}

// AnnotationT is either a concrete Annotation or a delayed placeholder for a
// self-referential or forward-referenced type.
type AnnotationT interface {
	// CacheKey uniquely identifies the canonicalized annotation; annotations
	// with equal keys are interchangeable.
	CacheKey() string
}

// Annotation is the canonical, immutable description of a type in context.
type Annotation struct {
	// Resolved is the canonical type after alias resolution and unwrapping.
	Resolved Type
	// Origin is the alias-resolved type before unwrapping (the generic head).
	Origin Type
	// UnResolved is the original description as given by the caller.
	UnResolved Type
	// Parameter is the originating field or argument.
	Parameter Parameter
	// Optional, Strict, Static, and Literal record the cumulative flags
	// gathered while unwrapping.
	Optional bool
	Strict   bool
	Static   bool
	Literal  bool
	// Serde is the field configuration; empty for non-structured types.
	Serde *SerdeConfig
}

// CacheKey implements AnnotationT. Two annotations with equal resolved type,
// optionality, strictness, flags, and field configuration collapse to the
// same key.
func (a *Annotation) CacheKey() string {
	return a.Resolved.Token() +
		"|opt=" + strconv.FormatBool(a.Optional) +
		"|strict=" + strconv.FormatBool(a.Strict) +
		"|static=" + strconv.FormatBool(a.Static) +
		"|lit=" + strconv.FormatBool(a.Literal) +
		"|" + a.Serde.Flags.fingerprint()
}

// DelayedAnnotation stands in for a type whose resolution would recurse:
// either a direct self-reference or a member of the in-flight stack. It
// carries enough context to retry once the enclosing resolution completes.
type DelayedAnnotation struct {
	Type      Type
	Name      string
	Parameter Parameter
	Optional  bool
	Strict    bool
	Flags     SerdeFlags
}

func (d *DelayedAnnotation) CacheKey() string {
	return "delayed:" + d.Type.Token() +
		"|opt=" + strconv.FormatBool(d.Optional) +
		"|strict=" + strconv.FormatBool(d.Strict) +
		"|" + d.Flags.fingerprint()
}

// ForwardDelayedAnnotation stands in for a named type that is not yet
// registered. Scope records the defining namespace for later lookup context.
type ForwardDelayedAnnotation struct {
	Ref       string
	Scope     Type
	Name      string
	Parameter Parameter
	Optional  bool
	Strict    bool
	Flags     SerdeFlags
}

func (f *ForwardDelayedAnnotation) CacheKey() string {
	return "forward:" + f.Ref +
		"|opt=" + strconv.FormatBool(f.Optional) +
		"|strict=" + strconv.FormatBool(f.Strict) +
		"|" + f.Flags.fingerprint()
}

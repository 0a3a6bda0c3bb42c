package typical

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/ducminhgd/typical/i18n"
)

// Constraints are the validation rules derived from a canonical annotation:
// the expected shape, nullability, strictness, and optional bounds. The zero
// bounds mean unconstrained.
type Constraints struct {
	Type     Type
	Nullable bool
	Strict   bool

	// Numeric bounds, inclusive.
	Min, Max *float64
	// Length bounds for strings, bytes, lists, and maps.
	MinLen, MaxLen *int
	// Pattern restricts string values.
	Pattern *regexp.Regexp
	// Values closes the legal set for literal and enum shapes.
	Values []any
}

// constraintsFor derives the rules implied by an annotation. Explicit bounds
// come in through constrained type descriptions; the base rules cover shape,
// nullability, and literal membership.
func (r *Resolver) constraintsFor(a *Annotation) *Constraints {
	c := &Constraints{
		Type:     a.Resolved,
		Nullable: a.Optional,
		Strict:   a.Strict,
	}
	switch t := a.Resolved.(type) {
	case LiteralType:
		c.Values = append(c.Values, t.Values...)
	case EnumType:
		for _, m := range t.Values {
			c.Values = append(c.Values, m.Value)
		}
	case ConstrainedType:
		c.Type = t.Elem
		c.Min, c.Max = t.Min, t.Max
		c.MinLen, c.MaxLen = t.MinLen, t.MaxLen
		c.Pattern = t.Pattern
	}
	return c
}

// Validate checks v against the rules, returning the (possibly coerced)
// value or Issues. A nil value passes only when the constraints are
// nullable.
func (c *Constraints) Validate(v any) (any, error) {
	if v == nil {
		if c.Nullable {
			return nil, nil
		}
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeRequired,
			Message: i18n.T(CodeRequired, nil),
		}}
	}
	if len(c.Values) > 0 {
		return c.checkMembership(v)
	}
	out := v
	if c.Strict {
		if err := c.checkShapeStrict(v); err != nil {
			return nil, err
		}
	} else {
		coerced, ok := coerceScalar(c.Type, v)
		if !ok {
			if err := c.checkShapeStrict(v); err != nil {
				return nil, err
			}
		} else {
			out = coerced
		}
	}
	if err := c.checkBounds(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Constraints) checkMembership(v any) (any, error) {
	for _, legal := range c.Values {
		if valuesEqual(legal, v) {
			return v, nil
		}
	}
	code := CodeInvalidEnum
	if c.Type.Kind() == KindLiteral {
		code = CodeIllegalLiteral
	}
	return nil, Issues{Issue{
		Path:    "/",
		Code:    code,
		Message: i18n.T(code, nil),
		Hint:    fmt.Sprintf("%v", v),
		Params:  map[string]any{"got": v},
	}}
}

func (c *Constraints) checkShapeStrict(v any) error {
	if shapeMatches(c.Type, v) {
		return nil
	}
	return Issues{Issue{
		Path:    "/",
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, nil),
		Params:  map[string]any{"expected": c.Type.Token(), "got": fmt.Sprintf("%T", v)},
	}}
}

func (c *Constraints) checkBounds(v any) error {
	if c.Min != nil || c.Max != nil {
		f, ok := asFloat(v)
		if ok {
			if c.Min != nil && f < *c.Min {
				return boundsIssue(CodeTooSmall, v)
			}
			if c.Max != nil && f > *c.Max {
				return boundsIssue(CodeTooBig, v)
			}
		}
	}
	if c.MinLen != nil || c.MaxLen != nil {
		n, ok := lengthOf(v)
		if ok {
			if c.MinLen != nil && n < *c.MinLen {
				return boundsIssue(CodeTooShort, v)
			}
			if c.MaxLen != nil && n > *c.MaxLen {
				return boundsIssue(CodeTooLong, v)
			}
		}
	}
	if c.Pattern != nil {
		if s, ok := v.(string); ok && !c.Pattern.MatchString(s) {
			return Issues{Issue{
				Path:    "/",
				Code:    CodePattern,
				Message: i18n.T(CodePattern, nil),
				Hint:    c.Pattern.String(),
			}}
		}
	}
	return nil
}

func boundsIssue(code string, v any) Issues {
	return Issues{Issue{
		Path:    "/",
		Code:    code,
		Message: i18n.T(code, nil),
		Params:  map[string]any{"got": v},
	}}
}

// shapeMatches reports whether v already has the described shape, without
// coercion.
func shapeMatches(t Type, v any) bool {
	if ct, ok := t.(ConstrainedType); ok {
		t = ct.Elem
	}
	rv := reflect.ValueOf(v)
	switch t.Kind() {
	case KindString:
		return rv.Kind() == reflect.String
	case KindInt:
		return isIntKind(rv.Kind())
	case KindFloat:
		return rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64
	case KindBool:
		return rv.Kind() == reflect.Bool
	case KindBytes:
		_, ok := v.([]byte)
		return ok
	case KindTime:
		return rv.Type() == timeType || rv.Kind() == reflect.String
	case KindDuration:
		return rv.Type() == durationType || isIntKind(rv.Kind())
	case KindList:
		return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	case KindMap:
		return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
	case KindStruct:
		st := resolveAlias(t).(StructType)
		rt := rv.Type()
		for rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		if rt == st.ReflectType() {
			return true
		}
		return rv.Kind() == reflect.Map
	case KindUnion:
		for _, alt := range t.(UnionType).Alts {
			if shapeMatches(resolveAlias(alt), v) {
				return true
			}
		}
		return false
	case KindAny, KindNil:
		return true
	}
	return true
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()):
		if rv.CanInt() {
			return float64(rv.Int()), true
		}
		return float64(rv.Uint()), true
	case rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func lengthOf(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// valuesEqual compares a declared legal value with an incoming one, folding
// numeric representations together so 2 matches int64(2).
func valuesEqual(legal, v any) bool {
	if ev, ok := legal.(EnumValue); ok {
		legal = ev.Value
	}
	if legal == nil || v == nil {
		return legal == nil && v == nil
	}
	lf, lok := asFloat(legal)
	vf, vok := asFloat(v)
	if lok && vok {
		return lf == vf
	}
	lv, vv := reflect.ValueOf(legal), reflect.ValueOf(v)
	if lv.Type() == vv.Type() && lv.Comparable() {
		return legal == v
	}
	if lb, ok := legal.([]byte); ok {
		if vb, ok := v.([]byte); ok {
			return string(lb) == string(vb)
		}
	}
	return false
}

// ConstrainedType attaches validation bounds to an element description. The
// bounds participate in the token so constrained and unconstrained forms
// never share a cache entry.
type ConstrainedType struct {
	Elem           Type
	Min, Max       *float64
	MinLen, MaxLen *int
	Pattern        *regexp.Regexp
}

func (c ConstrainedType) Kind() Kind { return c.Elem.Kind() }

func (c ConstrainedType) Token() string {
	tok := c.Elem.Token() + "{"
	if c.Min != nil {
		tok += fmt.Sprintf("min=%v;", *c.Min)
	}
	if c.Max != nil {
		tok += fmt.Sprintf("max=%v;", *c.Max)
	}
	if c.MinLen != nil {
		tok += fmt.Sprintf("minlen=%d;", *c.MinLen)
	}
	if c.MaxLen != nil {
		tok += fmt.Sprintf("maxlen=%d;", *c.MaxLen)
	}
	if c.Pattern != nil {
		tok += "pattern=" + c.Pattern.String() + ";"
	}
	return tok + "}"
}

// Constrained wraps a description with validation bounds.
func Constrained(elem Type, opts ...ConstraintOption) Type {
	c := ConstrainedType{Elem: elem}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// ConstraintOption sets one bound on a constrained description.
type ConstraintOption func(*ConstrainedType)

// MinValue sets the inclusive numeric lower bound.
func MinValue(min float64) ConstraintOption {
	return func(c *ConstrainedType) { c.Min = &min }
}

// MaxValue sets the inclusive numeric upper bound.
func MaxValue(max float64) ConstraintOption {
	return func(c *ConstrainedType) { c.Max = &max }
}

// MinLength sets the minimum length for strings, bytes, lists, and maps.
func MinLength(n int) ConstraintOption {
	return func(c *ConstrainedType) { c.MinLen = &n }
}

// MaxLength sets the maximum length.
func MaxLength(n int) ConstraintOption {
	return func(c *ConstrainedType) { c.MaxLen = &n }
}

// Matching restricts string values to a compiled pattern.
func Matching(re *regexp.Regexp) ConstraintOption {
	return func(c *ConstrainedType) { c.Pattern = re }
}

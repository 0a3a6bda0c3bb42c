package typical

import (
	"reflect"
	"strings"

	"github.com/ducminhgd/typical/i18n"
	"github.com/ducminhgd/typical/internal/reflectutil"
)

// annotateContext carries the resolution context for one canonicalization:
// the originating field, explicit optional/strict overrides, caller flags,
// a default value, and the enclosing namespace type.
type annotateContext struct {
	Name       string
	Parameter  *Parameter
	Optional   bool
	Strict     bool
	Flags      *SerdeFlags
	Default    any
	HasDefault bool
	Namespace  Type
}

// annotate normalizes a raw type description into a canonical Annotation, a
// DelayedAnnotation (self or stack recursion), or a ForwardDelayedAnnotation
// (named type not yet registered).
func (r *Resolver) annotate(t Type, actx annotateContext) (AnnotationT, error) {
	var flags SerdeFlags
	if actx.Flags != nil {
		flags = *actx.Flags
	}
	// Flags attached to the type itself always win over caller flags.
	if attached, ok := providerFlags(t); ok {
		flags = attached
	}

	param := Parameter{Name: "_"}
	if actx.Parameter != nil {
		param = *actx.Parameter
	} else {
		if actx.Name != "" {
			param.Name = actx.Name
		}
		if actx.HasDefault {
			def := actx.Default
			// Defaults that cannot participate in equality checks are
			// unusable for cache keys; stand in the ellipsis sentinel.
			if !reflectutil.Comparable(def) {
				def = Ellipsis
			}
			param.Default = def
			param.HasDefault = true
		}
	}

	unresolved := t
	use := resolveAlias(t)
	orig := use

	isOptional := actx.Optional ||
		use.Kind() == KindOptional ||
		(param.HasDefault && param.Default == nil)
	isStrict := actx.Strict || use.Kind() == KindStrict || r.strictDefault()
	isStatic := true
	isLiteral := use.Kind() == KindLiteral

	// Unwrap compound forms one layer at a time, accumulating flags.
unwrap:
	for {
		switch u := use.(type) {
		case OptionalType:
			isOptional = true
			use = resolveAlias(u.Elem)
		case StrictType:
			isStrict = true
			use = resolveAlias(u.Elem)
		case ReadOnlyType:
			use = resolveAlias(u.Elem)
		case UnionType:
			alts := make([]Type, 0, len(u.Alts))
			for _, alt := range u.Alts {
				alt = resolveAlias(alt)
				if alt.Kind() == KindNil {
					isOptional = true
					continue
				}
				alts = append(alts, alt)
			}
			switch len(alts) {
			case 0:
				use = Nil()
			case 1:
				use = alts[0]
			default:
				// More than one real alternative: the shape cannot be
				// statically pinned down.
				isStatic = false
				use = UnionType{Alts: alts}
				break unwrap
			}
		default:
			break unwrap
		}
		if use.Kind() == KindLiteral {
			isLiteral = true
		}
	}
	if use.Kind() == KindAny {
		isStatic = false
	}

	// Only legal literal values are allowed at resolution time.
	if lt, ok := use.(LiteralType); ok {
		isLiteral = true
		if bad := illegalLiteralValues(lt); len(bad) > 0 {
			return nil, Issues{Issue{
				Path:    "/",
				Code:    CodeIllegalLiteral,
				Message: i18n.T(CodeIllegalLiteral, nil),
				Hint:    strings.Join(bad, ", "),
			}}
		}
	}

	// A name reference: resolve through it when defined, defer otherwise.
	if ref, ok := use.(RefType); ok {
		if target, defined := r.registry.Lookup(ref.Name); defined {
			next := actx
			next.Optional = isOptional
			next.Strict = isStrict
			next.Flags = &flags
			next.Parameter = &param
			return r.annotate(target, next)
		}
		return &ForwardDelayedAnnotation{
			Ref:       ref.Name,
			Scope:     actx.Namespace,
			Name:      actx.Name,
			Parameter: param,
			Optional:  isOptional,
			Strict:    isStrict,
			Flags:     flags,
		}, nil
	}

	// The type is recursive or part of a recursive loop.
	tok := use.Token()
	selfRef := actx.Namespace != nil && tok == actx.Namespace.Token()
	if selfRef || r.guard.Has(tok) {
		// If detected via the stack, remove it now; otherwise unrelated
		// future resolutions would trip over it.
		if r.guard.Has(tok) {
			r.guard.Remove(tok)
		}
		return &DelayedAnnotation{
			Type:      use,
			Name:      actx.Name,
			Parameter: param,
			Optional:  isOptional,
			Strict:    isStrict,
			Flags:     flags,
		}, nil
	}

	// Guard against recursive loops entered from elsewhere. Well-known
	// primitive types cannot recurse and stay off the stack.
	if isStatic && !wellKnown(use) {
		r.guard.Enter(tok)
	}

	serde := emptyConfig(flags)
	if st, ok := use.(StructType); ok && isStatic && !isLiteral {
		var err error
		serde, err = r.serdeConfig(st, flags)
		if err != nil {
			return nil, err
		}
	}

	return &Annotation{
		Resolved:   use,
		Origin:     orig,
		UnResolved: unresolved,
		Parameter:  param,
		Optional:   isOptional,
		Strict:     isStrict,
		Static:     isStatic,
		Literal:    isLiteral,
		Serde:      serde,
	}, nil
}

// resolveAlias unwraps supertype aliasing down to the underlying description.
func resolveAlias(t Type) Type {
	for {
		a, ok := t.(AliasType)
		if !ok {
			return t
		}
		t = a.Underlying
	}
}

// providerFlags returns flags attached directly to a struct description.
func providerFlags(t Type) (SerdeFlags, bool) {
	st, ok := resolveAlias(t).(StructType)
	if !ok {
		return SerdeFlags{}, false
	}
	zero := reflect.New(st.rt)
	if fp, ok := zero.Interface().(FlagsProvider); ok {
		return fp.SerdeFlags(), true
	}
	if fp, ok := zero.Elem().Interface().(FlagsProvider); ok {
		return fp.SerdeFlags(), true
	}
	return SerdeFlags{}, false
}

// illegalLiteralValues reports literal members outside the legal kinds:
// int, string, bool, bytes, enum member, nil.
func illegalLiteralValues(lt LiteralType) []string {
	var bad []string
	for _, v := range lt.Values {
		if !legalLiteral(v) {
			bad = append(bad, valueToken(v))
		}
	}
	return bad
}

func legalLiteral(v any) bool {
	switch v.(type) {
	case nil, bool, string, []byte, EnumValue:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// wellKnown reports whether a type is a standard scalar form that cannot
// participate in a recursive loop.
func wellKnown(t Type) bool {
	switch t.Kind() {
	case KindString, KindInt, KindFloat, KindBool, KindBytes, KindNil,
		KindAny, KindTime, KindDuration, KindLiteral, KindEnum:
		return true
	}
	return false
}

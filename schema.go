package typical

import (
	"fmt"

	"github.com/ducminhgd/typical/jsonschema"
)

// schemaFor projects an annotation into a JSON Schema document. Recursive
// shapes fall back to a $ref on the type token; seen tracks the tokens on
// the current projection path.
func schemaFor(ann AnnotationT, seen map[string]bool) *jsonschema.Schema {
	a, ok := ann.(*Annotation)
	if !ok {
		switch d := ann.(type) {
		case *DelayedAnnotation:
			return &jsonschema.Schema{Ref: "#/$defs/" + d.Type.Token()}
		case *ForwardDelayedAnnotation:
			return &jsonschema.Schema{Ref: "#/$defs/" + d.Ref}
		}
		return &jsonschema.Schema{}
	}
	return typeSchema(a.Resolved, a, seen)
}

func typeSchema(t Type, a *Annotation, seen map[string]bool) *jsonschema.Schema {
	if ct, ok := t.(ConstrainedType); ok {
		s := typeSchema(ct.Elem, a, seen)
		if ct.Min != nil {
			s.Minimum = ct.Min
		}
		if ct.Max != nil {
			s.Maximum = ct.Max
		}
		if ct.MinLen != nil {
			n := int64(*ct.MinLen)
			s.MinLength = &n
		}
		if ct.MaxLen != nil {
			n := int64(*ct.MaxLen)
			s.MaxLength = &n
		}
		if ct.Pattern != nil {
			s.Pattern = ct.Pattern.String()
		}
		return s
	}
	switch u := t.(type) {
	case PrimitiveType:
		return &jsonschema.Schema{Type: primitiveSchemaType(u.Kind())}
	case LiteralType:
		return &jsonschema.Schema{Enum: append([]any(nil), u.Values...)}
	case EnumType:
		vals := make([]any, len(u.Values))
		for i, m := range u.Values {
			vals[i] = m.Value
		}
		return &jsonschema.Schema{Title: u.Name, Enum: vals}
	case ListType:
		return &jsonschema.Schema{
			Type:  "array",
			Items: typeSchema(resolveAlias(u.Elem), nil, seen),
		}
	case MapType:
		return &jsonschema.Schema{Type: "object"}
	case UnionType:
		alts := make([]*jsonschema.Schema, len(u.Alts))
		for i, alt := range u.Alts {
			alts[i] = typeSchema(resolveAlias(alt), nil, seen)
		}
		return &jsonschema.Schema{AnyOf: alts}
	case StructType:
		return structSchema(u, a, seen)
	case OptionalType:
		s := typeSchema(resolveAlias(u.Elem), a, seen)
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{s, {Type: "null"}}}
	case RefType:
		return &jsonschema.Schema{Ref: "#/$defs/" + u.Name}
	case StrictType:
		return typeSchema(resolveAlias(u.Elem), a, seen)
	case ReadOnlyType:
		return typeSchema(resolveAlias(u.Elem), a, seen)
	}
	return &jsonschema.Schema{}
}

func structSchema(st StructType, a *Annotation, seen map[string]bool) *jsonschema.Schema {
	tok := st.Token()
	if seen[tok] {
		return &jsonschema.Schema{Ref: "#/$defs/" + tok}
	}
	seen[tok] = true
	defer delete(seen, tok)

	s := &jsonschema.Schema{
		Type:       "object",
		Title:      st.ReflectType().Name(),
		Properties: map[string]*jsonschema.Schema{},
	}
	if a == nil || a.Serde == nil {
		return s
	}
	cfg := a.Serde
	for _, name := range cfg.FieldNames() {
		external, mapped := cfg.FieldsOut[name]
		if !mapped {
			continue
		}
		fieldAnn := cfg.Fields[name]
		fs := schemaFor(fieldAnn, seen)
		if def, ok := annotationDefault(fieldAnn); ok && def != nil && def != Ellipsis {
			fs.Description = appendNote(fs.Description, fmt.Sprintf("default: %v", def))
		}
		s.Properties[external] = fs
		if !annotationOptional(fieldAnn) {
			if _, hasDef := annotationDefault(fieldAnn); !hasDef {
				s.Required = append(s.Required, external)
			}
		}
	}
	return s
}

func appendNote(desc, note string) string {
	if desc == "" {
		return note
	}
	return desc + " (" + note + ")"
}

func primitiveSchemaType(k Kind) string {
	switch k {
	case KindString, KindBytes, KindTime, KindDuration:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindNil:
		return "null"
	}
	return ""
}

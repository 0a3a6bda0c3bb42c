package typical

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// buildSerializer assembles the primitive-encoding callable for one
// canonical annotation. The output contains only primitives: strings,
// numbers, bools, nil, []any, and map[string]any, ready for any wire codec.
func (r *Resolver) buildSerializer(a *Annotation) (Serializer, error) {
	inner, err := r.kindSerializer(a)
	if err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		if isNilValue(v) {
			return nil, nil
		}
		return inner(v)
	}, nil
}

func (r *Resolver) kindSerializer(a *Annotation) (Serializer, error) {
	use := a.Resolved
	if ct, ok := use.(ConstrainedType); ok {
		use = ct.Elem
	}
	switch t := use.(type) {
	case EnumType:
		return func(v any) (any, error) {
			if ev, ok := v.(EnumValue); ok {
				return r.anyPrimitive(ev.Value)
			}
			return r.anyPrimitive(v)
		}, nil
	case ListType:
		elem := r.lazy(t.Elem, a.Strict)
		return func(v any) (any, error) {
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return nil, singleIssue(CodeInvalidType, fmt.Sprintf("expected a sequence, got %T", v))
			}
			p, err := elem.get()
			if err != nil {
				return nil, err
			}
			out := make([]any, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				ev, err := p.Primitive(rv.Index(i).Interface())
				if err != nil {
					return nil, rebase(fmt.Sprintf("%d", i), err)
				}
				out[i] = ev
			}
			return out, nil
		}, nil
	case MapType:
		elem := r.lazy(t.Elem, a.Strict)
		keyCase := a.Serde.Flags.Case
		return func(v any) (any, error) {
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Map {
				return nil, singleIssue(CodeInvalidType, fmt.Sprintf("expected a mapping, got %T", v))
			}
			p, err := elem.get()
			if err != nil {
				return nil, err
			}
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				key := fmt.Sprintf("%v", iter.Key().Interface())
				if keyCase != CaseUnchanged {
					key = keyCase.Transform(key)
				}
				ev, err := p.Primitive(iter.Value().Interface())
				if err != nil {
					return nil, rebase(key, err)
				}
				out[key] = ev
			}
			return out, nil
		}, nil
	case StructType:
		return r.structSerializer(t, a)
	case UnionType:
		// The concrete alternative is only known per value.
		return r.anyPrimitive, nil
	}
	switch use.Kind() {
	case KindAny:
		return r.anyPrimitive, nil
	case KindTime:
		return func(v any) (any, error) {
			ts, ok := coerceTime(v)
			if !ok {
				return nil, singleIssue(CodeInvalidType, fmt.Sprintf("expected a time, got %T", v))
			}
			return ts.(time.Time).Format(time.RFC3339), nil
		}, nil
	case KindDuration:
		return func(v any) (any, error) {
			d, ok := coerceDuration(v)
			if !ok {
				return nil, singleIssue(CodeInvalidType, fmt.Sprintf("expected a duration, got %T", v))
			}
			return d.(time.Duration).Seconds(), nil
		}, nil
	case KindBytes:
		return func(v any) (any, error) {
			b, ok := coerceBytes(v)
			if !ok {
				return nil, singleIssue(CodeInvalidType, fmt.Sprintf("expected bytes, got %T", v))
			}
			return string(b.([]byte)), nil
		}, nil
	}
	return func(v any) (any, error) {
		out, ok := coerceScalar(use, v)
		if !ok {
			return nil, singleIssue(CodeInvalidType, fmt.Sprintf("cannot encode %T as %s", v, use.Token()))
		}
		return out, nil
	}, nil
}

// structSerializer encodes an instance field by field: only mapped output
// fields appear, under their external names, with omitted values dropped.
func (r *Resolver) structSerializer(st StructType, a *Annotation) (Serializer, error) {
	cfg := a.Serde
	rt := st.ReflectType()
	fieldProtos := make(map[string]Protocol, len(cfg.Fields))
	for name, ann := range cfg.Fields {
		p, err := r.protocolFor(ann)
		if err != nil {
			return nil, rebase(name, err)
		}
		fieldProtos[name] = p
	}
	return func(v any) (any, error) {
		vt := reflect.TypeOf(v)
		for vt.Kind() == reflect.Pointer {
			vt = vt.Elem()
		}
		if vt != rt {
			return nil, singleIssue(CodeInvalidType, fmt.Sprintf("expected %s, got %T", rt, v))
		}
		out := make(map[string]any, len(cfg.FieldsOut))
		for _, name := range cfg.FieldNames() {
			external, mapped := cfg.FieldsOut[name]
			if !mapped {
				continue
			}
			fv := cfg.Getters[name](v)
			if omitted(fv, cfg.OmitValues) {
				continue
			}
			if fv == nil {
				out[external] = nil
				continue
			}
			ev, err := fieldProtos[name].Primitive(fv)
			if err != nil {
				return nil, rebase(name, err)
			}
			out[external] = ev
		}
		return out, nil
	}, nil
}

func omitted(v any, omit []any) bool {
	for _, o := range omit {
		if valuesEqual(o, v) {
			return true
		}
		if o == nil && isNilValue(v) {
			return true
		}
	}
	return false
}

// anyPrimitive encodes a value whose shape was not statically known,
// resolving its runtime type on the fly.
func (r *Resolver) anyPrimitive(v any) (any, error) {
	if isNilValue(v) {
		return nil, nil
	}
	if ev, ok := v.(EnumValue); ok {
		return r.anyPrimitive(ev.Value)
	}
	switch t := v.(type) {
	case string, bool, int, int64, float64:
		return t, nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.Format(time.RFC3339), nil
	case time.Duration:
		return t.Seconds(), nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()):
		if rv.CanInt() {
			return rv.Int(), nil
		}
		return int64(rv.Uint()), nil
	case rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64:
		return rv.Float(), nil
	case rv.Kind() == reflect.String:
		return rv.String(), nil
	case rv.Kind() == reflect.Bool:
		return rv.Bool(), nil
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := r.anyPrimitive(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case rv.Kind() == reflect.Map:
		out := make(map[string]any, rv.Len())
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprintf("%v", iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev, err := r.anyPrimitive(byKey[k].Interface())
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case rv.Kind() == reflect.Struct, rv.Kind() == reflect.Pointer:
		p, err := r.Resolve(typeDescOf(v))
		if err != nil {
			return nil, err
		}
		return p.Primitive(v)
	}
	return nil, singleIssue(CodeInvalidType, fmt.Sprintf("cannot encode %T", v))
}

package typical

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ducminhgd/typical/i18n"
)

// buildDeserializer assembles the transmute callable for one canonical
// annotation. The callable accepts wire-shaped values (primitives, maps,
// slices) as well as already-shaped instances and returns the described Go
// shape.
func (r *Resolver) buildDeserializer(a *Annotation, c *Constraints) (Deserializer, error) {
	inner, err := r.kindDeserializer(a)
	if err != nil {
		return nil, err
	}
	optional := a.Optional
	return func(v any) (any, error) {
		if isNilValue(v) {
			if optional {
				return nil, nil
			}
			return nil, Issues{Issue{
				Path:    "/",
				Code:    CodeRequired,
				Message: i18n.T(CodeRequired, nil),
			}}
		}
		if c.Strict {
			if err := c.checkShapeStrict(v); err != nil {
				return nil, err
			}
		}
		out, err := inner(v)
		if err != nil {
			return nil, err
		}
		if err := c.checkBounds(out); err != nil {
			return nil, err
		}
		return out, nil
	}, nil
}

func (r *Resolver) kindDeserializer(a *Annotation) (Deserializer, error) {
	use := a.Resolved
	if ct, ok := use.(ConstrainedType); ok {
		use = ct.Elem
	}
	if a.Literal {
		return literalDeserializer(use), nil
	}
	switch t := use.(type) {
	case PrimitiveType:
		return scalarDeserializer(use), nil
	case EnumType:
		return enumDeserializer(t), nil
	case ListType:
		return r.listDeserializer(t, a.Strict), nil
	case MapType:
		return r.mapDeserializer(t, a.Strict), nil
	case UnionType:
		return r.unionDeserializer(t, a.Strict), nil
	case StructType:
		return r.structDeserializer(t, a)
	}
	return scalarDeserializer(use), nil
}

func literalDeserializer(t Type) Deserializer {
	var legal []any
	switch lt := t.(type) {
	case LiteralType:
		legal = lt.Values
	case EnumType:
		for _, m := range lt.Values {
			legal = append(legal, m.Value)
		}
	}
	return func(v any) (any, error) {
		for _, l := range legal {
			if valuesEqual(l, v) {
				return v, nil
			}
		}
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeIllegalLiteral,
			Message: i18n.T(CodeIllegalLiteral, nil),
			Hint:    fmt.Sprintf("%v", v),
		}}
	}
}

func enumDeserializer(t EnumType) Deserializer {
	return func(v any) (any, error) {
		for _, m := range t.Values {
			if valuesEqual(m.Value, v) {
				return m.Value, nil
			}
			// A member name also selects the member.
			if s, ok := v.(string); ok && s == m.Name {
				return m.Value, nil
			}
		}
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeInvalidEnum,
			Message: i18n.T(CodeInvalidEnum, nil),
			Hint:    fmt.Sprintf("%v", v),
			Params:  map[string]any{"enum": t.Name, "got": v},
		}}
	}
}

func scalarDeserializer(t Type) Deserializer {
	return func(v any) (any, error) {
		out, ok := coerceScalar(t, v)
		if !ok {
			return nil, Issues{Issue{
				Path:    "/",
				Code:    CodeParseError,
				Message: i18n.T(CodeParseError, nil),
				Params:  map[string]any{"expected": t.Token(), "got": fmt.Sprintf("%T", v)},
			}}
		}
		return out, nil
	}
}

func (r *Resolver) listDeserializer(t ListType, strict bool) Deserializer {
	elem := r.lazy(t.Elem, strict)
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
			ev, err := p.Transmute(rv.Index(i).Interface())
			if err != nil {
				return nil, rebase(strconv.Itoa(i), err)
			}
			out[i] = ev
		}
		return out, nil
	}
}

func (r *Resolver) mapDeserializer(t MapType, strict bool) Deserializer {
	key := r.lazy(t.Key, strict)
	elem := r.lazy(t.Elem, strict)
	return func(v any) (any, error) {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map {
			return nil, singleIssue(CodeInvalidType, fmt.Sprintf("expected a mapping, got %T", v))
		}
		kp, err := key.get()
		if err != nil {
			return nil, err
		}
		ep, err := elem.get()
		if err != nil {
			return nil, err
		}
		out := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			kv, err := kp.Transmute(iter.Key().Interface())
			if err != nil {
				return nil, rebase(fmt.Sprintf("%v", iter.Key().Interface()), err)
			}
			ev, err := ep.Transmute(iter.Value().Interface())
			if err != nil {
				return nil, rebase(fmt.Sprintf("%v", kv), err)
			}
			out[kv] = ev
		}
		return out, nil
	}
}

// unionDeserializer tries each alternative in declared order and keeps the
// first that accepts the value.
func (r *Resolver) unionDeserializer(t UnionType, strict bool) Deserializer {
	alts := make([]*lazyProtocol, len(t.Alts))
	for i, alt := range t.Alts {
		alts[i] = r.lazy(alt, strict)
	}
	return func(v any) (any, error) {
		var issues Issues
		for _, alt := range alts {
			p, err := alt.get()
			if err != nil {
				return nil, err
			}
			out, err := p.Transmute(v)
			if err == nil {
				return out, nil
			}
			if iss, ok := AsIssues(err); ok {
				issues = AppendIssues(issues, iss...)
			}
		}
		return nil, AppendIssues(issues, Issue{
			Path:    "/",
			Code:    CodeInvalidType,
			Message: i18n.T(CodeInvalidType, nil),
			Hint:    "no union alternative accepted the value",
		})
	}
}

// structDeserializer constructs an instance of the backing Go type from a
// mapping keyed by external names, applying renames, defaults, and per-field
// transmutation. An instance of the type itself passes through.
func (r *Resolver) structDeserializer(st StructType, a *Annotation) (Deserializer, error) {
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
		rv := reflect.ValueOf(v)
		vt := rv.Type()
		for vt.Kind() == reflect.Pointer {
			vt = vt.Elem()
		}
		if vt == rt {
			return v, nil
		}
		if rv.Kind() != reflect.Map {
			return nil, singleIssue(CodeInvalidType, fmt.Sprintf("expected a mapping or %s, got %T", rt, v))
		}

		// Normalize incoming keys to strings and rename to internal names.
		byInternal := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			external := fmt.Sprintf("%v", iter.Key().Interface())
			internal, ok := cfg.FieldsIn[external]
			if !ok {
				// Unknown and read-only inputs are ignored.
				continue
			}
			byInternal[internal] = iter.Value().Interface()
		}

		out := reflect.New(rt).Elem()
		var issues Issues
		for _, name := range cfg.FieldNames() {
			ann := cfg.Fields[name]
			p := fieldProtos[name]
			idx, settable := cfg.fieldIndex[name]
			if !settable {
				continue
			}
			// Read-only fields are not constructor parameters: input cannot
			// supply them and their absence is never an error.
			if len(cfg.constructible) > 0 {
				if _, ok := cfg.constructible[name]; !ok {
					continue
				}
			}
			raw, present := byInternal[name]
			if !present {
				def, hasDef := annotationDefault(ann)
				switch {
				case hasDef && def != Ellipsis && def != nil:
					raw = def
				case annotationOptional(ann):
					continue
				default:
					issues = AppendIssues(issues, Issue{
						Path:    "/" + name,
						Code:    CodeRequired,
						Message: i18n.T(CodeRequired, nil),
					})
					continue
				}
			}
			fv, err := p.Transmute(raw)
			if err != nil {
				issues = AppendIssues(issues, rebase(name, err)...)
				continue
			}
			if err := assignValue(out.FieldByIndex(idx), fv); err != nil {
				issues = AppendIssues(issues, Issue{
					Path:    "/" + name,
					Code:    CodeInvalidType,
					Message: err.Error(),
				})
			}
		}
		if len(issues) > 0 {
			return nil, issues
		}
		return out.Interface(), nil
	}, nil
}

func annotationDefault(ann AnnotationT) (any, bool) {
	switch a := ann.(type) {
	case *Annotation:
		return a.Parameter.Default, a.Parameter.HasDefault
	case *DelayedAnnotation:
		return a.Parameter.Default, a.Parameter.HasDefault
	case *ForwardDelayedAnnotation:
		return a.Parameter.Default, a.Parameter.HasDefault
	}
	return nil, false
}

func annotationOptional(ann AnnotationT) bool {
	switch a := ann.(type) {
	case *Annotation:
		return a.Optional
	case *DelayedAnnotation:
		return a.Optional
	case *ForwardDelayedAnnotation:
		return a.Optional
	}
	return false
}

// assignValue sets a transmuted value into a struct field, allocating
// through pointers and converting compatible representations.
func assignValue(fv reflect.Value, v any) error {
	if v == nil {
		// Leave the zero value; pointer fields stay nil.
		return nil
	}
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(fv.Type()) {
		fv.Set(rv.Convert(fv.Type()))
		return nil
	}
	// Generic containers produced by nested transmutation need element-wise
	// conversion back into the declared Go container.
	switch fv.Kind() {
	case reflect.Slice:
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			out := reflect.MakeSlice(fv.Type(), rv.Len(), rv.Len())
			for i := 0; i < rv.Len(); i++ {
				if err := assignValue(out.Index(i), indirectAny(rv.Index(i))); err != nil {
					return err
				}
			}
			fv.Set(out)
			return nil
		}
	case reflect.Map:
		if rv.Kind() == reflect.Map {
			out := reflect.MakeMapWithSize(fv.Type(), rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				kv := reflect.New(fv.Type().Key()).Elem()
				ev := reflect.New(fv.Type().Elem()).Elem()
				if err := assignValue(kv, indirectAny(iter.Key())); err != nil {
					return err
				}
				if err := assignValue(ev, indirectAny(iter.Value())); err != nil {
					return err
				}
				out.SetMapIndex(kv, ev)
			}
			fv.Set(out)
			return nil
		}
	}
	return fmt.Errorf("cannot assign %T to %s", v, fv.Type())
}

func indirectAny(rv reflect.Value) any {
	if rv.Kind() == reflect.Interface && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// lazyProtocol resolves a nested description on first use, outside the
// resolver lock. Failed attempts are retried; success is pinned.
type lazyProtocol struct {
	r      *Resolver
	t      Type
	strict bool

	mu sync.Mutex
	p  Protocol
}

func (r *Resolver) lazy(t Type, strict bool) *lazyProtocol {
	return &lazyProtocol{r: r, t: t, strict: strict}
}

func (l *lazyProtocol) get() (Protocol, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.p != nil {
		return l.p, nil
	}
	var opts []ResolveOption
	if l.strict {
		opts = append(opts, AsStrict())
	}
	p, err := l.r.Resolve(l.t, opts...)
	if err != nil {
		return nil, err
	}
	l.p = p
	return p, nil
}

// ---- scalar coercion ----

// coerceScalar converts v into the natural Go representation of a scalar
// description. It reports false when the value cannot be interpreted.
func coerceScalar(t Type, v any) (any, bool) {
	switch t.Kind() {
	case KindString:
		return coerceString(v)
	case KindInt:
		return coerceInt(v)
	case KindFloat:
		return coerceFloat(v)
	case KindBool:
		return coerceBool(v)
	case KindBytes:
		return coerceBytes(v)
	case KindTime:
		return coerceTime(v)
	case KindDuration:
		return coerceDuration(v)
	case KindAny:
		return v, true
	case KindNil:
		return nil, v == nil
	}
	return nil, false
}

func coerceString(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	}
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()), rv.Kind() == reflect.Float32, rv.Kind() == reflect.Float64, rv.Kind() == reflect.Bool:
		return fmt.Sprintf("%v", v), true
	case rv.Kind() == reflect.String:
		return rv.String(), true
	}
	return nil, false
}

func coerceInt(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			return int64(1), true
		}
		return int64(0), true
	case isIntKind(rv.Kind()):
		if rv.CanInt() {
			return rv.Int(), true
		}
		return int64(rv.Uint()), true
	case rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64:
		f := rv.Float()
		if f != float64(int64(f)) {
			return nil, false
		}
		return int64(f), true
	case rv.Kind() == reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}
	return nil, false
}

func coerceFloat(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()):
		if rv.CanInt() {
			return float64(rv.Int()), true
		}
		return float64(rv.Uint()), true
	case rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64:
		return rv.Float(), true
	case rv.Kind() == reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

func coerceBool(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Bool:
		return rv.Bool(), true
	case isIntKind(rv.Kind()):
		var n int64
		if rv.CanInt() {
			n = rv.Int()
		} else {
			n = int64(rv.Uint())
		}
		switch n {
		case 0:
			return false, true
		case 1:
			return true, true
		}
		return nil, false
	case rv.Kind() == reflect.String:
		b, err := strconv.ParseBool(strings.TrimSpace(rv.String()))
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return nil, false
}

func coerceBytes(v any) (any, bool) {
	switch t := v.(type) {
	case []byte:
		return t, true
	case string:
		return []byte(t), true
	}
	return nil, false
}

func coerceTime(v any) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		ts, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil, false
		}
		return ts, true
	}
	rv := reflect.ValueOf(v)
	if isIntKind(rv.Kind()) && rv.CanInt() {
		return time.Unix(rv.Int(), 0).UTC(), true
	}
	return nil, false
}

func coerceDuration(v any) (any, bool) {
	switch t := v.(type) {
	case time.Duration:
		return t, true
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			return nil, false
		}
		return d, true
	}
	rv := reflect.ValueOf(v)
	switch {
	case isIntKind(rv.Kind()) && rv.CanInt():
		return time.Duration(rv.Int()) * time.Second, true
	case rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64:
		return time.Duration(rv.Float() * float64(time.Second)), true
	}
	return nil, false
}

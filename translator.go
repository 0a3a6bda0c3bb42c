package typical

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/ducminhgd/typical/i18n"
)

// translate converts an instance of one structured type into another,
// matching fields by internal name: each constructible field of the target
// is filled from the same-named field of the source and transmuted into the
// target's declared shape.
func (r *Resolver) translate(a *Annotation, v any, target Type) (any, error) {
	srcCfg := a.Serde
	if _, ok := a.Resolved.(StructType); !ok || srcCfg == nil || len(srcCfg.Fields) == 0 {
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeNotTranslatable,
			Message: i18n.T(CodeNotTranslatable, nil),
			Params:  map[string]any{"from": a.Resolved.Token()},
		}}
	}
	tp, err := r.Resolve(target)
	if err != nil {
		return nil, err
	}
	tAnn, ok := tp.Annotation().(*Annotation)
	if !ok {
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeNotTranslatable,
			Message: i18n.T(CodeNotTranslatable, nil),
			Params:  map[string]any{"to": target.Token()},
		}}
	}
	if _, ok := tAnn.Resolved.(StructType); !ok {
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeNotTranslatable,
			Message: i18n.T(CodeNotTranslatable, nil),
			Params:  map[string]any{"to": tAnn.Resolved.Token()},
		}}
	}

	// Feed target construction through its own deserializer so renames,
	// defaults, and per-field coercions all apply. Input is keyed by the
	// target's external names; FieldsIn is the pre-exclusion view, so fields
	// the target renames or hides from output still translate.
	external := make(map[string]string, len(tAnn.Serde.FieldsIn))
	for ext, internal := range tAnn.Serde.FieldsIn {
		external[internal] = ext
	}
	in := make(map[string]any, len(srcCfg.Fields))
	for _, name := range srcCfg.FieldNames() {
		get, ok := srcCfg.Getters[name]
		if !ok {
			continue
		}
		ext, ok := external[name]
		if !ok {
			continue
		}
		in[ext] = get(v)
	}
	return tp.Transmute(in)
}

// iterate yields (name, value) pairs: field names for structured instances,
// stringified keys for mappings, indices for sequences. Scalars are not
// iterable.
func (r *Resolver) iterate(a *Annotation, v any) (func(yield func(string, any) bool), error) {
	if isNilValue(v) {
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeNotIterable,
			Message: i18n.T(CodeNotIterable, nil),
		}}
	}
	if ev, ok := v.(EnumValue); ok {
		v = ev.Value
	}
	if cfg := a.Serde; cfg != nil && len(cfg.Fields) > 0 {
		if _, ok := a.Resolved.(StructType); ok {
			names := cfg.FieldNames()
			return func(yield func(string, any) bool) {
				for _, name := range names {
					if !yield(name, cfg.Getters[name](v)) {
						return
					}
				}
			}, nil
		}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(string, any) bool) {
			for i := 0; i < rv.Len(); i++ {
				if !yield(fmt.Sprintf("%d", i), rv.Index(i).Interface()) {
					return
				}
			}
		}, nil
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprintf("%v", iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		return func(yield func(string, any) bool) {
			for _, k := range keys {
				if !yield(k, byKey[k].Interface()) {
					return
				}
			}
		}, nil
	}
	return nil, Issues{Issue{
		Path:    "/",
		Code:    CodeNotIterable,
		Message: i18n.T(CodeNotIterable, nil),
		Params:  map[string]any{"got": fmt.Sprintf("%T", v)},
	}}
}

package typical

import (
	"github.com/ducminhgd/typical/i18n"
	"github.com/ducminhgd/typical/internal/reflectutil"
)

// serdeConfig derives the field-mapping artifact for one structured type:
// per-field annotations, the bidirectional name maps after renames, case
// conversion, and excludes, plus the omission rules applied at encode time.
func (r *Resolver) serdeConfig(st StructType, flags SerdeFlags) (*SerdeConfig, error) {
	if attached, ok := providerFlags(st); ok {
		flags = attached
	}
	rt := st.ReflectType()
	rfields := reflectutil.Fields(rt)
	defaults := reflectutil.Defaults(rt)
	params := reflectutil.Params(rt)

	all := make(map[string]AnnotationT, len(rfields))
	allOrder := make([]string, 0, len(rfields))
	getters := make(map[string]Getter, len(rfields))
	index := make(map[string][]int, len(rfields))
	// Renames, includes, and excludes apply to this level only.
	nested := flags.nested()
	for _, f := range rfields {
		ft := TypeFromReflect(f.Type)
		if f.ReadOnly {
			ft = ReadOnlyOf(ft)
		}
		def, hasDef := defaults[f.Name]
		ann, err := r.annotate(ft, annotateContext{
			Name:       f.Name,
			Flags:      &nested,
			Default:    def,
			HasDefault: hasDef,
			Namespace:  st,
		})
		if err != nil {
			return nil, rebase(f.Name, err)
		}
		all[f.Name] = ann
		allOrder = append(allOrder, f.Name)
		getters[f.Name] = Getter(reflectutil.Getter(f.Index))
		index[f.Name] = f.Index
	}

	fields := all
	order := allOrder
	if flags.SignatureOnly {
		fields = make(map[string]AnnotationT, len(params))
		order = order[:0:0]
		for _, name := range allOrder {
			if _, ok := params[name]; ok {
				fields[name] = all[name]
				order = append(order, name)
			}
		}
	}

	// Seed the output map as identity, re-adding explicitly included fields.
	fieldsOut := make(map[string]string, len(fields))
	outOrder := append([]string(nil), order...)
	for _, name := range order {
		fieldsOut[name] = name
	}
	for _, name := range flags.Include {
		if _, declared := all[name]; !declared {
			continue
		}
		if _, present := fieldsOut[name]; !present {
			fieldsOut[name] = name
			outOrder = append(outOrder, name)
			if _, kept := fields[name]; !kept {
				fields[name] = all[name]
				order = append(order, name)
			}
		}
	}
	// Explicit renames, then case conversion; renames win for their fields.
	for internal, external := range flags.Fields {
		if _, ok := fieldsOut[internal]; ok {
			fieldsOut[internal] = external
		}
	}
	if flags.Case != CaseUnchanged {
		for internal, external := range fieldsOut {
			if _, renamed := flags.Fields[internal]; renamed {
				continue
			}
			fieldsOut[internal] = flags.Case.Transform(external)
		}
	}

	// Split omission rules: Type entries drop fields by declared type here;
	// everything else drops by current value at encode time.
	omitTypes := make(map[string]struct{})
	var omitValues []any
	for _, o := range flags.Omit {
		if tt, ok := o.(Type); ok {
			omitTypes[tt.Token()] = struct{}{}
		} else {
			omitValues = append(omitValues, o)
		}
	}
	if len(omitTypes) > 0 {
		for _, name := range outOrder {
			if _, still := fieldsOut[name]; !still {
				continue
			}
			if annotationMatchesOmit(fields[name], omitTypes) {
				delete(fieldsOut, name)
			}
		}
	}

	// The input map is the inverse of the output map, restricted to fields
	// the type can be constructed with. Two internal fields colliding on one
	// external name is a configuration error.
	fieldsIn := make(map[string]string, len(fieldsOut))
	for _, internal := range outOrder {
		external, ok := fieldsOut[internal]
		if !ok {
			continue
		}
		if prev, dup := fieldsIn[external]; dup {
			return nil, Issues{Issue{
				Path:    "/" + external,
				Code:    CodeFieldCollision,
				Message: i18n.T(CodeFieldCollision, nil),
				Hint:    prev + ", " + internal,
			}}
		}
		fieldsIn[external] = internal
	}
	if len(params) > 0 {
		for external, internal := range fieldsIn {
			if _, ok := params[internal]; !ok {
				delete(fieldsIn, external)
			}
		}
	}

	// Exclude applies to output only; excluded fields stay settable on input.
	for _, name := range flags.Exclude {
		delete(fieldsOut, name)
	}

	return &SerdeConfig{
		Flags:         flags,
		Fields:        fields,
		FieldsOut:     fieldsOut,
		FieldsIn:      fieldsIn,
		Getters:       getters,
		OmitValues:    omitValues,
		fieldOrder:    outOrder,
		fieldIndex:    index,
		constructible: params,
	}, nil
}

// annotationMatchesOmit reports whether a field's declared type names one of
// the omitted types.
func annotationMatchesOmit(ann AnnotationT, omitTypes map[string]struct{}) bool {
	match := func(tok string) bool {
		_, ok := omitTypes[tok]
		return ok
	}
	switch a := ann.(type) {
	case *Annotation:
		if match(a.Resolved.Token()) || match(a.Origin.Token()) {
			return true
		}
		if a.Parameter.HasDefault {
			if t, ok := a.Parameter.Default.(Type); ok && match(t.Token()) {
				return true
			}
		}
	case *DelayedAnnotation:
		return match(a.Type.Token())
	case *ForwardDelayedAnnotation:
		return match(RefTo(a.Ref).Token())
	}
	return false
}

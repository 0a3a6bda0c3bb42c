package typical

import (
	"sync"

	"github.com/ducminhgd/typical/i18n"
	"github.com/ducminhgd/typical/jsonschema"
)

// Deserializer converts a wire-shaped value into the described shape.
type Deserializer func(v any) (any, error)

// Serializer converts an instance of the described shape into primitives.
type Serializer func(v any) (any, error)

// Protocol is the complete resolved artifact for one canonical annotation:
// the annotation itself plus the callables built from it.
type Protocol interface {
	// Annotation returns the canonical (or delayed) annotation this protocol
	// was resolved from.
	Annotation() AnnotationT
	// Transmute coerces or validates a raw value into the described shape.
	Transmute(v any) (any, error)
	// Primitive converts an instance back into primitive values.
	Primitive(v any) (any, error)
	// Validate checks a value against the constraints without transmuting.
	Validate(v any) (any, error)
	// Translate converts an instance into another structured type.
	Translate(v any, target Type) (any, error)
	// ToJSON encodes an instance through Primitive.
	ToJSON(v any) ([]byte, error)
	// Constraints returns the validation rules derived from the annotation.
	Constraints() *Constraints
	// Schema projects the annotation into a JSON Schema document.
	Schema() *jsonschema.Schema
}

// SerdeProtocol is the concrete protocol for a fully canonicalized
// annotation. Instances are immutable once built and shared through the
// resolver cache.
type SerdeProtocol struct {
	resolver     *Resolver
	annotation   *Annotation
	deserializer Deserializer
	serializer   Serializer
	constraints  *Constraints
}

func (p *SerdeProtocol) Annotation() AnnotationT { return p.annotation }

func (p *SerdeProtocol) Constraints() *Constraints { return p.constraints }

func (p *SerdeProtocol) Transmute(v any) (any, error) {
	return p.deserializer(v)
}

func (p *SerdeProtocol) Primitive(v any) (any, error) {
	return p.serializer(v)
}

// Validate checks v and returns it (coerced when lenient) or an error. It
// never mutates structured instances.
func (p *SerdeProtocol) Validate(v any) (any, error) {
	return p.constraints.Validate(v)
}

// Validator reports validity without raising: the error is returned as a
// value alongside the input.
func (p *SerdeProtocol) Validator(v any) (any, error, bool) {
	out, err := p.constraints.Validate(v)
	if err != nil {
		return v, err, false
	}
	return out, nil, true
}

func (p *SerdeProtocol) Translate(v any, target Type) (any, error) {
	return p.resolver.translate(p.annotation, v, target)
}

// Iterate yields (field name, value) pairs for structured instances and
// (index, element) pairs for sequences.
func (p *SerdeProtocol) Iterate(v any) (func(yield func(string, any) bool), error) {
	return p.resolver.iterate(p.annotation, v)
}

// IterateValues yields values only.
func (p *SerdeProtocol) IterateValues(v any) (func(yield func(any) bool), error) {
	pairs, err := p.Iterate(v)
	if err != nil {
		return nil, err
	}
	return func(yield func(any) bool) {
		pairs(func(_ string, val any) bool { return yield(val) })
	}, nil
}

func (p *SerdeProtocol) ToJSON(v any) ([]byte, error) {
	return p.resolver.toJSON(p, v)
}

// Schema projects the annotation into a JSON Schema document.
func (p *SerdeProtocol) Schema() *jsonschema.Schema {
	return schemaFor(p.annotation, make(map[string]bool))
}

// DelayedSerdeProtocol forwards every operation to a protocol resolved on
// first use. It stands in for self-referential and forward-referenced types:
// cheap to construct, it retries resolution each call until the target
// becomes resolvable, then caches the result on itself.
type DelayedSerdeProtocol struct {
	resolver   *Resolver
	annotation AnnotationT

	mu       sync.Mutex
	resolved Protocol
}

func (d *DelayedSerdeProtocol) Annotation() AnnotationT { return d.annotation }

// ensure resolves the delayed target, caching success. Failures are returned
// but never cached, so registering the missing name later unblocks the
// protocol.
func (d *DelayedSerdeProtocol) ensure() (Protocol, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.resolved != nil {
		return d.resolved, nil
	}
	var (
		p   Protocol
		err error
	)
	switch a := d.annotation.(type) {
	case *DelayedAnnotation:
		p, err = d.resolver.Resolve(a.Type, delayedOpts(a.Name, a.Parameter, a.Optional, a.Strict, a.Flags)...)
	case *ForwardDelayedAnnotation:
		target, ok := d.resolver.registry.Lookup(a.Ref)
		if !ok {
			return nil, Issues{Issue{
				Path:    "/",
				Code:    CodeUnresolvedRef,
				Message: i18n.T(CodeUnresolvedRef, nil),
				Hint:    a.Ref,
			}}
		}
		p, err = d.resolver.Resolve(target, delayedOpts(a.Name, a.Parameter, a.Optional, a.Strict, a.Flags)...)
	default:
		p, err = nil, singleIssue(CodeUnresolvedRef, "unresolvable delayed annotation")
	}
	if err != nil {
		return nil, err
	}
	// The target may itself still be delayed (mutual recursion); forwarding
	// to it is correct, but only a concrete protocol is worth pinning.
	if _, concrete := p.(*SerdeProtocol); concrete {
		d.resolved = p
	}
	return p, nil
}

func delayedOpts(name string, param Parameter, optional, strict bool, flags SerdeFlags) []ResolveOption {
	opts := []ResolveOption{WithParameter(param), WithFlags(flags)}
	if name != "" {
		opts = append(opts, WithName(name))
	}
	if optional {
		opts = append(opts, AsOptional())
	}
	if strict {
		opts = append(opts, AsStrict())
	}
	return opts
}

func (d *DelayedSerdeProtocol) Transmute(v any) (any, error) {
	p, err := d.ensure()
	if err != nil {
		return nil, err
	}
	return p.Transmute(v)
}

func (d *DelayedSerdeProtocol) Primitive(v any) (any, error) {
	p, err := d.ensure()
	if err != nil {
		return nil, err
	}
	return p.Primitive(v)
}

func (d *DelayedSerdeProtocol) Validate(v any) (any, error) {
	p, err := d.ensure()
	if err != nil {
		return nil, err
	}
	return p.Validate(v)
}

func (d *DelayedSerdeProtocol) Translate(v any, target Type) (any, error) {
	p, err := d.ensure()
	if err != nil {
		return nil, err
	}
	return p.Translate(v, target)
}

func (d *DelayedSerdeProtocol) ToJSON(v any) ([]byte, error) {
	p, err := d.ensure()
	if err != nil {
		return nil, err
	}
	return p.ToJSON(v)
}

func (d *DelayedSerdeProtocol) Constraints() *Constraints {
	p, err := d.ensure()
	if err != nil {
		return &Constraints{Type: Any()}
	}
	return p.Constraints()
}

func (d *DelayedSerdeProtocol) Schema() *jsonschema.Schema {
	p, err := d.ensure()
	if err != nil {
		return &jsonschema.Schema{}
	}
	return p.Schema()
}

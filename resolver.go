package typical

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ducminhgd/typical/internal/reflectutil"
	"github.com/ducminhgd/typical/internal/resolveguard"
)

// Resolver is the protocol cache and builder: the top-level entry point that
// canonicalizes type descriptions, orchestrates the recursion guard and the
// field-mapping builder, invokes the encode/decode/constraint factories, and
// memoizes the resulting protocols.
//
// The protocol cache is unbounded and lives for the process lifetime; the
// type universe of a process is assumed bounded. Access is serialized so a
// never-before-seen annotation is built at most once and partially-built
// entries are never observable. Failed resolutions are never cached.
type Resolver struct {
	mu       sync.Mutex
	cache    map[string]*SerdeProtocol
	guard    *resolveguard.Guard
	registry *Registry
	strict   bool
	log      zerolog.Logger

	annosMu sync.Mutex
	annos   map[protocolsKey]map[string]Protocol
}

type protocolsKey struct {
	rt     reflect.Type
	strict bool
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithLogger attaches a logger; the resolver emits debug events on cache
// misses and delayed resolutions.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithStrict makes strict validation the default for every resolution done
// through this resolver.
func WithStrict() Option {
	return func(r *Resolver) { r.strict = true }
}

// WithRegistry shares a named-type registry between resolvers.
func WithRegistry(reg *Registry) Option {
	return func(r *Resolver) { r.registry = reg }
}

// NewResolver returns a ready resolver with an empty cache and registry.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		cache:    make(map[string]*SerdeProtocol),
		guard:    resolveguard.New(),
		registry: NewRegistry(),
		log:      zerolog.Nop(),
		annos:    make(map[protocolsKey]map[string]Protocol),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Registry exposes the named-type registry forward references resolve
// against.
func (r *Resolver) Registry() *Registry { return r.registry }

func (r *Resolver) strictDefault() bool { return r.strict || StrictModeEnabled() }

// ResolveOption adjusts the context of a single resolution.
type ResolveOption func(*annotateContext)

// WithName records the originating field or argument name.
func WithName(name string) ResolveOption {
	return func(c *annotateContext) { c.Name = name }
}

// WithParameter supplies the full originating parameter.
func WithParameter(p Parameter) ResolveOption {
	return func(c *annotateContext) { c.Parameter = &p }
}

// WithFlags supplies projection flags for this resolution.
func WithFlags(f SerdeFlags) ResolveOption {
	return func(c *annotateContext) { c.Flags = &f }
}

// AsOptional allows null values regardless of the description.
func AsOptional() ResolveOption {
	return func(c *annotateContext) { c.Optional = true }
}

// AsStrict validates instead of coercing for this resolution.
func AsStrict() ResolveOption {
	return func(c *annotateContext) { c.Strict = true }
}

// WithDefault records a default value for the originating parameter.
func WithDefault(v any) ResolveOption {
	return func(c *annotateContext) { c.Default = v; c.HasDefault = true }
}

// WithNamespace marks the enclosing type, so direct self-references defer.
func WithNamespace(ns Type) ResolveOption {
	return func(c *annotateContext) { c.Namespace = ns }
}

// Resolve canonicalizes a type description and builds or fetches its
// protocol. Identical canonical annotations return the identical protocol
// instance. Descriptions that cannot be resolved yet yield a delayed
// protocol that resolves itself on first use.
func (r *Resolver) Resolve(t Type, opts ...ResolveOption) (Protocol, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(t, opts...)
}

func (r *Resolver) resolveLocked(t Type, opts ...ResolveOption) (Protocol, error) {
	var actx annotateContext
	for _, o := range opts {
		o(&actx)
	}
	// The in-flight stack is scoped to one top-level resolution; clear it on
	// the way out whether we succeed or fail.
	defer r.guard.Reset()
	ann, err := r.annotate(t, actx)
	if err != nil {
		return nil, err
	}
	return r.protocolFor(ann)
}

// protocolFor assembles (or fetches) the protocol for a canonical
// annotation. Delayed annotations produce a forwarding placeholder instead.
func (r *Resolver) protocolFor(ann AnnotationT) (Protocol, error) {
	a, ok := ann.(*Annotation)
	if !ok {
		r.log.Debug().Str("key", ann.CacheKey()).Msg("deferring resolution")
		return &DelayedSerdeProtocol{resolver: r, annotation: ann}, nil
	}
	key := a.CacheKey()
	if p, hit := r.cache[key]; hit {
		return p, nil
	}
	r.log.Debug().Str("key", key).Msg("building protocol")
	constraints := r.constraintsFor(a)
	deserializer, err := r.buildDeserializer(a, constraints)
	if err != nil {
		return nil, err
	}
	serializer, err := r.buildSerializer(a)
	if err != nil {
		return nil, err
	}
	proto := &SerdeProtocol{
		resolver:     r,
		annotation:   a,
		deserializer: deserializer,
		serializer:   serializer,
		constraints:  constraints,
	}
	// Build, then insert: a failed build is fully retryable on the next call.
	r.cache[key] = proto
	return proto, nil
}

// Transmute converts a raw value into the shape the description names.
func (r *Resolver) Transmute(t Type, v any) (any, error) {
	p, err := r.Resolve(t)
	if err != nil {
		return nil, err
	}
	return p.Transmute(v)
}

// Primitive converts a typed value into its primitive equivalent, resolving
// the value's own runtime type.
func (r *Resolver) Primitive(v any) (any, error) {
	p, err := r.Resolve(typeDescOf(v))
	if err != nil {
		return nil, err
	}
	return p.Primitive(v)
}

// validateOpts configures Resolver.Validate.
type validateOpts struct{ transmute bool }

// ValidateOption adjusts validation behavior.
type ValidateOption func(*validateOpts)

// AndTransmute also deserializes the value after validation succeeds.
func AndTransmute() ValidateOption {
	return func(o *validateOpts) { o.transmute = true }
}

// Validate checks a value against the constraints of the description,
// returning the (possibly coerced) value or an error.
func (r *Resolver) Validate(t Type, v any, opts ...ValidateOption) (any, error) {
	var vo validateOpts
	for _, o := range opts {
		o(&vo)
	}
	p, err := r.Resolve(t)
	if err != nil {
		return nil, err
	}
	out, err := p.Validate(v)
	if err != nil {
		return nil, err
	}
	if vo.transmute {
		return p.Transmute(out)
	}
	return out, nil
}

// Translate converts an instance of one structured type into another
// structured type, matching fields by internal name.
func (r *Resolver) Translate(v any, target Type) (any, error) {
	p, err := r.Resolve(typeDescOf(v))
	if err != nil {
		return nil, err
	}
	return p.Translate(v, target)
}

// Iterate resolves the value's own type and yields (name, value) pairs for
// structured instances, mappings, and sequences.
func (r *Resolver) Iterate(v any) (func(yield func(string, any) bool), error) {
	p, err := r.Resolve(typeDescOf(v))
	if err != nil {
		return nil, err
	}
	sp, ok := p.(*SerdeProtocol)
	if !ok {
		return nil, singleIssue(CodeNotIterable, fmt.Sprintf("cannot iterate %T", v))
	}
	return sp.Iterate(v)
}

// IterateValues is Iterate without the names.
func (r *Resolver) IterateValues(v any) (func(yield func(any) bool), error) {
	p, err := r.Resolve(typeDescOf(v))
	if err != nil {
		return nil, err
	}
	sp, ok := p.(*SerdeProtocol)
	if !ok {
		return nil, singleIssue(CodeNotIterable, fmt.Sprintf("cannot iterate %T", v))
	}
	return sp.IterateValues(v)
}

// Protocols resolves a protocol for every field of a structured type (or
// every parameter of a function), applying field defaults and marking
// read-only fields. The mapping is attached to the type for later
// inspection; targets that cannot carry an attachment are tolerated.
func (r *Resolver) Protocols(target any, opts ...ResolveOption) (map[string]Protocol, error) {
	strict := false
	for _, o := range opts {
		var ac annotateContext
		o(&ac)
		if ac.Strict {
			strict = true
		}
	}
	rt := reflectTargetOf(target)
	if rt == nil {
		return nil, singleIssue(CodeInvalidType, fmt.Sprintf("cannot resolve protocols for %T", target))
	}

	if rt.Kind() == reflect.Func {
		// Parameter names are not recoverable at runtime; use positions.
		// Function types cannot carry an attachment, which is tolerated.
		out := make(map[string]Protocol, rt.NumIn())
		for i := 0; i < rt.NumIn(); i++ {
			name := fmt.Sprintf("arg%d", i)
			ro := []ResolveOption{WithName(name)}
			if strict {
				ro = append(ro, AsStrict())
			}
			p, err := r.Resolve(TypeFromReflect(rt.In(i)), ro...)
			if err != nil {
				return nil, rebase(name, err)
			}
			out[name] = p
		}
		return out, nil
	}

	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, singleIssue(CodeInvalidType, fmt.Sprintf("cannot resolve protocols for %s", rt))
	}
	key := protocolsKey{rt: rt, strict: strict}
	r.annosMu.Lock()
	if cached, ok := r.annos[key]; ok {
		r.annosMu.Unlock()
		return cached, nil
	}
	r.annosMu.Unlock()

	defaults := reflectutil.Defaults(rt)
	ns := StructOf(rt)
	out := make(map[string]Protocol)
	for _, f := range reflectutil.Fields(rt) {
		ft := TypeFromReflect(f.Type)
		if f.ReadOnly {
			ft = ReadOnlyOf(ft)
		}
		param := Parameter{Name: f.Name}
		if def, ok := defaults[f.Name]; ok {
			if !reflectutil.Comparable(def) {
				def = Ellipsis
			}
			param.Default = def
			param.HasDefault = true
		}
		ro := []ResolveOption{WithName(f.Name), WithParameter(param), WithNamespace(ns)}
		if strict {
			ro = append(ro, AsStrict())
		}
		p, err := r.Resolve(ft, ro...)
		if err != nil {
			return nil, rebase(f.Name, err)
		}
		out[f.Name] = p
	}

	r.annosMu.Lock()
	r.annos[key] = out
	r.annosMu.Unlock()
	return out, nil
}

// Attached returns the protocol mapping previously attached to a type by
// Protocols.
func (r *Resolver) Attached(rt reflect.Type, strict bool) (map[string]Protocol, bool) {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	r.annosMu.Lock()
	defer r.annosMu.Unlock()
	m, ok := r.annos[protocolsKey{rt: rt, strict: strict}]
	return m, ok
}

// Known reports whether a protocol mapping has been attached to t.
func (r *Resolver) Known(t any) bool {
	rt := reflectTargetOf(t)
	if rt == nil {
		return false
	}
	_, lenient := r.Attached(rt, false)
	_, strict := r.Attached(rt, true)
	return lenient || strict
}

// typeDescOf derives a description from a value's runtime type, unwrapping
// enum-like named basics through alias resolution.
func typeDescOf(v any) Type {
	if v == nil {
		return Nil()
	}
	return TypeFromReflect(reflect.TypeOf(v))
}

func reflectTargetOf(target any) reflect.Type {
	switch t := target.(type) {
	case nil:
		return nil
	case reflect.Type:
		return t
	case StructType:
		return t.ReflectType()
	case Type:
		if st, ok := resolveAlias(t).(StructType); ok {
			return st.ReflectType()
		}
		return nil
	default:
		return reflect.TypeOf(target)
	}
}

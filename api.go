package typical

import "sync"

// The package-level API operates on one lazily-created default resolver, so
// small programs can transmute and validate without wiring a Resolver.

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns the shared default resolver.
func Default() *Resolver {
	defaultOnce.Do(func() {
		defaultResolver = NewResolver()
	})
	return defaultResolver
}

// Resolve builds or fetches the protocol for a description on the default
// resolver.
func Resolve(t Type, opts ...ResolveOption) (Protocol, error) {
	return Default().Resolve(t, opts...)
}

// Transmute converts a raw value into the described shape.
func Transmute(t Type, v any) (any, error) {
	return Default().Transmute(t, v)
}

// Validate checks a value against the description's constraints.
func Validate(t Type, v any, opts ...ValidateOption) (any, error) {
	return Default().Validate(t, v, opts...)
}

// Primitive converts a typed value into its primitive equivalent.
func Primitive(v any) (any, error) {
	return Default().Primitive(v)
}

// Translate converts an instance of one structured type into another.
func Translate(v any, target Type) (any, error) {
	return Default().Translate(v, target)
}

// ToJSON encodes a value through its resolved protocol.
func ToJSON(v any) ([]byte, error) {
	return Default().ToJSON(v)
}

// FromJSON decodes JSON and transmutes it into the described shape.
func FromJSON(t Type, data []byte) (any, error) {
	return Default().FromJSON(t, data)
}

// Register names a type on the default resolver's registry so forward
// references to it become resolvable.
func Register(name string, t Type) error {
	return Default().Registry().Register(name, t)
}

// Protocols resolves a protocol for every field of a structured type.
func Protocols(target any, opts ...ResolveOption) (map[string]Protocol, error) {
	return Default().Protocols(target, opts...)
}

// Iterate yields (name, value) pairs for structured instances, mappings, and
// sequences.
func Iterate(v any) (func(yield func(string, any) bool), error) {
	return Default().Iterate(v)
}

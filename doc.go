// Package typical resolves runtime type descriptions into reusable
// serde protocols.
//
// A description (built with String, ListOf, TypeOf, and friends) is
// canonicalized into an annotation: aliases resolved, optional/strict
// wrappers unwrapped and accumulated, unions collapsed, and struct fields
// projected through declarative flags. The resolver memoizes one protocol
// per canonical annotation for the lifetime of the process, so reflection
// and field-mapping costs are paid once per type.
//
// Self-referential and forward-referenced types resolve to delayed
// protocols that finish resolving on first use, once the referenced name
// is registered.
//
//	p, err := typical.Resolve(typical.TypeOf[User]())
//	u, err := p.Transmute(map[string]any{"id": "1", "name": "ada"})
package typical

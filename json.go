package typical

import (
	json "github.com/goccy/go-json"
)

// toJSON encodes an instance by flattening it to primitives first, so field
// projection, renames, and omissions all apply to the JSON output.
func (r *Resolver) toJSON(p Protocol, v any) ([]byte, error) {
	prim, err := p.Primitive(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(prim)
}

// FromJSON decodes raw JSON and transmutes the result into the described
// shape.
func (r *Resolver) FromJSON(t Type, data []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeParseError,
			Message: err.Error(),
			Cause:   err,
		}}
	}
	return r.Transmute(t, raw)
}

// ToJSON resolves the value's own type and encodes it.
func (r *Resolver) ToJSON(v any) ([]byte, error) {
	p, err := r.Resolve(typeDescOf(v))
	if err != nil {
		return nil, err
	}
	return p.ToJSON(v)
}

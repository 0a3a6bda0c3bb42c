// Package descriptor loads type descriptions from YAML documents, so type
// universes can be declared in configuration and registered for forward
// references without writing Go types.
package descriptor

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	typical "github.com/ducminhgd/typical"
)

// Document is the top-level shape of a descriptor file: named type
// descriptions. Nodes are decoded by value; yaml.v3 only fills its Node
// special case for value targets, so pointer fields would stay empty.
type Document struct {
	Types map[string]yaml.Node `yaml:"types"`
}

// Load parses a descriptor document and returns the described types keyed
// by name.
func Load(r io.Reader) (map[string]typical.Type, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}
	out := make(map[string]typical.Type, len(doc.Types))
	for name, node := range doc.Types {
		node := node
		t, err := parseNode(&node)
		if err != nil {
			return nil, fmt.Errorf("descriptor: type %q: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// LoadFile parses a descriptor file.
func LoadFile(path string) (map[string]typical.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// RegisterAll loads a descriptor document and registers every described
// type on the registry, making forward references to those names
// resolvable.
func RegisterAll(reg *typical.Registry, r io.Reader) error {
	types, err := Load(r)
	if err != nil {
		return err
	}
	for name, t := range types {
		if err := reg.Register(name, t); err != nil {
			return err
		}
	}
	return nil
}

// nodeSpec is the mapping form of a type description. Exactly one shape key
// is expected; constraint keys may accompany the "type" key. Absent node
// fields are zero nodes, checked via IsZero.
type nodeSpec struct {
	Alias    yaml.Node   `yaml:"alias"`
	List     yaml.Node   `yaml:"list"`
	Map      *mapSpec    `yaml:"map"`
	Optional yaml.Node   `yaml:"optional"`
	Strict   yaml.Node   `yaml:"strict"`
	Union    []yaml.Node `yaml:"union"`
	Literal  []any       `yaml:"literal"`
	Enum     *enumSpec   `yaml:"enum"`
	Type     yaml.Node   `yaml:"type"`

	Name    string   `yaml:"name"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	MinLen  *int     `yaml:"minLength"`
	MaxLen  *int     `yaml:"maxLength"`
	Pattern string   `yaml:"pattern"`
}

type mapSpec struct {
	Key   yaml.Node `yaml:"key"`
	Value yaml.Node `yaml:"value"`
}

type enumSpec struct {
	Name   string         `yaml:"name"`
	Values map[string]any `yaml:"values"`
}

var builtins = map[string]func() typical.Type{
	"string":   typical.String,
	"int":      typical.Int,
	"integer":  typical.Int,
	"float":    typical.Float,
	"number":   typical.Float,
	"bool":     typical.Bool,
	"boolean":  typical.Bool,
	"bytes":    typical.Bytes,
	"nil":      typical.Nil,
	"null":     typical.Nil,
	"any":      typical.Any,
	"time":     typical.Time,
	"duration": typical.Duration,
}

func parseNode(n *yaml.Node) (typical.Type, error) {
	if n == nil || n.IsZero() {
		return nil, fmt.Errorf("empty description")
	}
	switch n.Kind {
	case yaml.ScalarNode:
		var name string
		if err := n.Decode(&name); err != nil {
			return nil, err
		}
		if ctor, ok := builtins[name]; ok {
			return ctor(), nil
		}
		// Unknown names are forward references by construction.
		return typical.RefTo(name), nil
	case yaml.MappingNode:
		var spec nodeSpec
		if err := n.Decode(&spec); err != nil {
			return nil, err
		}
		return spec.build()
	case yaml.SequenceNode:
		// A bare sequence is union shorthand.
		var alts []yaml.Node
		if err := n.Decode(&alts); err != nil {
			return nil, err
		}
		return buildUnion(alts)
	}
	return nil, fmt.Errorf("unsupported node kind %d", n.Kind)
}

func (s nodeSpec) build() (typical.Type, error) {
	switch {
	case !s.Alias.IsZero():
		under, err := parseNode(&s.Alias)
		if err != nil {
			return nil, err
		}
		if s.Name == "" {
			return nil, fmt.Errorf("alias requires a name")
		}
		return typical.AliasOf(s.Name, under), nil
	case !s.List.IsZero():
		elem, err := parseNode(&s.List)
		if err != nil {
			return nil, err
		}
		return typical.ListOf(elem), nil
	case s.Map != nil:
		key, err := parseNode(&s.Map.Key)
		if err != nil {
			return nil, err
		}
		val, err := parseNode(&s.Map.Value)
		if err != nil {
			return nil, err
		}
		return typical.MapOf(key, val), nil
	case !s.Optional.IsZero():
		elem, err := parseNode(&s.Optional)
		if err != nil {
			return nil, err
		}
		return typical.OptionalOf(elem), nil
	case !s.Strict.IsZero():
		elem, err := parseNode(&s.Strict)
		if err != nil {
			return nil, err
		}
		return typical.StrictOf(elem), nil
	case len(s.Union) > 0:
		return buildUnion(s.Union)
	case len(s.Literal) > 0:
		return typical.LiteralOf(normalizeScalars(s.Literal)...), nil
	case s.Enum != nil:
		members := make([]typical.EnumValue, 0, len(s.Enum.Values))
		for name, v := range s.Enum.Values {
			members = append(members, typical.EnumValue{Name: name, Value: normalizeScalar(v)})
		}
		return typical.EnumOf(s.Enum.Name, members...), nil
	case !s.Type.IsZero():
		base, err := parseNode(&s.Type)
		if err != nil {
			return nil, err
		}
		return s.constrain(base)
	}
	return nil, fmt.Errorf("no shape key (alias, list, map, optional, strict, union, literal, enum, type)")
}

func (s nodeSpec) constrain(base typical.Type) (typical.Type, error) {
	var opts []typical.ConstraintOption
	if s.Min != nil {
		opts = append(opts, typical.MinValue(*s.Min))
	}
	if s.Max != nil {
		opts = append(opts, typical.MaxValue(*s.Max))
	}
	if s.MinLen != nil {
		opts = append(opts, typical.MinLength(*s.MinLen))
	}
	if s.MaxLen != nil {
		opts = append(opts, typical.MaxLength(*s.MaxLen))
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
		opts = append(opts, typical.Matching(re))
	}
	if len(opts) == 0 {
		return base, nil
	}
	return typical.Constrained(base, opts...), nil
}

func buildUnion(nodes []yaml.Node) (typical.Type, error) {
	alts := make([]typical.Type, 0, len(nodes))
	for i := range nodes {
		t, err := parseNode(&nodes[i])
		if err != nil {
			return nil, err
		}
		alts = append(alts, t)
	}
	return typical.UnionOf(alts...), nil
}

// normalizeScalar folds YAML's int decoding onto int64 so literal values
// compare stably.
func normalizeScalar(v any) any {
	if n, ok := v.(int); ok {
		return int64(n)
	}
	return v
}

func normalizeScalars(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = normalizeScalar(v)
	}
	return out
}

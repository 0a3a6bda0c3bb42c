package typical_test

import (
	"testing"

	typical "github.com/ducminhgd/typical"
)

func TestSchema_StructProjection(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[profile]())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	s := p.Schema()
	if s.Type != "object" {
		t.Fatalf("expected object, got %q", s.Type)
	}
	for _, name := range []string{"name", "level", "tags", "joined", "window", "bio"} {
		if _, ok := s.Properties[name]; !ok {
			t.Fatalf("missing property %q", name)
		}
	}
	if s.Properties["level"].Type != "integer" {
		t.Fatalf("level: %q", s.Properties["level"].Type)
	}
	if s.Properties["tags"].Type != "array" || s.Properties["tags"].Items.Type != "string" {
		t.Fatalf("tags: %+v", s.Properties["tags"])
	}
	required := map[string]bool{}
	for _, name := range s.Required {
		required[name] = true
	}
	if !required["name"] {
		t.Fatalf("name must be required: %v", s.Required)
	}
	if required["level"] {
		t.Fatalf("a defaulted field must not be required: %v", s.Required)
	}
	if required["bio"] {
		t.Fatalf("an optional field must not be required: %v", s.Required)
	}
}

func TestSchema_RecursiveTypeUsesRef(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[node]())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	s := p.Schema()
	next, ok := s.Properties["next"]
	if !ok {
		t.Fatalf("missing next property")
	}
	if next.Ref == "" {
		t.Fatalf("self-reference must project as $ref, got %+v", next)
	}
}

func TestSchema_ConstrainedBounds(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.Constrained(typical.String(), typical.MinLength(1), typical.MaxLength(8)))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	s := p.Schema()
	if s.Type != "string" || s.MinLength == nil || *s.MinLength != 1 || s.MaxLength == nil || *s.MaxLength != 8 {
		t.Fatalf("unexpected schema: %+v", s)
	}
}

package typical_test

import (
	"testing"
	"time"

	typical "github.com/ducminhgd/typical"
)

type profile struct {
	Name   string        `json:"name"`
	Level  int           `json:"level"`
	Tags   []string      `json:"tags"`
	Joined time.Time     `json:"joined"`
	Window time.Duration `json:"window"`
	Bio    *string       `json:"bio"`
}

func (profile) FieldDefaults() map[string]any {
	return map[string]any{"level": 1}
}

func TestTransmute_StructFromMapping(t *testing.T) {
	r := typical.NewResolver()
	got, err := r.Transmute(typical.TypeOf[profile](), map[string]any{
		"name":   "ada",
		"tags":   []any{"x", "y"},
		"joined": "2024-01-02T03:04:05Z",
		"window": "90s",
	})
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	p := got.(profile)
	if p.Name != "ada" {
		t.Fatalf("name: %+v", p)
	}
	if p.Level != 1 {
		t.Fatalf("missing field must take its declared default, got %d", p.Level)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "x" || p.Tags[1] != "y" {
		t.Fatalf("tags: %+v", p.Tags)
	}
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !p.Joined.Equal(want) {
		t.Fatalf("joined: %v", p.Joined)
	}
	if p.Window != 90*time.Second {
		t.Fatalf("window: %v", p.Window)
	}
	if p.Bio != nil {
		t.Fatalf("absent optional field must stay nil")
	}
}

func TestTransmute_MissingRequiredField(t *testing.T) {
	r := typical.NewResolver()
	_, err := r.Transmute(typical.TypeOf[profile](), map[string]any{"level": 3})
	if err == nil {
		t.Fatalf("expected required error")
	}
	iss, ok := typical.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	found := false
	for _, it := range iss {
		if it.Code == typical.CodeRequired && it.Path == "/name" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected required at /name, got %v", iss)
	}
}

func TestTransmute_InstancePassesThrough(t *testing.T) {
	r := typical.NewResolver()
	in := profile{Name: "ada", Level: 2}
	got, err := r.Transmute(typical.TypeOf[profile](), in)
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	out := got.(profile)
	if out.Name != in.Name || out.Level != in.Level {
		t.Fatalf("an instance of the target type must pass through, got %+v", out)
	}
}

func TestTransmute_NestedFailureReportsFullPath(t *testing.T) {
	r := typical.NewResolver()
	_, err := r.Transmute(typical.TypeOf[profile](), map[string]any{
		"name":   "ada",
		"tags":   []any{},
		"joined": "not-a-time",
		"window": "1s",
	})
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	iss, ok := typical.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if iss[0].Path != "/joined" {
		t.Fatalf("expected the failing field in the path, got %q", iss[0].Path)
	}
}

func TestTransmute_MapDescription(t *testing.T) {
	r := typical.NewResolver()
	got, err := r.Transmute(typical.MapOf(typical.String(), typical.Int()), map[string]any{
		"a": "1",
		"b": 2,
	})
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	m := got.(map[any]any)
	if m["a"] != int64(1) || m["b"] != int64(2) {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestTransmute_ScalarCoercions(t *testing.T) {
	r := typical.NewResolver()
	cases := []struct {
		desc typical.Type
		in   any
		want any
	}{
		{typical.Int(), "12", int64(12)},
		{typical.Int(), 3.0, int64(3)},
		{typical.Float(), "2.5", 2.5},
		{typical.Bool(), "true", true},
		{typical.Bool(), 1, true},
		{typical.String(), 42, "42"},
		{typical.String(), []byte("hi"), "hi"},
	}
	for _, tc := range cases {
		got, err := r.Transmute(tc.desc, tc.in)
		if err != nil {
			t.Fatalf("%s(%v): %v", tc.desc.Token(), tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%s(%v): got %v (%T), want %v", tc.desc.Token(), tc.in, got, got, tc.want)
		}
	}
	if _, err := r.Transmute(typical.Int(), 2.5); err == nil {
		t.Fatalf("a fractional float must not coerce to int")
	}
}

func TestValidate_ConstrainedBounds(t *testing.T) {
	r := typical.NewResolver()
	score := typical.Constrained(typical.Int(), typical.MinValue(0), typical.MaxValue(100))
	if _, err := r.Validate(score, 55); err != nil {
		t.Fatalf("in-range value: %v", err)
	}
	_, err := r.Validate(score, 101)
	if err == nil {
		t.Fatalf("expected too_big")
	}
	iss, _ := typical.AsIssues(err)
	if iss[0].Code != typical.CodeTooBig {
		t.Fatalf("expected too_big, got %v", iss)
	}
	if _, err := r.Transmute(score, 101); err == nil {
		t.Fatalf("transmute applies bounds too")
	}
}

func TestValidate_NilRequiresNullable(t *testing.T) {
	r := typical.NewResolver()
	if _, err := r.Validate(typical.Int(), nil); err == nil {
		t.Fatalf("nil must fail for a non-nullable description")
	}
	if _, err := r.Validate(typical.OptionalOf(typical.Int()), nil); err != nil {
		t.Fatalf("nil must pass for an optional description: %v", err)
	}
}

type auditRow struct {
	ID   int    `typical:",readonly" json:"id"`
	Name string `json:"name"`
}

func TestTransmute_ReadOnlyFieldIsNeverRequired(t *testing.T) {
	r := typical.NewResolver()
	got, err := r.Transmute(typical.TypeOf[auditRow](), map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("a read-only field must not be demanded on input: %v", err)
	}
	row := got.(auditRow)
	if row.Name != "ada" || row.ID != 0 {
		t.Fatalf("unexpected result: %+v", row)
	}
}

func TestTransmute_ReadOnlyFieldInputIsIgnored(t *testing.T) {
	r := typical.NewResolver()
	got, err := r.Transmute(typical.TypeOf[auditRow](), map[string]any{"id": 7, "name": "ada"})
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	if row := got.(auditRow); row.ID != 0 {
		t.Fatalf("input must not set a read-only field, got %+v", row)
	}
}

func TestPrimitive_ReadOnlyFieldStillSerializes(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[auditRow]())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, err := p.Primitive(auditRow{ID: 7, Name: "ada"})
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	m := out.(map[string]any)
	if m["id"] != int64(7) {
		t.Fatalf("read-only affects input only, output must keep the field: %v", m)
	}
}

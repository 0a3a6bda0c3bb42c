package typical_test

import (
	"reflect"
	"testing"

	typical "github.com/ducminhgd/typical"
)

type record struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
}

func TestProjection_CaseConversionWithExclude(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[record](), typical.WithFlags(typical.SerdeFlags{
		Case:    typical.CaseCamel,
		Exclude: []string{"id"},
	}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, err := p.Primitive(record{ID: "1", UserName: "ada"})
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	want := map[string]any{"userName": "ada"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestProjection_ExcludedFieldStaysSettableOnInput(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[record](), typical.WithFlags(typical.SerdeFlags{
		Exclude: []string{"id"},
	}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err := p.Transmute(map[string]any{"id": "7", "user_name": "ada"})
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	if rec := got.(record); rec.ID != "7" {
		t.Fatalf("excluded field should still accept input, got %+v", rec)
	}
}

func TestProjection_RenamesWinOverCase(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[record](), typical.WithFlags(typical.SerdeFlags{
		Case:   typical.CaseCamel,
		Fields: map[string]string{"user_name": "handle"},
	}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, err := p.Primitive(record{ID: "1", UserName: "ada"})
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	m := out.(map[string]any)
	if _, ok := m["handle"]; !ok {
		t.Fatalf("explicit rename must win over case policy, got %v", m)
	}
	if _, ok := m["userName"]; ok {
		t.Fatalf("renamed field must not also appear case-converted: %v", m)
	}
}

func TestProjection_OutputNameCollisionFails(t *testing.T) {
	r := typical.NewResolver()
	_, err := r.Resolve(typical.TypeOf[record](), typical.WithFlags(typical.SerdeFlags{
		Fields: map[string]string{"id": "same", "user_name": "same"},
	}))
	if err == nil {
		t.Fatalf("expected a collision error")
	}
	iss, ok := typical.AsIssues(err)
	if !ok || iss[0].Code != typical.CodeFieldCollision {
		t.Fatalf("expected field_collision, got %v", err)
	}
}

type omitRecord struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

func TestProjection_OmitByValue(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[omitRecord](), typical.WithFlags(typical.SerdeFlags{
		Omit: []any{""},
	}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, err := p.Primitive(omitRecord{Name: "a"})
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	want := map[string]any{"name": "a"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

type secretRecord struct {
	Name   string `json:"name"`
	Secret []byte `json:"secret"`
}

func TestProjection_OmitByType(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[secretRecord](), typical.WithFlags(typical.SerdeFlags{
		Omit: []any{typical.Bytes()},
	}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, err := p.Primitive(secretRecord{Name: "a", Secret: []byte("shh")})
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	if _, ok := out.(map[string]any)["secret"]; ok {
		t.Fatalf("type-omitted field leaked into output: %v", out)
	}
}

type taggedRecord struct {
	ID   string `typical:"name=ident" json:"id"`
	Note string `json:"-"`
	Name string
}

func TestProjection_TagPriority(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[taggedRecord]())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, err := p.Primitive(taggedRecord{ID: "1", Note: "x", Name: "ada"})
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	m := out.(map[string]any)
	if m["ident"] != "1" {
		t.Fatalf("typical tag must win over json tag: %v", m)
	}
	if _, ok := m["Note"]; ok {
		t.Fatalf("json:\"-\" field must be dropped: %v", m)
	}
	if m["Name"] != "ada" {
		t.Fatalf("untagged field keeps its Go name: %v", m)
	}
}

package typical_test

import (
	"testing"

	typical "github.com/ducminhgd/typical"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type node struct {
	Val  int   `json:"val"`
	Next *node `json:"next"`
}

func TestResolve_IdenticalAnnotationsShareOneProtocol(t *testing.T) {
	r := typical.NewResolver()
	p1, err := r.Resolve(typical.TypeOf[user]())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	p2, err := r.Resolve(typical.TypeOf[user]())
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("expected the same protocol instance for equal annotations")
	}
}

func TestResolve_StrictAndLenientAreDistinctEntries(t *testing.T) {
	r := typical.NewResolver()
	lenient, err := r.Resolve(typical.Int())
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	strict, err := r.Resolve(typical.Int(), typical.AsStrict())
	if err != nil {
		t.Fatalf("strict: %v", err)
	}
	if lenient == strict {
		t.Fatalf("strict and lenient resolutions must not share a cache entry")
	}
}

func TestResolve_SelfReferentialTypeTerminates(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[node]())
	if err != nil {
		t.Fatalf("resolve recursive type: %v", err)
	}
	got, err := p.Transmute(map[string]any{
		"val":  1,
		"next": map[string]any{"val": 2},
	})
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	n, ok := got.(node)
	if !ok {
		t.Fatalf("expected node, got %T", got)
	}
	if n.Val != 1 || n.Next == nil || n.Next.Val != 2 {
		t.Fatalf("unexpected result: %+v", n)
	}
	if n.Next.Next != nil {
		t.Fatalf("expected leaf next to stay nil")
	}
}

func TestResolve_ForwardReferenceResolvesAfterRegistration(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.RefTo("Widget"))
	if err != nil {
		t.Fatalf("resolving an undefined name should defer, not fail: %v", err)
	}
	if _, err := p.Transmute(map[string]any{"id": 1, "name": "w"}); err == nil {
		t.Fatalf("expected unresolved_ref before registration")
	} else if iss, ok := typical.AsIssues(err); !ok || iss[0].Code != typical.CodeUnresolvedRef {
		t.Fatalf("expected unresolved_ref, got %v", err)
	}

	if err := r.Registry().Register("Widget", typical.TypeOf[user]()); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := p.Transmute(map[string]any{"id": 1, "name": "w"})
	if err != nil {
		t.Fatalf("transmute after registration: %v", err)
	}
	if u := got.(user); u.ID != 1 || u.Name != "w" {
		t.Fatalf("unexpected result: %+v", u)
	}
}

func TestResolve_FailuresAreNotCached(t *testing.T) {
	r := typical.NewResolver()
	if _, err := r.Resolve(typical.LiteralOf(1.5)); err == nil {
		t.Fatalf("expected illegal_literal for a float literal")
	}
	// The failure must not poison subsequent resolutions.
	p, err := r.Resolve(typical.LiteralOf(1, 2))
	if err != nil {
		t.Fatalf("legal literal after a failed resolution: %v", err)
	}
	if _, err := p.Transmute(2); err != nil {
		t.Fatalf("transmute: %v", err)
	}
}

func TestResolver_ProtocolsCoversEveryField(t *testing.T) {
	r := typical.NewResolver()
	protos, err := r.Protocols(user{})
	if err != nil {
		t.Fatalf("protocols: %v", err)
	}
	for _, name := range []string{"id", "name"} {
		if _, ok := protos[name]; !ok {
			t.Fatalf("missing protocol for field %q", name)
		}
	}
	if !r.Known(user{}) {
		t.Fatalf("expected the mapping to be attached")
	}
}

func TestResolver_TransmuteShortcut(t *testing.T) {
	r := typical.NewResolver()
	got, err := r.Transmute(typical.TypeOf[user](), map[string]any{"id": "7", "name": "ada"})
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	if u := got.(user); u.ID != 7 || u.Name != "ada" {
		t.Fatalf("unexpected result: %+v", u)
	}
}

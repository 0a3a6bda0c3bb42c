package typical_test

import (
	"testing"

	typical "github.com/ducminhgd/typical"
)

func TestCanonicalize_NilAlternativeCollapsesToOptional(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.UnionOf(typical.String(), typical.Nil()))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err := p.Transmute(nil)
	if err != nil {
		t.Fatalf("optional collapse must accept nil: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	got, err = p.Transmute(5)
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	if got != "5" {
		t.Fatalf("expected coercion to string, got %v (%T)", got, got)
	}
}

func TestCanonicalize_MultiAlternativeUnionStaysDynamic(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.UnionOf(typical.Int(), typical.String(), typical.Nil()))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got, err := p.Transmute(nil); err != nil || got != nil {
		t.Fatalf("nil alternative must make the union optional: %v %v", got, err)
	}
	got, err := p.Transmute("abc")
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	if got != "abc" {
		t.Fatalf("expected first accepting alternative, got %v", got)
	}
	got, err = p.Transmute(7)
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	if got != int64(7) {
		t.Fatalf("expected int64(7), got %v (%T)", got, got)
	}
}

func TestCanonicalize_StrictWrapperValidatesInsteadOfCoercing(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.OptionalOf(typical.StrictOf(typical.String())))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := p.Transmute(5); err == nil {
		t.Fatalf("strict string must reject an int")
	}
	if got, err := p.Transmute(nil); err != nil || got != nil {
		t.Fatalf("optional must still accept nil: %v %v", got, err)
	}
	if got, err := p.Transmute("ok"); err != nil || got != "ok" {
		t.Fatalf("strict string must pass a string through: %v %v", got, err)
	}
}

type accountID int

func TestCanonicalize_NamedBasicTypeResolvesThroughAlias(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.TypeOf[accountID]())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err := p.Transmute("41")
	if err != nil {
		t.Fatalf("transmute: %v", err)
	}
	if got != int64(41) {
		t.Fatalf("alias must resolve to its supertype, got %v (%T)", got, got)
	}
}

func TestCanonicalize_IllegalLiteralValue(t *testing.T) {
	r := typical.NewResolver()
	_, err := r.Resolve(typical.LiteralOf(1, 2.5))
	if err == nil {
		t.Fatalf("expected illegal_literal")
	}
	iss, ok := typical.AsIssues(err)
	if !ok || iss[0].Code != typical.CodeIllegalLiteral {
		t.Fatalf("expected illegal_literal, got %v", err)
	}
}

func TestCanonicalize_LiteralMembership(t *testing.T) {
	r := typical.NewResolver()
	p, err := r.Resolve(typical.LiteralOf("a", "b"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := p.Transmute("c"); err == nil {
		t.Fatalf("values outside the literal set must fail")
	}
	if got, err := p.Transmute("b"); err != nil || got != "b" {
		t.Fatalf("legal literal value: %v %v", got, err)
	}
}

func TestCanonicalize_EnumAcceptsValueOrMemberName(t *testing.T) {
	r := typical.NewResolver()
	color := typical.EnumOf("color",
		typical.EnumValue{Name: "red", Value: int64(1)},
		typical.EnumValue{Name: "blue", Value: int64(2)},
	)
	p, err := r.Resolve(color)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got, err := p.Transmute("blue"); err != nil || got != int64(2) {
		t.Fatalf("member name should select the member: %v %v", got, err)
	}
	if got, err := p.Transmute(1); err != nil || got != int64(1) {
		t.Fatalf("member value should pass: %v %v", got, err)
	}
	if _, err := p.Transmute("green"); err == nil {
		t.Fatalf("unknown member must fail")
	}
}

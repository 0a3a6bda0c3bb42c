package typical_test

import (
	"testing"
	"time"

	typical "github.com/ducminhgd/typical"
)

func TestTokens_AreStableAndDistinct(t *testing.T) {
	cases := map[string]typical.Type{
		"string":                       typical.String(),
		"list[int]":                    typical.ListOf(typical.Int()),
		"map[string,float]":            typical.MapOf(typical.String(), typical.Float()),
		"optional[bool]":               typical.OptionalOf(typical.Bool()),
		"union[int|string]":            typical.UnionOf(typical.Int(), typical.String()),
		"strict[bytes]":                typical.StrictOf(typical.Bytes()),
		"readonly[int]":                typical.ReadOnlyOf(typical.Int()),
		"ref:Widget":                   typical.RefTo("Widget"),
		"alias:UserID[int]":            typical.AliasOf("UserID", typical.Int()),
		"enum:color":                   typical.EnumOf("color"),
		"literal[int=1|string=a]":      typical.LiteralOf(1, "a"),
		"list[optional[list[string]]]": typical.ListOf(typical.OptionalOf(typical.ListOf(typical.String()))),
	}
	seen := map[string]string{}
	for want, desc := range cases {
		got := desc.Token()
		if got != want {
			t.Fatalf("token for %s: got %q, want %q", want, got, want)
		}
		if prev, dup := seen[got]; dup {
			t.Fatalf("token %q produced by both %s and %s", got, prev, want)
		}
		seen[got] = want
	}
}

func TestTypeFromReflect_WellKnownGoTypes(t *testing.T) {
	if typical.TypeOf[time.Time]().Kind() != typical.KindTime {
		t.Fatalf("time.Time must map to the time description")
	}
	if typical.TypeOf[time.Duration]().Kind() != typical.KindDuration {
		t.Fatalf("time.Duration must map to the duration description")
	}
	if typical.TypeOf[[]byte]().Kind() != typical.KindBytes {
		t.Fatalf("[]byte must map to bytes, not list")
	}
	if typical.TypeOf[*int]().Kind() != typical.KindOptional {
		t.Fatalf("pointers must map to optionals")
	}
	if typical.TypeOf[map[string]int]().Kind() != typical.KindMap {
		t.Fatalf("maps must map to map descriptions")
	}
	if typical.TypeOf[any]().Kind() != typical.KindAny {
		t.Fatalf("interfaces must map to any")
	}
	if typical.TypeOf[accountID]().Kind() != typical.KindAlias {
		t.Fatalf("named basic types must map to aliases")
	}
}

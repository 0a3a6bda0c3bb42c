package resolveguard

import "testing"

func TestEnterDetectsLoop(t *testing.T) {
	g := New()
	if !g.Enter("a") {
		t.Fatalf("first Enter should succeed")
	}
	if g.Enter("a") {
		t.Fatalf("second Enter for the same token should report a loop")
	}
	if !g.Has("a") {
		t.Fatalf("token should remain in flight")
	}
}

func TestRemoveAndReset(t *testing.T) {
	g := New()
	g.Enter("a")
	g.Enter("b")
	g.Remove("a")
	if g.Has("a") {
		t.Fatalf("removed token still present")
	}
	if g.Len() != 1 {
		t.Fatalf("Len = %d, want 1", g.Len())
	}
	g.Reset()
	if g.Len() != 0 {
		t.Fatalf("reset guard should be empty")
	}
	if !g.Enter("a") {
		t.Fatalf("token should be enterable again after reset")
	}
}

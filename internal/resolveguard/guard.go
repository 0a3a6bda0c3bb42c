// Package resolveguard tracks the set of type tokens currently being
// canonicalized so that recursive and mutually recursive type graphs terminate.
// The guard is purely control-flow state: it never produces errors, and it is
// reset after every top-level resolution, success or failure, so one
// resolution can never poison another.
package resolveguard

// Guard is the in-flight resolution set for one top-level resolve call.
// It is not safe for concurrent use; the owning resolver serializes access.
type Guard struct {
	inFlight map[string]struct{}
}

// New returns an empty guard.
func New() *Guard {
	return &Guard{inFlight: make(map[string]struct{})}
}

// Enter marks token as in flight. It reports false when the token was already
// present, which signals a recursive loop to the caller.
func (g *Guard) Enter(token string) bool {
	if _, ok := g.inFlight[token]; ok {
		return false
	}
	g.inFlight[token] = struct{}{}
	return true
}

// Has reports whether token is currently in flight.
func (g *Guard) Has(token string) bool {
	_, ok := g.inFlight[token]
	return ok
}

// Remove drops token from the in-flight set. Removing a token that was found
// via the stack avoids re-detecting the same loop for unrelated siblings.
func (g *Guard) Remove(token string) {
	delete(g.inFlight, token)
}

// Reset clears the guard. Called once per top-level resolution.
func (g *Guard) Reset() {
	clear(g.inFlight)
}

// Len returns the number of in-flight tokens.
func (g *Guard) Len() int { return len(g.inFlight) }

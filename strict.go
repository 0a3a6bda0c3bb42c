package typical

import "sync/atomic"

// Process-wide strict-mode toggle. Strictness is normally threaded through
// individual resolutions; the global switch is an opt-in convenience that
// flips the default for all subsequent resolutions. Already-cached protocols
// are unaffected.
var strictMode atomic.Bool

// EnableStrictMode makes strict validation the default for subsequent
// resolutions.
func EnableStrictMode() { strictMode.Store(true) }

// DisableStrictMode restores lenient coercion as the default.
func DisableStrictMode() { strictMode.Store(false) }

// StrictModeEnabled reports the current process-wide default.
func StrictModeEnabled() bool { return strictMode.Load() }

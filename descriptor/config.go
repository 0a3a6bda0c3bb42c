package descriptor

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the tool-level configuration consumed by the CLI: resolver
// defaults plus the descriptor documents to preload.
type Config struct {
	// Strict makes strict validation the default.
	Strict bool `toml:"strict"`
	// Language selects the message language ("en", "ja").
	Language string `toml:"language"`
	// Case names the default output case policy.
	Case string `toml:"case"`
	// Descriptors lists descriptor documents to register at startup.
	Descriptors []string `toml:"descriptors"`
	// LogLevel adjusts diagnostic output ("debug", "info", ...).
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{Language: "en", LogLevel: "info"}
}

// LoadConfig reads a TOML configuration file. Unknown keys fail, so typos
// surface instead of silently using defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("descriptor: config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("descriptor: config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

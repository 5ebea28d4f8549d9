package driven

import "time"

// ConfigStore reads and writes user settings. Keys are dotted paths into
// nested tables ("mermaid.width", "tools.pandoc").
//
// The typed getters never fail: a missing key or a value of the wrong
// type yields the zero value. Use Get to tell "unset" from "zero".
type ConfigStore interface {
	// Get returns the raw value and whether the key is present.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integer values.
	GetFloat(key string) float64

	GetBool(key string) bool

	// GetDuration parses values like "90s" or "2m".
	GetDuration(key string) time.Duration

	// Keys lists every present key, sorted.
	Keys() []string

	// Set assigns value to key. File-backed stores write through.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path names the backing file, or a placeholder for in-memory stores.
	Path() string
}

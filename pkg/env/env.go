package env

import "os"

// Get reads the named environment variable, falling back when unset or empty.
// The logger uses this before config parsing is available.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

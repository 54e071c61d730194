package interfaces

import "context"

// SettingsStore is the read-only view of the operator-owned key/value
// configuration table. Every accessor falls back to the supplied default when
// the key is absent or unparsable.
type SettingsStore interface {
	GetString(ctx context.Context, key string, defaultValue string) string
	GetInt(ctx context.Context, key string, defaultValue int) int
	GetFloat(ctx context.Context, key string, defaultValue float64) float64
	GetBool(ctx context.Context, key string, defaultValue bool) bool
}

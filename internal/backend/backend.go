// Package backend selects and builds the persistence backend.
package backend

import (
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/store"
)

// CleanupFunc releases a backend's resources.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Type represents the kind of persistence backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// FromAppConfig extracts the backend type from the application config.
func FromAppConfig(appConfig *config.Config) (Type, error) {
	if appConfig == nil {
		return "", fmt.Errorf("app config is nil")
	}
	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return t, nil
}

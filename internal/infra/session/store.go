// Package session provides the opaque per-session attribute store that
// survives between otherwise-stateless turns.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no attributes exist for a session.
var ErrNotFound = errors.New("session not found")

// Store is an opaque key-value store of session attributes. The core treats
// a failed Load as "no existing state" and a failed Save as a hard error
// for that turn only.
type Store interface {
	// Load returns the attribute map for a session.
	Load(ctx context.Context, sessionID string) (map[string]any, error)
	// Save replaces the attribute map for a session.
	Save(ctx context.Context, sessionID string, attrs map[string]any) error
	// Delete removes all attributes for a session.
	Delete(ctx context.Context, sessionID string) error
}

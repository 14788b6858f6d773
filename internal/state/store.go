// Package state persists viewer state in SQLite.
//
// Each viewer session stores one JSON snapshot of its view state, keyed by
// the session id. The snapshot format belongs to the caller; this package
// only stores and returns bytes.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists for a session.
var ErrNotFound = errors.New("view state not found")

// Store is the persistence contract used by viewer sessions.
type Store interface {
	SaveView(ctx context.Context, sessionID string, snapshot []byte) error
	LoadView(ctx context.Context, sessionID string) ([]byte, error)
	DeleteView(ctx context.Context, sessionID string) error
	Close() error
}

// ViewRecord describes a stored snapshot.
type ViewRecord struct {
	SessionID string
	UpdatedAt time.Time
	Size      int
}

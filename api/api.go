// Package api defines the public contracts shared across shmbuf packages.
package api

import (
	"context"
	"time"
)

// EventKind identifies a buffer lifecycle event.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventClosed  EventKind = "closed"
	EventSaved   EventKind = "saved"
	EventLoaded  EventKind = "loaded"
)

// Event records one lifecycle transition of a buffer.
type Event struct {
	Kind EventKind
	// Name is the buffer's region name.
	Name string
	// Bytes is the region size in bytes.
	Bytes int
	// Path is set for saved/loaded events.
	Path string
	At   time.Time
}

// Auditor receives buffer lifecycle events. Implementations must be
// safe for concurrent use.
type Auditor interface {
	Record(e Event)
}

// Saver is the subset of a buffer the snapshot scheduler needs.
type Saver interface {
	SaveToFile(ctx context.Context, path string) error
	Name() string
}

// BufferInfo is the registry's read-only view of a live buffer.
type BufferInfo struct {
	Name        string
	SizeBytes   int
	ElementSize int
	CreatedAt   time.Time
}

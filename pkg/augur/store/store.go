// Package store defines the optional archive of coded documents. The
// request path only ever writes to it; nothing in request processing reads
// archive state, so the pipeline stays stateless across requests.
package store

import (
	"context"
	"time"
)

// Store archives coded document records.
type Store interface {
	Close() error

	SaveRecord(ctx context.Context, r Record) error
	GetRecord(ctx context.Context, id string) (Record, bool, error)
	ListRecords(ctx context.Context, docID string, limit int) ([]Record, error)
}

// Record is one archived coding run over one document.
type Record struct {
	ID            string // ULID, assigned by the engine
	DocID         string // caller-supplied document id
	Date          string // caller-supplied date, opaque
	ReceivedAt    time.Time
	SentenceCount int
	FailedCount   int
	Events        []Event
}

// Event is one extracted tuple, flattened with its sentence index.
type Event struct {
	SentenceIndex int
	Source        string
	Target        string
	Code          string
}

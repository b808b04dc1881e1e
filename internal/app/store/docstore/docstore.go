// internal/app/store/docstore/docstore.go

// Package docstore defines the backing-store capability contract the rest of
// the application is written against: document CRUD by identifier, query by
// equality filter, subscribe-to-query-changes with a cancel handle, and a
// server-generated timestamp primitive. Any store offering these five
// capabilities is substitutable; mongostore backs production and memstore
// backs tests and local development.
package docstore

import (
	"context"
	"errors"
)

// Document is a raw store record: an identifier plus untyped fields.
// Decoding into domain types happens in the model layer, never here.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is an equality-only query: every key must match the stored field.
// A filter value matched against an array field matches by containment
// (Mongo semantics; memstore mirrors this).
type Filter map[string]any

// CancelFunc tears down a watch. It is idempotent, and once it returns no
// further snapshot deliveries occur for that watch.
type CancelFunc func()

// SnapshotFunc receives the full materialized result set of a watched query
// after every matching change, in change order.
type SnapshotFunc func(docs []Document)

// ServerTimestamp is a sentinel field value. Stores replace it with their
// own server-generated time at write application, keeping "created at"
// ordering globally consistent despite client clock skew.
var ServerTimestamp any = serverTimestampSentinel{}

type serverTimestampSentinel struct{}

// ErrNotFound is returned when the target document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// ErrExists is returned by Create when a document with the given identifier
// already exists. Callers that use deterministic identifiers (fan-out,
// profile ensure) treat it as "already done".
var ErrExists = errors.New("docstore: document already exists")

// Store is the capability contract.
type Store interface {
	// Insert creates a document with a store-generated identifier.
	Insert(ctx context.Context, collection string, data map[string]any) (string, error)

	// Create inserts a document with a caller-chosen identifier.
	// Returns ErrExists if the identifier is already taken.
	Create(ctx context.Context, collection, id string, data map[string]any) error

	// Update applies a partial field update. Returns ErrNotFound if the
	// document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, collection, id string) error

	// Get fetches one document by identifier.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Find returns all documents matching the filter. Order is unspecified;
	// callers sort.
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// Watch delivers a full snapshot of the filtered result set immediately
	// and again after every matching change, in change order, until the
	// returned CancelFunc is invoked or ctx is done.
	Watch(ctx context.Context, collection string, filter Filter, fn SnapshotFunc) (CancelFunc, error)
}

// IsServerTimestamp reports whether v is the server-timestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestampSentinel)
	return ok
}

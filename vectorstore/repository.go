// Package vectorstore manages the hosted document index used for file
// search: one shared vector store per deployment, with its identity
// persisted through a pluggable compare-and-swap repository so
// concurrent uploads never create duplicate stores.
package vectorstore

import (
	"context"
	"errors"
)

// Handle is the persisted identity of the shared vector store and the
// files known to live in it.
type Handle struct {
	VectorStoreID string   `json:"vector_store_id"`
	FileIDs       []string `json:"file_ids,omitempty"`
}

var (
	// ErrNoHandle: no vector store has been created yet.
	ErrNoHandle = errors.New("vectorstore: no handle persisted")
	// ErrRevisionConflict: another writer saved first; reload and retry.
	ErrRevisionConflict = errors.New("vectorstore: revision conflict")
)

// Repository persists the handle with optimistic concurrency. Load
// returns the current handle and its revision; Save succeeds only when
// expectedRevision still matches the stored one. A first save uses
// expectedRevision 0.
type Repository interface {
	Load(ctx context.Context) (Handle, uint64, error)
	Save(ctx context.Context, h Handle, expectedRevision uint64) error
}

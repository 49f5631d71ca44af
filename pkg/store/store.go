// Package store persists layout documents.
//
// A [Store] keeps [document.Document] values by id. Three backends are
// provided:
//
//   - [FileStore] keeps one JSON file per document in a config directory
//     (CLI use, ~/.config/reflow/layouts by default)
//   - [MongoStore] keeps documents in a MongoDB collection (server use)
//   - [MemoryStore] keeps documents in memory (tests, --store memory)
//
// Missing documents are reported as errors with code DOCUMENT_NOT_FOUND so
// the HTTP layer can map them to 404.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 100

// Store is the interface for document storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the document with the given id.
	Get(ctx context.Context, id string) (*document.Document, error)

	// Put inserts or replaces a document. Documents without an id are
	// assigned one.
	Put(ctx context.Context, doc *document.Document) error

	// Delete removes the document with the given id.
	Delete(ctx context.Context, id string) error

	// List returns summaries of the newest documents first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Close releases the backend.
	Close() error
}

// Summary describes a stored document without its boxes.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Boxes     int       `json:"boxes"`
	CreatedAt time.Time `json:"created_at"`
}

// Summarize returns the summary of d.
func Summarize(d *document.Document) Summary {
	return Summary{ID: d.ID, Name: d.Name, Boxes: len(d.Boxes), CreatedAt: d.CreatedAt}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", id)
}

// prepare validates d and fills in its id and creation time.
func prepare(d *document.Document) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.EnsureID()
	return errors.ValidateDocumentID(d.ID)
}

func newestFirst(s []Summary, limit int) []Summary {
	sort.SliceStable(s, func(i, j int) bool { return s[i].CreatedAt.After(s[j].CreatedAt) })
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}

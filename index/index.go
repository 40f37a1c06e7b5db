// Package index declares the document index used for full-text search over
// decorated search hits.
package index

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a document lookup fails.
	ErrNotFound = errors.New("not found")

	// ErrMissingHitID is returned when a document does not specify a
	// valid hit ID.
	ErrMissingHitID = errors.New("document does not provide a valid hit ID")
)

// Document describes an indexed, searchable search hit.
type Document struct {
	// A unique identifier for the hit entry.
	HitID uuid.UUID

	// The report the hit belongs to.
	ReportID uuid.UUID

	// The raw identifier line of the hit sequence.
	SeqID string

	// The descriptive title of the hit sequence.
	Title string

	// The alignment bit score. Search results are ranked by it.
	BitScore float64

	// The last time this document was indexed.
	IndexedAt time.Time
}

// QueryType describes the types of queries supported by the indexer.
type QueryType uint8

const (
	// QueryTypeMatch requests the indexer to match each expression term.
	QueryTypeMatch QueryType = iota

	// QueryTypePhrase searches the index for an exact phrase match.
	QueryTypePhrase
)

// Query encapsulates a set of parameters to use when searching the index.
type Query struct {
	// The way that the indexer should interpret the search expression.
	Type QueryType

	// The search expression.
	Expression string

	// The number of search results to skip.
	Offset uint64
}

// Indexer is implemented by objects that can index and search hit
// documents.
type Indexer interface {
	// Index inserts a new document to the index or updates the index
	// entry for an existing document.
	Index(doc *Document) error

	// FindByID looks up a document by its hit ID.
	FindByID(hitID uuid.UUID) (*Document, error)

	// Search the index for a particular query and return back a result
	// iterator.
	Search(query Query) (Iterator, error)
}

// Iterator is implemented by objects that can paginate search results.
type Iterator interface {
	// Close the iterator and release any allocated resources.
	Close() error

	// Next loads the next document matching the search query.
	// It returns false if no more documents are available.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Document returns the current document from the result set.
	Document() *Document

	// TotalCount returns the approximate number of search results.
	TotalCount() uint64
}

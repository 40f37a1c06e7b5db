package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a report lookup fails.
var ErrNotFound = errors.New("not found")

// Store is implemented by objects that can persist and query search
// reports.
type Store interface {
	// UpsertReport creates a new report or updates an existing report.
	// New reports are assigned an ID on insertion.
	UpsertReport(r *Report) error

	// FindReport looks up a report by its ID.
	FindReport(id uuid.UUID) (*Report, error)

	// Reports returns an iterator for the set of reports whose IDs belong
	// to the [fromID, toID) range and were submitted before the provided
	// timestamp.
	Reports(fromID, toID uuid.UUID, submittedBefore time.Time) (Iterator, error)

	// DeleteReport removes the report with the specified ID.
	DeleteReport(id uuid.UUID) error
}

// Iterator is implemented by objects that can iterate a set of reports.
type Iterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with an iterator.
	Close() error

	// Report returns the currently fetched report.
	Report() *Report
}

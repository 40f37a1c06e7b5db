// Package inmem provides an in-memory report store implementation.
package inmem

import (
	"fmt"
	"sync"
	"time"

	"github.com/ejacobg/seqlinks/linkgen"
	"github.com/ejacobg/seqlinks/report"
	"github.com/google/uuid"
)

// Compile-time check for ensuring InMemoryStore implements report.Store.
var _ report.Store = (*InMemoryStore)(nil)

// InMemoryStore implements an in-memory report store that can be
// concurrently accessed by multiple clients.
type InMemoryStore struct {
	// sync.RWMutex supports multiple-reader semantics, good for the
	// read-heavy lookup workload of the frontend.
	mu sync.RWMutex

	reports map[uuid.UUID]*report.Report
}

// NewInMemoryStore creates a new in-memory report store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		reports: make(map[uuid.UUID]*report.Report),
	}
}

// UpsertReport creates a new report or updates an existing report.
func (s *InMemoryStore) UpsertReport(r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID != uuid.Nil {
		s.reports[r.ID] = copyReport(r)
		return nil
	}

	// Assign a new ID and insert the report.
	for {
		r.ID = uuid.New()
		if s.reports[r.ID] == nil {
			break
		}
	}

	s.reports[r.ID] = copyReport(r)
	return nil
}

// FindReport looks up a copy of a report by its ID.
func (s *InMemoryStore) FindReport(id uuid.UUID) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.reports[id]
	if r == nil {
		return nil, fmt.Errorf("find report: %w", report.ErrNotFound)
	}

	return copyReport(r), nil
}

// Reports returns an iterator for the set of reports whose IDs belong to
// the [fromID, toID) range and were submitted before the provided
// timestamp.
func (s *InMemoryStore) Reports(fromID, toID uuid.UUID, submittedBefore time.Time) (report.Iterator, error) {
	from, to := fromID.String(), toID.String()

	s.mu.RLock()
	var list []*report.Report
	for reportID, r := range s.reports {
		if id := reportID.String(); id >= from && id < to && r.SubmittedAt.Before(submittedBefore) {
			list = append(list, r)
		}
	}
	s.mu.RUnlock()

	return &reportIterator{s: s, reports: list}, nil
}

// DeleteReport removes the report with the specified ID.
func (s *InMemoryStore) DeleteReport(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reports[id] == nil {
		return fmt.Errorf("delete report: %w", report.ErrNotFound)
	}

	delete(s.reports, id)
	return nil
}

// copyReport makes a deep copy of a report so that callers never share
// state with the store.
func copyReport(r *report.Report) *report.Report {
	rCopy := new(report.Report)
	*rCopy = *r
	rCopy.Hits = make([]report.Hit, len(r.Hits))
	copy(rCopy.Hits, r.Hits)
	for i, hit := range r.Hits {
		rCopy.Hits[i].Links = append([]linkgen.Link(nil), hit.Links...)
	}
	return rCopy
}

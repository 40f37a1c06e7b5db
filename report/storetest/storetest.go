// Package storetest defines a re-usable set of store-related tests that can
// be executed against any type that implements report.Store.
package storetest

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ejacobg/seqlinks/linkgen"
	"github.com/ejacobg/seqlinks/report"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

var (
	minUUID = uuid.Nil
	midUUID = uuid.MustParse("80000000-0000-0000-0000-000000000000")
	maxUUID = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")
)

// Suite defines a re-usable set of report-store tests that can be executed
// against any type that implements report.Store.
type Suite struct {
	S report.Store

	// Optional helper functions.
	BeforeEach func(*testing.T)
	AfterEach  func(*testing.T)
}

// TestStore runs all the below functions on the store.
func (s *Suite) TestStore(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*testing.T, report.Store)
	}{
		{"Upsert report", TestUpsertReport},
		{"Find report", TestFindReport},
		{"Report iterator time filter", TestReportIteratorTimeFilter},
		{"Partitioned report iterators", TestPartitionedReportIterators},
		{"Concurrent report iterators", TestConcurrentReportIterators},
		{"Delete report", TestDeleteReport},
	}

	if s.BeforeEach == nil {
		s.BeforeEach = func(t *testing.T) {}
	}

	if s.AfterEach == nil {
		s.AfterEach = func(t *testing.T) {}
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s.BeforeEach(t)
			test.fn(t, s.S)
			s.AfterEach(t)
		})
	}
}

// TestUpsertReport verifies the report upsert logic.
func TestUpsertReport(t *testing.T, s report.Store) {
	// Create a new report.
	original := makeReport("blastn", "nucleotide", 1)
	if err := s.UpsertReport(original); err != nil {
		t.Fatalf("failed to insert report: %v", err)
	}
	if original.ID == uuid.Nil {
		t.Fatalf("expected an ID to be assigned to the new report")
	}

	// Update the existing report with decorated hits.
	updated := makeReport("blastn", "nucleotide", 1)
	updated.ID = original.ID
	updated.Hits[0].Links = []linkgen.Link{
		{Title: "NCBI", URL: "https://www.ncbi.nlm.nih.gov/nucleotide/195394571", Order: 2, Icon: "fa-external-link"},
	}
	if err := s.UpsertReport(updated); err != nil {
		t.Fatalf("failed to update report: %v", err)
	}
	if updated.ID != original.ID {
		t.Errorf("report ID changed on update: got %v, want %v", updated.ID, original.ID)
	}

	stored, err := s.FindReport(original.ID)
	if err != nil {
		t.Fatalf("failed to find report: %v", err)
	}
	if len(stored.Hits[0].Links) != 1 {
		t.Errorf("expected the update to persist the decorated hit links")
	}
}

// TestFindReport verifies the report lookup logic.
func TestFindReport(t *testing.T, s report.Store) {
	original := makeReport("blastp", "protein", 2)
	if err := s.UpsertReport(original); err != nil {
		t.Fatalf("failed to insert report: %v", err)
	}

	stored, err := s.FindReport(original.ID)
	if err != nil {
		t.Fatalf("failed to find report: %v", err)
	}
	if diff := cmp.Diff(original, stored); diff != "" {
		t.Errorf("stored report mismatch (-want +got):\n%s", diff)
	}

	// The store must hand out copies, not its internal state.
	stored.QueryID = "mutated"
	again, err := s.FindReport(original.ID)
	if err != nil {
		t.Fatalf("failed to re-find report: %v", err)
	}
	if again.QueryID == "mutated" {
		t.Errorf("mutating a returned report leaked into the store")
	}

	// Unknown IDs yield ErrNotFound.
	if _, err = s.FindReport(uuid.New()); !errors.Is(err, report.ErrNotFound) {
		t.Errorf("unexpected error %v, want %v", err, report.ErrNotFound)
	}
}

// TestReportIteratorTimeFilter verifies that the report iterator only
// yields reports submitted before the provided cut-off.
func TestReportIteratorTimeFilter(t *testing.T, s report.Store) {
	submitTimes := make([]time.Time, 3)
	for i := 0; i < len(submitTimes); i++ {
		r := makeReport("blastn", "nucleotide", 1)
		r.SubmittedAt = time.Now().Add(time.Duration(i-3) * time.Hour).Truncate(time.Second).UTC()
		submitTimes[i] = r.SubmittedAt
		if err := s.UpsertReport(r); err != nil {
			t.Fatalf("failed to insert report: %v", err)
		}
	}

	for i, cutoff := range submitTimes {
		if got := countReports(t, s, minUUID, maxUUID, cutoff); got != i {
			t.Errorf("cutoff %d: got %d reports, want %d", i, got, i)
		}
	}
}

// TestPartitionedReportIterators verifies that splitting the UUID space
// into two partitions yields every report exactly once.
func TestPartitionedReportIterators(t *testing.T, s report.Store) {
	numReports := 100
	for i := 0; i < numReports; i++ {
		if err := s.UpsertReport(makeReport("blastx", "protein", 1)); err != nil {
			t.Fatalf("failed to insert report: %v", err)
		}
	}

	cutoff := time.Now().Add(time.Hour)
	left := countReports(t, s, minUUID, midUUID, cutoff)
	right := countReports(t, s, midUUID, maxUUID, cutoff)
	if left+right != numReports {
		t.Errorf("partitions yielded %d+%d reports, want %d total", left, right, numReports)
	}
	if left == 0 || right == 0 {
		t.Errorf("expected both partitions to be non-empty; got %d and %d", left, right)
	}
}

// TestConcurrentReportIterators verifies that multiple clients can iterate
// the store at the same time.
func TestConcurrentReportIterators(t *testing.T, s report.Store) {
	var (
		wg           sync.WaitGroup
		numIterators = 10
		numReports   = 10
	)

	for i := 0; i < numReports; i++ {
		if err := s.UpsertReport(makeReport("blastn", "nucleotide", 1)); err != nil {
			t.Fatalf("failed to insert report: %v", err)
		}
	}

	for i := 0; i < numIterators; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			seen := make(map[uuid.UUID]bool)
			it, err := s.Reports(minUUID, maxUUID, time.Now().Add(time.Hour))
			if err != nil {
				t.Errorf("iterator %d: %v", id, err)
				return
			}
			defer func() {
				if err := it.Close(); err != nil {
					t.Errorf("iterator %d close: %v", id, err)
				}
			}()

			for it.Next() {
				r := it.Report()
				if seen[r.ID] {
					t.Errorf("iterator %d yielded report %v twice", id, r.ID)
					return
				}
				seen[r.ID] = true
			}
			if err = it.Error(); err != nil {
				t.Errorf("iterator %d: %v", id, err)
			}
			if len(seen) != numReports {
				t.Errorf("iterator %d saw %d reports, want %d", id, len(seen), numReports)
			}
		}(i)
	}

	doneCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for concurrent iterators to complete")
	}
}

// TestDeleteReport verifies the report removal logic.
func TestDeleteReport(t *testing.T, s report.Store) {
	r := makeReport("blastn", "nucleotide", 1)
	if err := s.UpsertReport(r); err != nil {
		t.Fatalf("failed to insert report: %v", err)
	}

	if err := s.DeleteReport(r.ID); err != nil {
		t.Fatalf("failed to delete report: %v", err)
	}

	if _, err := s.FindReport(r.ID); !errors.Is(err, report.ErrNotFound) {
		t.Errorf("unexpected error %v, want %v", err, report.ErrNotFound)
	}

	// Deleting an unknown report yields ErrNotFound.
	if err := s.DeleteReport(uuid.New()); !errors.Is(err, report.ErrNotFound) {
		t.Errorf("unexpected error %v, want %v", err, report.ErrNotFound)
	}
}

func countReports(t *testing.T, s report.Store, fromID, toID uuid.UUID, submittedBefore time.Time) int {
	it, err := s.Reports(fromID, toID, submittedBefore)
	if err != nil {
		t.Fatalf("failed to create iterator: %v", err)
	}
	defer func() {
		if err := it.Close(); err != nil {
			t.Fatalf("failed to close iterator: %v", err)
		}
	}()

	var count int
	for it.Next() {
		count++
	}
	if err = it.Error(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	return count
}

func makeReport(program, dbType string, numHits int) *report.Report {
	r := &report.Report{
		Program:     program,
		DBType:      dbType,
		Database:    "nt",
		QueryID:     "query-1",
		SubmittedAt: time.Now().Truncate(time.Second).UTC(),
	}
	for i := 0; i < numHits; i++ {
		r.Hits = append(r.Hits, report.Hit{
			SeqID:           fmt.Sprintf("gi|%d|", 195394571+i),
			Title:           fmt.Sprintf("test hit %d", i),
			PercentIdentity: 98.5,
			AlignLength:     120,
			EValue:          1e-50,
			BitScore:        240.2,
			Coordinates:     report.Coordinates{QueryStart: 1, QueryEnd: 120, HitStart: 11, HitEnd: 130},
		})
	}
	return r
}

// Package indextest defines a re-usable set of index-related tests that can
// be executed against any type that implements index.Indexer.
package indextest

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ejacobg/seqlinks/index"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// Suite defines a re-usable set of index-related tests that can be executed
// against any type that implements index.Indexer.
type Suite struct {
	Idx index.Indexer

	// Optional helper functions.
	BeforeEach func(t *testing.T)
	AfterEach  func(t *testing.T)
}

// TestIndexer runs all the below functions on the index.
func (s *Suite) TestIndexer(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*testing.T, index.Indexer)
	}{
		{"Index document", TestIndexDocument},
		{"Find by ID", TestFindByID},
		{"Phrase search", TestPhraseSearch},
		{"Match search", TestMatchSearch},
		{"Match search with offset", TestMatchSearchWithOffset},
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
			test.fn(t, s.Idx)
			s.AfterEach(t)
		})
	}
}

// TestIndexDocument verifies the indexing logic for new and existing
// documents.
func TestIndexDocument(t *testing.T, idx index.Indexer) {
	// Insert a document without a hit ID.
	incompleteDoc := &index.Document{
		SeqID: "gi|195394571|",
	}

	if err := idx.Index(incompleteDoc); !errors.Is(err, index.ErrMissingHitID) {
		t.Errorf("unexpected error %v, want %v", err, index.ErrMissingHitID)
	}

	// Insert a new document.
	doc := &index.Document{
		HitID:     uuid.New(),
		ReportID:  uuid.New(),
		SeqID:     "gi|195394571|ref|NM_001134939.1|",
		Title:     "Arabidopsis thaliana cytochrome C oxidase",
		BitScore:  240.2,
		IndexedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	if err := idx.Index(doc); err != nil {
		t.Fatalf("could not index document: %v", err)
	}

	// Update the existing document.
	doc.Title = "Arabidopsis thaliana cytochrome C oxidase subunit II"
	doc.BitScore = 260.4
	doc.IndexedAt = time.Now().UTC()

	if err := idx.Index(doc); err != nil {
		t.Errorf("could not update document: %v", err)
	}
}

// TestFindByID verifies the document lookup logic.
func TestFindByID(t *testing.T, idx index.Indexer) {
	// Insert a new document.
	doc := &index.Document{
		HitID:     uuid.New(),
		ReportID:  uuid.New(),
		SeqID:     "sp|P12345|AATM_RABIT",
		Title:     "Aspartate aminotransferase, mitochondrial",
		BitScore:  512.7,
		IndexedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	if err := idx.Index(doc); err != nil {
		t.Fatalf("could not index document: %v", err)
	}

	// Look up the document and confirm all fields match.
	got, err := idx.FindByID(doc.HitID)
	if err != nil {
		t.Fatalf("could not find document: %v", err)
	}

	if !cmp.Equal(got, doc) {
		t.Errorf("document returned by FindByID does not match indexed document")
	}

	// Look up an unknown ID.
	_, err = idx.FindByID(uuid.New())
	if !errors.Is(err, index.ErrNotFound) {
		t.Errorf("unexpected error %v, want %v", err, index.ErrNotFound)
	}
}

// TestPhraseSearch verifies the document search logic when searching for
// exact phrases.
func TestPhraseSearch(t *testing.T, idx index.Indexer) {
	var (
		numDocs = 50
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		doc := &index.Document{
			HitID:    id,
			ReportID: uuid.New(),
			SeqID:    fmt.Sprintf("hit_%s", id.String()),
			Title:    "uncharacterized protein fragment",
			BitScore: float64(numDocs - i),
		}

		if i%5 == 0 {
			doc.Title = "putative zinc finger protein"
			expIDs = append(expIDs, id)
		}

		if err := idx.Index(doc); err != nil {
			t.Fatalf("could not index document: %v", err)
		}
	}

	it, err := idx.Search(index.Query{
		Type:       index.QueryTypePhrase,
		Expression: "zinc finger protein",
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	// Docs receive decreasing bit scores in insertion order, so the
	// ranked results must come back in the same order as expIDs.
	ids := iterateDocs(t, it)
	if !cmp.Equal(ids, expIDs) {
		t.Errorf("search returned incorrect IDs")
	}
}

// TestMatchSearch verifies the document search logic when searching for
// keyword matches.
func TestMatchSearch(t *testing.T, idx index.Indexer) {
	var (
		numDocs = 50
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		doc := &index.Document{
			HitID:    id,
			ReportID: uuid.New(),
			SeqID:    fmt.Sprintf("hit_%s", id.String()),
			Title:    "hypothetical membrane transporter",
			BitScore: float64(numDocs - i),
		}

		if i%5 == 0 {
			doc.Title = "ribosomal RNA small subunit"
			expIDs = append(expIDs, id)
		}

		if err := idx.Index(doc); err != nil {
			t.Fatalf("could not index document: %v", err)
		}
	}

	it, err := idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "ribosomal subunit",
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	ids := iterateDocs(t, it)
	if !cmp.Equal(ids, expIDs) {
		t.Errorf("search returned incorrect IDs")
	}
}

// TestMatchSearchWithOffset verifies the document search logic when
// searching for keyword matches and skipping some results.
func TestMatchSearchWithOffset(t *testing.T, idx index.Indexer) {
	var (
		numDocs = 50
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		doc := &index.Document{
			HitID:    id,
			ReportID: uuid.New(),
			SeqID:    fmt.Sprintf("hit_%s", id.String()),
			Title:    "16S ribosomal RNA gene",
			BitScore: float64(numDocs - i),
		}
		expIDs = append(expIDs, id)

		if err := idx.Index(doc); err != nil {
			t.Fatalf("could not index document: %v", err)
		}
	}

	it, err := idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "ribosomal",
		Offset:     20,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	ids := iterateDocs(t, it)
	if !cmp.Equal(ids, expIDs[20:]) {
		t.Errorf("search with offset returned incorrect IDs")
	}

	// Search with an offset beyond the total number of results.
	it, err = idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "ribosomal",
		Offset:     200,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if ids = iterateDocs(t, it); len(ids) != 0 {
		t.Errorf("expected no results, got %d", len(ids))
	}
}

func iterateDocs(t *testing.T, it index.Iterator) []uuid.UUID {
	var seen []uuid.UUID
	for it.Next() {
		seen = append(seen, it.Document().HitID)
	}
	if err := it.Error(); err != nil {
		t.Errorf("iterator error: %v", err)
	}
	if err := it.Close(); err != nil {
		t.Errorf("failed to close iterator: %v", err)
	}
	return seen
}

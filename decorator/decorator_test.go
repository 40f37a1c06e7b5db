package decorator

import (
	"context"
	"sync"
	"testing"

	"github.com/ejacobg/seqlinks/index"
	"github.com/ejacobg/seqlinks/report"
	"github.com/google/uuid"
)

func TestDecorateAttachesLinks(t *testing.T) {
	idx := newStubIndexer()
	d := mustDecorator(t, idx)

	r := &report.Report{
		ID:       uuid.New(),
		Program:  "blastn",
		DBType:   "nucleotide",
		Database: "nt",
		Hits: []report.Hit{
			{SeqID: "gi|195394571|ref|NM_001134939.1|", Title: "Arabidopsis thaliana", BitScore: 240.2},
			{SeqID: "hit_without_identifiers", Title: "an unremarkable sequence"},
		},
	}

	if err := d.Decorate(context.TODO(), r); err != nil {
		t.Fatalf("decorate failed: %v", err)
	}

	if got := len(r.Hits[0].Links); got != 1 {
		t.Fatalf("hit 0: got %d links, want 1", got)
	}
	if got, want := r.Hits[0].Links[0].URL, "https://www.ncbi.nlm.nih.gov/nucleotide/195394571"; got != want {
		t.Errorf("hit 0: got link URL %q, want %q", got, want)
	}
	if got := len(r.Hits[1].Links); got != 0 {
		t.Errorf("hit 1: got %d links, want 0", got)
	}
}

func TestDecorateSanitizesTitles(t *testing.T) {
	idx := newStubIndexer()
	d := mustDecorator(t, idx)

	r := &report.Report{
		ID:     uuid.New(),
		DBType: "protein",
		Hits: []report.Hit{
			{SeqID: "sp|P12345|AATM_RABIT", Title: "<b>aspartate</b> aminotransferase <script>x()</script>"},
		},
	}

	if err := d.Decorate(context.TODO(), r); err != nil {
		t.Fatalf("decorate failed: %v", err)
	}

	if got, want := r.Hits[0].DisplayTitle, "aspartate aminotransferase"; got != want {
		t.Errorf("got display title %q, want %q", got, want)
	}
}

func TestDecorateIndexesHits(t *testing.T) {
	idx := newStubIndexer()
	d := mustDecorator(t, idx)

	r := &report.Report{
		ID:       uuid.New(),
		DBType:   "nucleotide",
		Database: "nt",
		Hits: []report.Hit{
			{SeqID: "RF00001", Title: "5S ribosomal RNA", BitScore: 90.1},
			{SeqID: "RF00005", Title: "tRNA", BitScore: 80.5},
		},
	}

	if err := d.Decorate(context.TODO(), r); err != nil {
		t.Fatalf("decorate failed: %v", err)
	}

	if got := len(idx.docs); got != len(r.Hits) {
		t.Fatalf("indexed %d documents, want %d", got, len(r.Hits))
	}
	for _, doc := range idx.docs {
		if doc.ReportID != r.ID {
			t.Errorf("indexed document points at report %v, want %v", doc.ReportID, r.ID)
		}
	}

	// Re-decorating must update the same documents, not add new ones.
	if err := d.Decorate(context.TODO(), r); err != nil {
		t.Fatalf("re-decorate failed: %v", err)
	}
	if got := len(idx.docs); got != len(r.Hits) {
		t.Errorf("after re-decoration: indexed %d documents, want %d", got, len(r.Hits))
	}
}

func TestDecorateRequiresReportID(t *testing.T) {
	d := mustDecorator(t, newStubIndexer())

	err := d.Decorate(context.TODO(), &report.Report{DBType: "protein"})
	if err == nil {
		t.Fatal("expected an error for a report without an ID")
	}
}

func mustDecorator(t *testing.T, idx index.Indexer) *Decorator {
	t.Helper()
	d, err := NewDecorator(Config{IndexAPI: idx, DecorateWorkers: 2})
	if err != nil {
		t.Fatalf("failed to create decorator: %v", err)
	}
	return d
}

// stubIndexer is a minimal index.Indexer used for exercising the pipeline
// without a real search backend.
type stubIndexer struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*index.Document
}

func newStubIndexer() *stubIndexer {
	return &stubIndexer{docs: make(map[uuid.UUID]*index.Document)}
}

func (s *stubIndexer) Index(doc *index.Document) error {
	if doc.HitID == uuid.Nil {
		return index.ErrMissingHitID
	}
	s.mu.Lock()
	s.docs[doc.HitID] = doc
	s.mu.Unlock()
	return nil
}

func (s *stubIndexer) FindByID(hitID uuid.UUID) (*index.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, found := s.docs[hitID]; found {
		return doc, nil
	}
	return nil, index.ErrNotFound
}

func (s *stubIndexer) Search(index.Query) (index.Iterator, error) {
	return nil, nil
}

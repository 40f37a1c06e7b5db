package bleve

import (
	"fmt"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/ejacobg/seqlinks/index"
	"github.com/google/uuid"
)

// The size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Compile-time check to ensure Indexer implements index.Indexer.
var _ index.Indexer = (*Indexer)(nil)

// document is the subset of index.Document that is stored inside the bleve
// index.
type document struct {
	SeqID    string
	Title    string
	BitScore float64
}

// Indexer is an index.Indexer implementation that uses an in-memory bleve
// instance to catalogue and search hit documents.
type Indexer struct {
	mu sync.RWMutex

	// docs maps a hit ID to the document it represents.
	// Documents in this map are considered immutable.
	docs map[string]*index.Document

	// idx represents the bleve index on which to perform queries.
	idx bleve.Index
}

// NewIndexer creates a hit indexer that uses an in-memory bleve instance
// for indexing documents.
func NewIndexer() (*Indexer, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	return &Indexer{
		idx:  idx,
		docs: make(map[string]*index.Document),
	}, nil
}

// Close the indexer and release any allocated resources.
func (i *Indexer) Close() error {
	return i.idx.Close()
}

// Index inserts a new document to the index or updates the index entry for
// an existing document.
func (i *Indexer) Index(doc *index.Document) error {
	if doc.HitID == uuid.Nil {
		return fmt.Errorf("index: %w", index.ErrMissingHitID)
	}

	doc.IndexedAt = time.Now()

	// Store a copy of the document so that the caller does not retain a
	// reference into our internal document map.
	dcopy := copyDoc(doc)

	// The bleve index uses string based keys.
	key := dcopy.HitID.String()

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.idx.Index(key, makeDoc(dcopy)); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	i.docs[key] = dcopy
	return nil
}

// FindByID looks up a document by its hit ID.
func (i *Indexer) FindByID(hitID uuid.UUID) (*index.Document, error) {
	return i.findByID(hitID.String())
}

// findByID looks up a document by its hit UUID expressed as a string.
func (i *Indexer) findByID(hitID string) (*index.Document, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if d, found := i.docs[hitID]; found {
		return copyDoc(d), nil
	}

	return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
}

// Search the index for a particular query and return back a result
// iterator.
func (i *Indexer) Search(q index.Query) (index.Iterator, error) {
	// Create the appropriate query from the given expression.
	var bq query.Query
	switch q.Type {
	case index.QueryTypePhrase:
		bq = bleve.NewMatchPhraseQuery(q.Expression)
	default:
		bq = bleve.NewMatchQuery(q.Expression)
	}

	searchReq := bleve.NewSearchRequest(bq)
	searchReq.SortBy([]string{"-BitScore", "-_score"}) // Order by bit score, in descending order.
	searchReq.Size = batchSize                         // Bleve results are always paginated. Use this to control the page size.
	searchReq.From = int(q.Offset)                     // Controls the page offset.
	rs, err := i.idx.Search(searchReq)                 // Submit the search request.
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &iterator{idx: i, searchReq: searchReq, rs: rs, cumIdx: q.Offset}, nil
}

func copyDoc(d *index.Document) *index.Document {
	dcopy := new(index.Document)
	*dcopy = *d
	return dcopy
}

func makeDoc(d *index.Document) document {
	return document{
		SeqID:    d.SeqID,
		Title:    d.Title,
		BitScore: d.BitScore,
	}
}

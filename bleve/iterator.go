package bleve

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/ejacobg/seqlinks/index"
)

// iterator implements index.Iterator by walking the paginated result set
// of a hit search, one page at a time.
type iterator struct {
	// The indexer that produced the result set. Bleve only stores the
	// searchable fields of each hit document; the full documents come
	// out of the indexer's document map.
	idx *Indexer

	// The search request the result set came from. Re-submitted with a
	// bumped offset whenever the current page runs out.
	searchReq *bleve.SearchRequest

	cumIdx uint64 // Position within the full result set.
	rsIdx  int    // Position within the current page.
	rs     *bleve.SearchResult

	latchedDoc *index.Document
	lastErr    error
}

// Close the iterator and release any allocated resources.
func (it *iterator) Close() error {
	it.idx = nil
	it.searchReq = nil
	if it.rs != nil {
		it.cumIdx = it.rs.Total
	}
	return nil
}

// Next loads the next document matching the search query.
// It returns false if no more documents are available.
func (it *iterator) Next() bool {
	if it.lastErr != nil || it.rs == nil || it.cumIdx >= it.rs.Total {
		return false
	}

	// Reached the end of the current page; pull in the next one.
	if it.rsIdx >= it.rs.Hits.Len() {
		it.searchReq.From += it.searchReq.Size
		if it.rs, it.lastErr = it.idx.idx.Search(it.searchReq); it.lastErr != nil {
			return false
		}

		it.rsIdx = 0
	}

	// Resolve the matched hit ID to the full document; findByID returns
	// a copy so callers cannot mutate the indexed entry.
	nextID := it.rs.Hits[it.rsIdx].ID
	if it.latchedDoc, it.lastErr = it.idx.findByID(nextID); it.lastErr != nil {
		return false
	}

	it.cumIdx++
	it.rsIdx++
	return true
}

// Error returns the last error encountered by the iterator.
func (it *iterator) Error() error {
	return it.lastErr
}

// Document returns the current document from the result set.
func (it *iterator) Document() *index.Document {
	return it.latchedDoc
}

// TotalCount returns the approximate number of search results.
func (it *iterator) TotalCount() uint64 {
	if it.rs == nil {
		return 0
	}
	return it.rs.Total
}

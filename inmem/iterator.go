package inmem

import "github.com/ejacobg/seqlinks/report"

// reportIterator is a report.Iterator implementation for the in-memory
// store.
type reportIterator struct {
	s *InMemoryStore

	reports  []*report.Report
	curIndex int
}

// Next implements report.Iterator.
func (i *reportIterator) Next() bool {
	if i.curIndex >= len(i.reports) {
		return false
	}
	i.curIndex++
	return true
}

// Error implements report.Iterator.
func (i *reportIterator) Error() error {
	return nil
}

// Close implements report.Iterator.
func (i *reportIterator) Close() error {
	return nil
}

// Report implements report.Iterator. The iterator hands out copies so that
// callers cannot mutate the store contents.
func (i *reportIterator) Report() *report.Report {
	// The iterator is advanced before the report is fetched, so we return
	// the report at the previous position.
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	return copyReport(i.reports[i.curIndex-1])
}

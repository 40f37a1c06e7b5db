package inmem

import (
	"testing"

	"github.com/ejacobg/seqlinks/report/storetest"
)

func TestAcceptance(t *testing.T) {
	suite := storetest.Suite{}

	suite.BeforeEach = func(_ *testing.T) {
		suite.S = NewInMemoryStore()
	}

	suite.TestStore(t)
}

// Writing individual tests for debugging purposes.

func TestUpsertReport(t *testing.T) {
	storetest.TestUpsertReport(t, NewInMemoryStore())
}

func TestDeleteReport(t *testing.T) {
	storetest.TestDeleteReport(t, NewInMemoryStore())
}

func TestReportIteratorTimeFilter(t *testing.T) {
	storetest.TestReportIteratorTimeFilter(t, NewInMemoryStore())
}

func TestConcurrentReportIterators(t *testing.T) {
	storetest.TestConcurrentReportIterators(t, NewInMemoryStore())
}

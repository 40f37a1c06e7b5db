package elasticsearch

import (
	"fmt"
	"time"
)

// The name of the elasticsearch index to use.
const indexName = "hitindexer"

// The size of each page of results that is cached locally by the iterator.
const batchSize = 10

var mappings = `
{
  "mappings" : {
    "properties": {
      "HitID": {"type": "keyword"},
      "ReportID": {"type": "keyword"},
      "SeqID": {"type": "text"},
      "Title": {"type": "text"},
      "IndexedAt": {"type": "date"},
      "BitScore": {"type": "double"}
    }
  }
}`

type searchResult struct {
	Hits searchResultHits `json:"hits"`
}

type searchResultHits struct {
	Total   total        `json:"total"`
	HitList []hitWrapper `json:"hits"`
}

type total struct {
	Count uint64 `json:"value"`
}

type hitWrapper struct {
	DocSource document `json:"_source"`
}

type document struct {
	HitID     string    `json:"HitID"`
	ReportID  string    `json:"ReportID"`
	SeqID     string    `json:"SeqID"`
	Title     string    `json:"Title"`
	IndexedAt time.Time `json:"IndexedAt"`
	BitScore  float64   `json:"BitScore"`
}

type updateResult struct {
	Result string `json:"result"`
}

// Not all errors can be marshaled into this struct, so unmarshalError may
// fail. Decoding into a map[string]any is the general-purpose alternative.
type errorResult struct {
	Error esError `json:"error"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

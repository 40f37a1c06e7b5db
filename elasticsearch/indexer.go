package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ejacobg/seqlinks/index"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// Compile-time check to ensure Indexer implements index.Indexer.
var _ index.Indexer = (*Indexer)(nil)

// Indexer is an index.Indexer implementation that uses an elasticsearch
// instance to catalogue and search hit documents.
type Indexer struct {
	es         *elasticsearch.Client
	refreshOpt func(*esapi.UpdateRequest)
}

// NewIndexer creates a hit indexer that uses an elasticsearch instance for
// indexing documents.
func NewIndexer(nodes []string, syncUpdates bool) (*Indexer, error) {
	cfg := elasticsearch.Config{
		Addresses: nodes,
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err = ensureIndex(es); err != nil {
		return nil, err
	}

	refreshOpt := es.Update.WithRefresh("false")
	if syncUpdates {
		refreshOpt = es.Update.WithRefresh("true")
	}

	return &Indexer{
		es:         es,
		refreshOpt: refreshOpt,
	}, nil
}

// Index inserts a new document to the index or updates the index entry for
// an existing document.
func (i *Indexer) Index(d *index.Document) error {
	if d.HitID == uuid.Nil {
		return fmt.Errorf("index: %w", index.ErrMissingHitID)
	}

	var (
		buf bytes.Buffer
		doc = makeDoc(d) // Make a copy of the document that's usable by elasticsearch.
	)

	update := map[string]interface{}{
		"doc":           doc,
		"doc_as_upsert": true,
	}

	if err := json.NewEncoder(&buf).Encode(update); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	res, err := i.es.Update(indexName, doc.HitID, &buf, i.refreshOpt)

	// nil errors typically signify things like a failed DNS lookup or a
	// failed connection.
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	// A structured JSON response with error details may also be returned.
	var updateRes updateResult
	if err = unmarshalResponse(res, &updateRes); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	return nil
}

// FindByID looks up a document by its hit ID.
func (i *Indexer) FindByID(hitID uuid.UUID) (*index.Document, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"HitID": hitID.String(),
			},
		},
		"from": 0,
		"size": 1,
	}

	searchRes, err := runSearch(i.es, query)
	if err != nil {
		return nil, fmt.Errorf("find by ID: %w", err)
	}

	if len(searchRes.Hits.HitList) != 1 {
		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	}

	return mapDoc(&searchRes.Hits.HitList[0].DocSource), nil
}

// Search the index for a particular query and return back a result
// iterator.
func (i *Indexer) Search(q index.Query) (index.Iterator, error) {
	var qtype string
	switch q.Type {
	case index.QueryTypePhrase:
		qtype = "phrase"
	default:
		qtype = "best_fields"
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"function_score": map[string]interface{}{
				"query": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"type":   qtype,
						"query":  q.Expression,
						"fields": []string{"Title", "SeqID"},
					},
				},
				"script_score": map[string]interface{}{
					"script": map[string]interface{}{
						// Augment elasticsearch's calculated relevance score with each document's bit score.
						"source": "_score + doc['BitScore'].value",
					},
				},
			},
		},
		// Fields for handling the page offset and page size.
		"from": q.Offset,
		"size": batchSize,
	}

	searchRes, err := runSearch(i.es, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &iterator{es: i.es, searchReq: query, rs: searchRes, cumIdx: q.Offset}, nil
}

// ensureIndex creates a new index with the predefined mappings on the given
// client.
func ensureIndex(es *elasticsearch.Client) error {
	mappingsReader := strings.NewReader(mappings)
	res, err := es.Indices.Create(indexName, es.Indices.Create.WithBody(mappingsReader))
	if err != nil {
		return fmt.Errorf("cannot create ES index: %w", err)
	} else if res.IsError() {
		err := unmarshalError(res)
		if esErr, valid := err.(esError); valid && esErr.Type == "resource_already_exists_exception" {
			return nil
		}
		return fmt.Errorf("cannot create ES index: %w", err)
	}

	return nil
}

// runSearch submits the given search query to the elasticsearch cluster.
func runSearch(es *elasticsearch.Client, searchQuery map[string]interface{}) (*searchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery); err != nil {
		return nil, fmt.Errorf("run search: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(indexName),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}

	var searchRes searchResult
	if err = unmarshalResponse(res, &searchRes); err != nil {
		return nil, err
	}

	return &searchRes, nil
}

func unmarshalError(res *esapi.Response) error {
	return unmarshalResponse(res, nil)
}

func unmarshalResponse(res *esapi.Response, to interface{}) error {
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errRes errorResult
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}

		return errRes.Error
	}

	return json.NewDecoder(res.Body).Decode(to)
}

// mapDoc converts a stored document into an index.Document.
func mapDoc(d *document) *index.Document {
	return &index.Document{
		HitID:     uuid.MustParse(d.HitID),
		ReportID:  uuid.MustParse(d.ReportID),
		SeqID:     d.SeqID,
		Title:     d.Title,
		IndexedAt: d.IndexedAt.UTC(),
		BitScore:  d.BitScore,
	}
}

func makeDoc(d *index.Document) document {
	return document{
		HitID:     d.HitID.String(),
		ReportID:  d.ReportID.String(),
		SeqID:     d.SeqID,
		Title:     d.Title,
		IndexedAt: d.IndexedAt.UTC(),
		BitScore:  d.BitScore,
	}
}

package decorator

import (
	"context"
	"fmt"

	"github.com/ejacobg/seqlinks/index"
	"github.com/ejacobg/seqlinks/pipeline"
	"github.com/google/uuid"
)

// hitIndexer submits each decorated hit to the hit index so it becomes
// searchable.
type hitIndexer struct {
	indexer index.Indexer
}

func newHitIndexer(indexer index.Indexer) *hitIndexer {
	return &hitIndexer{
		indexer: indexer,
	}
}

// Process implements pipeline.Processor.
func (hi *hitIndexer) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*hitPayload)

	doc := &index.Document{
		HitID:    hitID(payload.reportID, payload.hitIndex),
		ReportID: payload.reportID,
		SeqID:    payload.seqID,
		Title:    payload.displayTitle,
		BitScore: payload.bitScore,
	}

	if err := hi.indexer.Index(doc); err != nil {
		return nil, err
	}
	return p, nil
}

// hitID derives a stable document ID from the report ID and the hit's
// position in the report, so that re-decorating a report updates the
// existing index entries instead of duplicating them.
func hitID(reportID uuid.UUID, hitIndex int) uuid.UUID {
	return uuid.NewSHA1(reportID, []byte(fmt.Sprintf("hit-%d", hitIndex)))
}

package decorator

import (
	"context"

	"github.com/ejacobg/seqlinks/linkgen"
	"github.com/ejacobg/seqlinks/pipeline"
	"github.com/ejacobg/seqlinks/report"
)

// hitSource emits one payload per hit of the report being decorated.
type hitSource struct {
	r        *report.Report
	curIndex int
}

func (hs *hitSource) Error() error              { return nil }
func (hs *hitSource) Next(context.Context) bool { return hs.curIndex < len(hs.r.Hits) }

func (hs *hitSource) Payload() pipeline.Payload {
	hit := &hs.r.Hits[hs.curIndex]
	p := payloadPool.Get().(*hitPayload)

	p.reportID = hs.r.ID
	p.hitIndex = hs.curIndex
	p.seqID = hit.SeqID
	p.title = hit.Title
	p.dbType = hs.r.DBType
	p.database = hs.r.Database
	p.coords = hit.Coordinates
	p.bitScore = hit.BitScore

	hs.curIndex++
	return p
}

// reportUpdater copies the decoration results from each payload back onto
// the corresponding hit of the report. Payloads reach the sink serially, so
// no locking is required.
type reportUpdater struct {
	r *report.Report
}

func (ru *reportUpdater) Consume(_ context.Context, p pipeline.Payload) error {
	payload := p.(*hitPayload)
	hit := &ru.r.Hits[payload.hitIndex]
	hit.Links = append([]linkgen.Link(nil), payload.links...)
	hit.DisplayTitle = payload.displayTitle
	return nil
}

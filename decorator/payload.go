package decorator

import (
	"sync"

	"github.com/ejacobg/seqlinks/linkgen"
	"github.com/ejacobg/seqlinks/pipeline"
	"github.com/ejacobg/seqlinks/report"
	"github.com/google/uuid"
)

var (
	_ pipeline.Payload = (*hitPayload)(nil)
	_ linkgen.Record   = (*hitPayload)(nil)

	// Maintain a memory pool of payloads to help reduce the number of
	// allocations when decorating reports with many hits.
	payloadPool = sync.Pool{
		New: func() interface{} { return new(hitPayload) },
	}
)

// hitPayload carries one hit through the decoration pipeline.
type hitPayload struct {
	// Fields populated by the input source.
	reportID uuid.UUID
	hitIndex int
	seqID    string
	title    string
	dbType   string
	database string
	coords   report.Coordinates
	bitScore float64

	// links will be populated by the link decorator stage.
	links []linkgen.Link

	// displayTitle will be populated by the title sanitizer stage.
	displayTitle string
}

// Clone implements pipeline.Payload.
func (p *hitPayload) Clone() pipeline.Payload {
	newP := payloadPool.Get().(*hitPayload)
	newP.reportID = p.reportID
	newP.hitIndex = p.hitIndex
	newP.seqID = p.seqID
	newP.title = p.title
	newP.dbType = p.dbType
	newP.database = p.database
	newP.coords = p.coords
	newP.bitScore = p.bitScore
	newP.links = append([]linkgen.Link(nil), p.links...)
	newP.displayTitle = p.displayTitle
	return newP
}

// MarkAsProcessed implements pipeline.Payload.
func (p *hitPayload) MarkAsProcessed() {
	p.reportID = uuid.Nil
	p.hitIndex = 0
	p.seqID = p.seqID[:0]
	p.title = p.title[:0]
	p.dbType = p.dbType[:0]
	p.database = p.database[:0]
	p.coords = report.Coordinates{}
	p.bitScore = 0
	p.links = p.links[:0]
	p.displayTitle = p.displayTitle[:0]
	payloadPool.Put(p)
}

// ID implements linkgen.Record.
func (p *hitPayload) ID() string { return p.seqID }

// Title implements linkgen.Record.
func (p *hitPayload) Title() string { return p.title }

// DBType implements linkgen.Record.
func (p *hitPayload) DBType() string { return p.dbType }

// WhichDB implements linkgen.Record.
func (p *hitPayload) WhichDB() string { return p.database }

// Coordinates implements linkgen.Record.
func (p *hitPayload) Coordinates() (queryStart, queryEnd, hitStart, hitEnd int) {
	return p.coords.QueryStart, p.coords.QueryEnd, p.coords.HitStart, p.coords.HitEnd
}

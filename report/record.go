package report

import "github.com/ejacobg/seqlinks/linkgen"

// Compile-time check to ensure HitRecord implements linkgen.Record.
var _ linkgen.Record = HitRecord{}

// HitRecord adapts a Hit and its parent Report to the linkgen.Record
// interface expected by the link generators. The hit supplies the
// identifier and title while the report supplies the search context.
type HitRecord struct {
	Hit    *Hit
	Report *Report
}

// ID implements linkgen.Record.
func (r HitRecord) ID() string { return r.Hit.SeqID }

// Title implements linkgen.Record.
func (r HitRecord) Title() string { return r.Hit.Title }

// DBType implements linkgen.Record.
func (r HitRecord) DBType() string { return r.Report.DBType }

// WhichDB implements linkgen.Record.
func (r HitRecord) WhichDB() string { return r.Report.Database }

// Coordinates implements linkgen.Record.
func (r HitRecord) Coordinates() (queryStart, queryEnd, hitStart, hitEnd int) {
	c := r.Hit.Coordinates
	return c.QueryStart, c.QueryEnd, c.HitStart, c.HitEnd
}

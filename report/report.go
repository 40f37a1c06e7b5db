package report

import (
	"time"

	"github.com/ejacobg/seqlinks/linkgen"
	"github.com/google/uuid"
)

// Report captures one sequence-search run together with the decorated hits
// it produced.
type Report struct {
	// A unique identifier for the report.
	ID uuid.UUID

	// The search program that produced the hits. (eg. "blastn")
	Program string

	// The alphabet of the searched database, either "nucleotide" or
	// "protein".
	DBType string

	// The name of the searched database.
	Database string

	// The identifier of the query sequence.
	QueryID string

	// The timestamp when the report was submitted.
	SubmittedAt time.Time

	// The aligned hits, in the order the search program reported them.
	Hits []Hit
}

// Hit is a single aligned result record from a sequence search.
type Hit struct {
	// The raw identifier line of the hit sequence.
	// (eg. "gi|195394571|ref|NM_001134939.1|")
	SeqID string

	// The descriptive title of the hit sequence.
	Title string

	// DisplayTitle holds the sanitized form of Title, safe for embedding
	// in rendered output. Populated by the decorator.
	DisplayTitle string

	PercentIdentity float64
	AlignLength     int
	Mismatches      int
	GapOpens        int
	EValue          float64
	BitScore        float64

	// The alignment extents on the query and hit sequences.
	Coordinates Coordinates

	// The outbound reference links for this hit, sorted by their order
	// hint. Populated by the decorator.
	Links []linkgen.Link
}

// Coordinates describes the start/end positions of an alignment on both the
// query and the hit sequence.
type Coordinates struct {
	QueryStart int
	QueryEnd   int
	HitStart   int
	HitEnd     int
}

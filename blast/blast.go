// Package blast parses the tabular output of the NCBI BLAST+ tools into
// report hits. It understands the default 12-column format produced by
// -outfmt 6 as well as the 13-column variant that appends the subject
// title (-outfmt "6 std stitle").
package blast

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ejacobg/seqlinks/report"
)

const (
	numStdColumns   = 12
	numTitleColumns = 13
)

// Result holds the hits parsed from one tabular BLAST run.
type Result struct {
	// The identifier of the query sequence, taken from the first data
	// row.
	QueryID string

	// The parsed hits, in file order.
	Hits []report.Hit
}

// ParseTabular reads tabular BLAST output from r and returns the parsed
// result. Comment lines (as emitted by -outfmt 7) and blank lines are
// skipped.
func ParseTabular(r io.Reader) (*Result, error) {
	var (
		res     Result
		scanner = bufio.NewScanner(r)
		lineNum int
	)
	// Deflines can get long; raise the scanner limit well beyond the
	// default 64K.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		hit, queryID, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("blast: line %d: %w", lineNum, err)
		}

		if res.QueryID == "" {
			res.QueryID = queryID
		}
		res.Hits = append(res.Hits, *hit)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("blast: %w", err)
	}

	return &res, nil
}

// parseRow splits one tabular row into a hit and the query identifier.
func parseRow(line string) (*report.Hit, string, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != numStdColumns && len(fields) != numTitleColumns {
		return nil, "", fmt.Errorf("expected %d or %d columns, got %d", numStdColumns, numTitleColumns, len(fields))
	}

	hit := &report.Hit{SeqID: fields[1]}
	if len(fields) == numTitleColumns {
		hit.Title = fields[12]
	}

	var err error
	if hit.PercentIdentity, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return nil, "", fmt.Errorf("bad percent identity %q: %w", fields[2], err)
	}
	if hit.AlignLength, err = strconv.Atoi(fields[3]); err != nil {
		return nil, "", fmt.Errorf("bad alignment length %q: %w", fields[3], err)
	}
	if hit.Mismatches, err = strconv.Atoi(fields[4]); err != nil {
		return nil, "", fmt.Errorf("bad mismatch count %q: %w", fields[4], err)
	}
	if hit.GapOpens, err = strconv.Atoi(fields[5]); err != nil {
		return nil, "", fmt.Errorf("bad gap open count %q: %w", fields[5], err)
	}
	if hit.Coordinates.QueryStart, err = strconv.Atoi(fields[6]); err != nil {
		return nil, "", fmt.Errorf("bad query start %q: %w", fields[6], err)
	}
	if hit.Coordinates.QueryEnd, err = strconv.Atoi(fields[7]); err != nil {
		return nil, "", fmt.Errorf("bad query end %q: %w", fields[7], err)
	}
	if hit.Coordinates.HitStart, err = strconv.Atoi(fields[8]); err != nil {
		return nil, "", fmt.Errorf("bad subject start %q: %w", fields[8], err)
	}
	if hit.Coordinates.HitEnd, err = strconv.Atoi(fields[9]); err != nil {
		return nil, "", fmt.Errorf("bad subject end %q: %w", fields[9], err)
	}
	if hit.EValue, err = strconv.ParseFloat(fields[10], 64); err != nil {
		return nil, "", fmt.Errorf("bad e-value %q: %w", fields[10], err)
	}
	if hit.BitScore, err = strconv.ParseFloat(fields[11], 64); err != nil {
		return nil, "", fmt.Errorf("bad bit score %q: %w", fields[11], err)
	}

	return hit, fields[0], nil
}

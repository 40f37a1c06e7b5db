package psql

import (
	"database/sql"
	"encoding/json"

	"github.com/ejacobg/seqlinks/report"
	"golang.org/x/xerrors"
)

// reportIterator is a report.Iterator implementation for the psql store.
type reportIterator struct {
	rows          *sql.Rows
	lastErr       error
	latchedReport *report.Report
}

// Next implements report.Iterator.
func (i *reportIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	r := new(report.Report)
	var hits []byte
	i.lastErr = i.rows.Scan(&r.ID, &r.Program, &r.DBType, &r.Database, &r.QueryID, &r.SubmittedAt, &hits)
	if i.lastErr != nil {
		return false
	}
	if i.lastErr = json.Unmarshal(hits, &r.Hits); i.lastErr != nil {
		return false
	}
	r.SubmittedAt = r.SubmittedAt.UTC()

	i.latchedReport = r
	return true
}

// Error implements report.Iterator.
func (i *reportIterator) Error() error {
	return i.lastErr
}

// Close implements report.Iterator.
func (i *reportIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return xerrors.Errorf("report iterator: %w", err)
	}
	return nil
}

// Report implements report.Iterator.
func (i *reportIterator) Report() *report.Report {
	return i.latchedReport
}

// Package psql provides a report store implementation backed by PostgreSQL.
package psql

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ejacobg/seqlinks/report"
	"github.com/google/uuid"
	// Register the postgres driver with database/sql.
	_ "github.com/lib/pq"
	"golang.org/x/xerrors"
)

// Compile-time check for ensuring Store implements report.Store.
var _ report.Store = (*Store)(nil)

// The hits column stores the full hit list (links included) as a JSON
// document; hits are only ever read back as part of their report.
var schema = `
CREATE TABLE IF NOT EXISTS reports (
	id UUID PRIMARY KEY,
	program TEXT NOT NULL,
	db_type TEXT NOT NULL,
	database_name TEXT NOT NULL,
	query_id TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	hits JSONB NOT NULL
)`

var upsertReportQuery = `
INSERT INTO reports (id, program, db_type, database_name, query_id, submitted_at, hits)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET program=$2, db_type=$3, database_name=$4, query_id=$5, submitted_at=$6, hits=$7`

const findReportQuery = "SELECT program, db_type, database_name, query_id, submitted_at, hits FROM reports WHERE id=$1"

const reportsInPartitionQuery = "SELECT id, program, db_type, database_name, query_id, submitted_at, hits FROM reports WHERE id >= $1 AND id < $2 AND submitted_at < $3"

const deleteReportQuery = "DELETE FROM reports WHERE id=$1"

// Store implements a report store that persists reports to a PostgreSQL
// instance.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store instance that connects to the PostgreSQL
// instance specified by dsn and ensures the required schema is in place.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, xerrors.Errorf("open report store: %w", err)
	}

	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, xerrors.Errorf("apply report store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close terminates the connection to the backing PostgreSQL instance.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertReport creates a new report or updates an existing report.
func (s *Store) UpsertReport(r *report.Report) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	hits, err := json.Marshal(r.Hits)
	if err != nil {
		return xerrors.Errorf("upsert report: %w", err)
	}

	_, err = s.db.Exec(upsertReportQuery, r.ID, r.Program, r.DBType, r.Database, r.QueryID, r.SubmittedAt.UTC(), hits)
	if err != nil {
		return xerrors.Errorf("upsert report: %w", err)
	}
	return nil
}

// FindReport looks up a report by its ID.
func (s *Store) FindReport(id uuid.UUID) (*report.Report, error) {
	row := s.db.QueryRow(findReportQuery, id)

	r := &report.Report{ID: id}
	var hits []byte
	err := row.Scan(&r.Program, &r.DBType, &r.Database, &r.QueryID, &r.SubmittedAt, &hits)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.Errorf("find report: %w", report.ErrNotFound)
		}
		return nil, xerrors.Errorf("find report: %w", err)
	}

	if err = json.Unmarshal(hits, &r.Hits); err != nil {
		return nil, xerrors.Errorf("find report: %w", err)
	}

	r.SubmittedAt = r.SubmittedAt.UTC()
	return r, nil
}

// Reports returns an iterator for the set of reports whose IDs belong to
// the [fromID, toID) range and were submitted before the provided
// timestamp.
func (s *Store) Reports(fromID, toID uuid.UUID, submittedBefore time.Time) (report.Iterator, error) {
	rows, err := s.db.Query(reportsInPartitionQuery, fromID, toID, submittedBefore.UTC())
	if err != nil {
		return nil, xerrors.Errorf("reports: %w", err)
	}
	return &reportIterator{rows: rows}, nil
}

// DeleteReport removes the report with the specified ID.
func (s *Store) DeleteReport(id uuid.UUID) error {
	res, err := s.db.Exec(deleteReportQuery, id)
	if err != nil {
		return xerrors.Errorf("delete report: %w", err)
	}

	if deleted, _ := res.RowsAffected(); deleted == 0 {
		return xerrors.Errorf("delete report: %w", report.ErrNotFound)
	}
	return nil
}

// Package frontend implements the JSON API that clients use to submit
// sequence-search reports and to query the decorated results.
package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/ejacobg/seqlinks/blast"
	"github.com/ejacobg/seqlinks/index"
	"github.com/ejacobg/seqlinks/report"
)

const (
	submitReportEndpoint = "/reports"
	getReportEndpoint    = "/reports/{id}"
	searchHitsEndpoint   = "/hits/search"
	healthEndpoint       = "/healthz"

	defaultResultsPerPage = 10

	defaultMaxReportBodyBytes = 32 << 20
)

// ReportStoreAPI defines the report store methods used by the front-end.
type ReportStoreAPI interface {
	UpsertReport(r *report.Report) error
	FindReport(id uuid.UUID) (*report.Report, error)
}

// HitIndexAPI defines the hit index methods used by the front-end.
type HitIndexAPI interface {
	Search(query index.Query) (index.Iterator, error)
}

// DecorateAPI defines the decorator methods used by the front-end.
type DecorateAPI interface {
	Decorate(ctx context.Context, r *report.Report) error
}

// Config encapsulates the settings for configuring the front-end
// service.
type Config struct {
	// An API for managing stored reports.
	StoreAPI ReportStoreAPI

	// An API for searching indexed hits.
	IndexAPI HitIndexAPI

	// An API for decorating freshly submitted reports.
	DecorateAPI DecorateAPI

	// The port to listen for incoming requests.
	ListenAddr string

	// The number of hits to display per search result page. If not
	// specified, a default value of 10 will be used instead.
	ResultsPerPage int

	// The maximum accepted size in bytes for an uploaded tabular result
	// set. If not specified, a default value of 32 MiB will be used
	// instead.
	MaxReportBodyBytes int64

	// The logger to use. If not defined an output-discarding logger
	// will be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.ListenAddr == "" {
		err = multierror.Append(err, fmt.Errorf("listen address has not been specified"))
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = defaultResultsPerPage
	}
	if cfg.MaxReportBodyBytes <= 0 {
		cfg.MaxReportBodyBytes = defaultMaxReportBodyBytes
	}
	if cfg.StoreAPI == nil {
		err = multierror.Append(err, fmt.Errorf("report store API has not been provided"))
	}
	if cfg.IndexAPI == nil {
		err = multierror.Append(err, fmt.Errorf("hit index API has not been provided"))
	}
	if cfg.DecorateAPI == nil {
		err = multierror.Append(err, fmt.Errorf("decorate API has not been provided"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}
	return err
}

// Service implements the front-end component for the seqlinks monolith.
type Service struct {
	cfg    Config
	router *mux.Router
}

// NewService creates a new front-end service instance with the
// specified options.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("front-end service: config validation failed: %w", err)
	}

	svc := &Service{
		router: mux.NewRouter(),
		cfg:    cfg,
	}

	svc.router.HandleFunc(submitReportEndpoint, svc.submitReport).Methods("POST")
	svc.router.HandleFunc(getReportEndpoint, svc.getReport).Methods("GET")
	svc.router.HandleFunc(searchHitsEndpoint, svc.searchHits).Methods("GET")
	svc.router.HandleFunc(healthEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	return svc, nil
}

// Name implements service.Service.
func (svc *Service) Name() string { return "front-end" }

// Run implements service.Service.
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.WithField("addr", svc.cfg.ListenAddr).Info("starting front-end server")

	l, err := net.Listen("tcp", svc.cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Addr:    svc.cfg.ListenAddr,
		Handler: svc.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err = srv.Serve(l); err == http.ErrServerClosed {
		// Expected when the server shuts down gracefully.
		err = nil
	}
	return err
}

// submitReport parses an uploaded tabular result set, decorates the
// hits and persists the resulting report.
func (svc *Service) submitReport(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	program, dbType, database := params.Get("program"), params.Get("dbtype"), params.Get("database")
	if program == "" || dbType == "" || database == "" {
		http.Error(w, "program, dbtype and database query parameters are required", http.StatusBadRequest)
		return
	}
	// The dbtype is interpolated verbatim into NCBI link URLs; only the
	// two supported alphabets may pass through.
	if dbType != "nucleotide" && dbType != "protein" {
		http.Error(w, `dbtype must be either "nucleotide" or "protein"`, http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, svc.cfg.MaxReportBodyBytes)
	parsed, err := blast.ParseTabular(body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if xerrors.As(err, &maxBytesErr) {
			http.Error(w, "report body exceeds the maximum allowed size", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	queryID := params.Get("query")
	if queryID == "" {
		queryID = parsed.QueryID
	}

	rep := &report.Report{
		ID:          uuid.New(),
		Program:     program,
		DBType:      dbType,
		Database:    database,
		QueryID:     queryID,
		SubmittedAt: time.Now().UTC().Truncate(time.Millisecond),
		Hits:        parsed.Hits,
	}

	if err = svc.cfg.DecorateAPI.Decorate(r.Context(), rep); err != nil {
		svc.cfg.Logger.WithField("err", err).Error("unable to decorate report")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err = svc.cfg.StoreAPI.UpsertReport(rep); err != nil {
		svc.cfg.Logger.WithField("err", err).Error("unable to persist report")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	svc.cfg.Logger.WithFields(logrus.Fields{
		"report_id": rep.ID.String(),
		"num_hits":  len(rep.Hits),
	}).Info("accepted report")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rep)
}

// getReport serves a stored report, including the outbound links that
// were generated for each hit.
func (svc *Service) getReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report ID", http.StatusBadRequest)
		return
	}

	rep, err := svc.cfg.StoreAPI.FindReport(id)
	if err != nil {
		if xerrors.Is(err, report.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		svc.cfg.Logger.WithField("err", err).Error("unable to look up report")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rep)
}

// searchResult is the JSON representation of a single matched hit.
type searchResult struct {
	HitID    string  `json:"hit_id"`
	ReportID string  `json:"report_id"`
	SeqID    string  `json:"seq_id"`
	Title    string  `json:"title,omitempty"`
	BitScore float64 `json:"bit_score"`
}

// searchResponse is the JSON envelope for a search result page.
type searchResponse struct {
	Page       int            `json:"page"`
	TotalCount uint64         `json:"total_count"`
	Results    []searchResult `json:"results"`
}

// searchHits runs a paginated query against the hit index.
func (svc *Service) searchHits(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	expr := params.Get("q")
	if expr == "" {
		http.Error(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	query := index.Query{Type: index.QueryTypeMatch, Expression: expr}
	if params.Get("type") == "phrase" {
		query.Type = index.QueryTypePhrase
	}

	page := 0
	if rawPage := params.Get("page"); rawPage != "" {
		if page, _ = strconv.Atoi(rawPage); page < 0 {
			page = 0
		}
	}
	query.Offset = uint64(page * svc.cfg.ResultsPerPage)

	it, err := svc.cfg.IndexAPI.Search(query)
	if err != nil {
		svc.cfg.Logger.WithField("err", err).Error("hit search failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() { _ = it.Close() }()

	res := searchResponse{
		Page:       page,
		TotalCount: it.TotalCount(),
		Results:    make([]searchResult, 0, svc.cfg.ResultsPerPage),
	}
	for len(res.Results) < svc.cfg.ResultsPerPage && it.Next() {
		doc := it.Document()
		res.Results = append(res.Results, searchResult{
			HitID:    doc.HitID.String(),
			ReportID: doc.ReportID.String(),
			SeqID:    doc.SeqID,
			Title:    doc.Title,
			BitScore: doc.BitScore,
		})
	}
	if err = it.Error(); err != nil {
		svc.cfg.Logger.WithField("err", err).Error("hit search failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

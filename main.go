package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ejacobg/seqlinks/bleve"
	"github.com/ejacobg/seqlinks/decorator"
	"github.com/ejacobg/seqlinks/elasticsearch"
	"github.com/ejacobg/seqlinks/frontend"
	"github.com/ejacobg/seqlinks/index"
	"github.com/ejacobg/seqlinks/inmem"
	"github.com/ejacobg/seqlinks/janitor"
	"github.com/ejacobg/seqlinks/partition"
	"github.com/ejacobg/seqlinks/psql"
	"github.com/ejacobg/seqlinks/report"
	"github.com/ejacobg/seqlinks/service"
)

var (
	appName = "seqlinks-monolith"
	appSha  = "populated-at-link-time"
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := runMain(logger); err != nil {
		logrus.WithField("err", err).Error("shutting down due to error")
		return
	}
	logger.Info("shutdown complete")
}

func runMain(logger *logrus.Entry) error {
	svcGroup, err := setupServices(logger)
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			logger.WithField("signal", s.String()).Infof("shutting down due to signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return svcGroup.Run(ctx)
}

func setupServices(logger *logrus.Entry) (service.Group, error) {
	var (
		frontendCfg  frontend.Config
		decoratorCfg decorator.Config
		janitorCfg   janitor.Config
	)

	flag.StringVar(&frontendCfg.ListenAddr, "frontend-listen-addr", ":8080", "The address to listen for incoming front-end requests")
	flag.IntVar(&frontendCfg.ResultsPerPage, "frontend-results-per-page", 10, "The number of entries for each hit search result page")

	flag.IntVar(&decoratorCfg.DecorateWorkers, "decorator-num-workers", runtime.NumCPU(), "The number of workers to use for decorating report hits (defaults to number of CPUs)")

	flag.DurationVar(&janitorCfg.SweepInterval, "janitor-sweep-interval", time.Hour, "The time between subsequent report store sweeps")
	flag.DurationVar(&janitorCfg.RetentionPeriod, "janitor-retention-period", 7*24*time.Hour, "The amount of time that a submitted report is retained")

	reportStoreURI := flag.String("report-store-uri", "in-memory://", "The URI for connecting to the report store (supported URIs: in-memory://, postgresql://user@host:5432/seqlinks?sslmode=disable)")
	hitIndexerURI := flag.String("hit-indexer-uri", "in-memory://", "The URI for connecting to the hit indexer (supported URIs: in-memory://, es://node1:9200,...,nodeN:9200)")

	partitionDetMode := flag.String("partition-detection-mode", "single", "The partition detection mode to use. Supported values are 'dns=HEADLESS_SERVICE_NAME' (k8s) and 'single' (local dev mode)")
	flag.Parse()

	// Retrieve a suitable report store and hit indexer implementation and
	// plug it into the service configurations.
	reportStore, err := getReportStore(*reportStoreURI, logger)
	if err != nil {
		return nil, err
	}
	hitIndexer, err := getHitIndexer(*hitIndexerURI, logger)
	if err != nil {
		return nil, err
	}

	// Create a helper for detecting the partition assigned to this instance.
	partDet, err := getPartitionDetector(*partitionDetMode)
	if err != nil {
		return nil, err
	}

	decoratorCfg.IndexAPI = hitIndexer
	decoratorCfg.Logger = logger.WithField("component", "decorator")
	dec, err := decorator.NewDecorator(decoratorCfg)
	if err != nil {
		return nil, err
	}

	var svc service.Service
	var svcGroup service.Group

	frontendCfg.StoreAPI = reportStore
	frontendCfg.IndexAPI = hitIndexer
	frontendCfg.DecorateAPI = dec
	frontendCfg.Logger = logger.WithField("service", "front-end")
	if svc, err = frontend.NewService(frontendCfg); err == nil {
		svcGroup = append(svcGroup, svc)
	} else {
		return nil, err
	}

	janitorCfg.StoreAPI = reportStore
	janitorCfg.PartitionDetector = partDet
	janitorCfg.Logger = logger.WithField("service", "janitor")
	if svc, err = janitor.NewService(janitorCfg); err == nil {
		svcGroup = append(svcGroup, svc)
	} else {
		return nil, err
	}

	return svcGroup, nil
}

type reportStore interface {
	UpsertReport(r *report.Report) error
	FindReport(id uuid.UUID) (*report.Report, error)
	Reports(fromID, toID uuid.UUID, submittedBefore time.Time) (report.Iterator, error)
	DeleteReport(id uuid.UUID) error
}

func getReportStore(reportStoreURI string, logger *logrus.Entry) (reportStore, error) {
	if reportStoreURI == "" {
		return nil, fmt.Errorf("report store URI must be specified with --report-store-uri")
	}

	uri, err := url.Parse(reportStoreURI)
	if err != nil {
		return nil, fmt.Errorf("could not parse report store URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory report store")
		return inmem.NewInMemoryStore(), nil
	case "postgresql":
		logger.Info("using PostgreSQL report store")
		return psql.NewStore(reportStoreURI)
	default:
		return nil, fmt.Errorf("unsupported report store URI scheme: %q", uri.Scheme)
	}
}

type hitIndexer interface {
	Index(doc *index.Document) error
	FindByID(hitID uuid.UUID) (*index.Document, error)
	Search(query index.Query) (index.Iterator, error)
}

func getHitIndexer(hitIndexerURI string, logger *logrus.Entry) (hitIndexer, error) {
	if hitIndexerURI == "" {
		return nil, fmt.Errorf("hit indexer URI must be specified with --hit-indexer-uri")
	}

	uri, err := url.Parse(hitIndexerURI)
	if err != nil {
		return nil, fmt.Errorf("could not parse hit indexer URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory hit indexer")
		return bleve.NewIndexer()
	case "es":
		nodes := strings.Split(uri.Host, ",")
		for i := 0; i < len(nodes); i++ {
			nodes[i] = "http://" + nodes[i]
		}
		logger.Info("using ES hit indexer")
		return elasticsearch.NewIndexer(nodes, false)
	default:
		return nil, fmt.Errorf("unsupported hit indexer URI scheme: %q", uri.Scheme)
	}
}

func getPartitionDetector(mode string) (partition.Detector, error) {
	switch {
	case mode == "single":
		return partition.Fixed{Partition: 0, NumPartitions: 1}, nil
	case strings.HasPrefix(mode, "dns="):
		tokens := strings.Split(mode, "=")
		return partition.DetectFromSRVRecords(tokens[1]), nil
	default:
		return nil, fmt.Errorf("unsupported partition detection mode: %q", mode)
	}
}

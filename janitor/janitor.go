// Package janitor implements the background service that expires old
// reports from the report store.
package janitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/ejacobg/seqlinks/partition"
	"github.com/ejacobg/seqlinks/report"
)

// ReportStoreAPI defines the report store methods used by the janitor.
type ReportStoreAPI interface {
	Reports(fromID, toID uuid.UUID, submittedBefore time.Time) (report.Iterator, error)
	DeleteReport(id uuid.UUID) error
}

// Config encapsulates the settings for configuring the janitor service.
type Config struct {
	// An API for iterating and deleting stored reports.
	StoreAPI ReportStoreAPI

	// An API for detecting the partition assignments for this service.
	PartitionDetector partition.Detector

	// A clock instance for generating time-related events. If not
	// specified, the default wall-clock will be used instead.
	Clock clock.Clock

	// The time between subsequent sweeps of the report store.
	SweepInterval time.Duration

	// The amount of time that a report is retained after submission.
	RetentionPeriod time.Duration

	// The logger to use. If not defined an output-discarding logger
	// will be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.StoreAPI == nil {
		err = multierror.Append(err, fmt.Errorf("report store API has not been provided"))
	}
	if cfg.PartitionDetector == nil {
		err = multierror.Append(err, fmt.Errorf("partition detector has not been provided"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.SweepInterval == 0 {
		err = multierror.Append(err, fmt.Errorf("sweep interval has not been specified"))
	}
	if cfg.RetentionPeriod == 0 {
		err = multierror.Append(err, fmt.Errorf("retention period has not been specified"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}
	return err
}

// Service implements the report-expiring janitor for the seqlinks
// monolith.
type Service struct {
	cfg Config
}

// NewService creates a new janitor service instance with the specified
// options.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("janitor service: config validation failed: %w", err)
	}
	return &Service{cfg: cfg}, nil
}

// Name implements service.Service.
func (svc *Service) Name() string { return "janitor" }

// Run implements service.Service.
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.WithFields(logrus.Fields{
		"sweep_interval":   svc.cfg.SweepInterval.String(),
		"retention_period": svc.cfg.RetentionPeriod.String(),
	}).Info("starting janitor")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.cfg.Clock.After(svc.cfg.SweepInterval):
			curPartition, numPartitions, err := svc.cfg.PartitionDetector.PartitionInfo(ctx)
			if err != nil {
				if xerrors.Is(err, partition.ErrNoPartitionDataAvailableYet) {
					svc.cfg.Logger.Warn("deferring sweep; partition data not yet available")
					continue
				}
				return err
			}

			if err := svc.sweep(ctx, curPartition, numPartitions); err != nil {
				return err
			}
		}
	}
}

// sweep deletes all reports in the assigned partition that were
// submitted before the retention cutoff.
func (svc *Service) sweep(ctx context.Context, curPartition, numPartitions int) error {
	fullRange, err := partition.NewFullRange(numPartitions)
	if err != nil {
		return fmt.Errorf("janitor: unable to compute partition range: %w", err)
	}
	fromID, toID, err := fullRange.PartitionExtents(curPartition)
	if err != nil {
		return fmt.Errorf("janitor: unable to compute partition extents: %w", err)
	}

	cutoff := svc.cfg.Clock.Now().Add(-svc.cfg.RetentionPeriod)
	it, err := svc.cfg.StoreAPI.Reports(fromID, toID, cutoff)
	if err != nil {
		return fmt.Errorf("janitor: report iteration failed: %w", err)
	}

	// Collect the expired IDs first so that backends which stream rows
	// do not observe deletes mid-iteration.
	var expiredIDs []uuid.UUID
	for it.Next() {
		if ctx.Err() != nil {
			_ = it.Close()
			return nil
		}
		expiredIDs = append(expiredIDs, it.Report().ID)
	}
	if err = it.Error(); err != nil {
		_ = it.Close()
		return fmt.Errorf("janitor: report iteration failed: %w", err)
	}
	if err = it.Close(); err != nil {
		return fmt.Errorf("janitor: report iteration failed: %w", err)
	}

	for _, id := range expiredIDs {
		if err = svc.cfg.StoreAPI.DeleteReport(id); err != nil && !xerrors.Is(err, report.ErrNotFound) {
			return fmt.Errorf("janitor: unable to delete report %s: %w", id, err)
		}
	}

	svc.cfg.Logger.WithFields(logrus.Fields{
		"deleted_reports": len(expiredIDs),
		"cutoff":          cutoff.UTC().Format(time.RFC3339),
	}).Info("completed sweep")
	return nil
}

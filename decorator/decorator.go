// Package decorator attaches outbound reference links to the hits of a
// search report and feeds the decorated hits into the hit index.
package decorator

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/ejacobg/seqlinks/index"
	"github.com/ejacobg/seqlinks/linkgen"
	"github.com/ejacobg/seqlinks/pipeline"
	"github.com/ejacobg/seqlinks/report"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Config encapsulates the settings for creating a new Decorator.
type Config struct {
	// An API for indexing decorated hits.
	IndexAPI index.Indexer

	// The set of link generators to apply to each hit. If not specified,
	// the full built-in generator set is used.
	Generators []linkgen.Generator

	// The number of concurrent workers used for generating links. If not
	// specified, the number of available CPUs is used instead.
	DecorateWorkers int

	// The logger to use. If not defined, an output-discarding logger is
	// used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.IndexAPI == nil {
		err = multierror.Append(err, fmt.Errorf("index API has not been provided"))
	}
	if cfg.Generators == nil {
		cfg.Generators = linkgen.Generators()
	}
	if cfg.DecorateWorkers <= 0 {
		cfg.DecorateWorkers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}
	return err
}

// Decorator runs the hits of search reports through a multi-stage pipeline
// that generates outbound links, sanitizes hit titles and indexes the
// results.
type Decorator struct {
	cfg Config
	p   *pipeline.Pipeline
}

// NewDecorator returns a new Decorator instance using the provided config.
func NewDecorator(cfg Config) (*Decorator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("decorator: config validation failed: %w", err)
	}

	return &Decorator{
		cfg: cfg,
		p: pipeline.New(
			pipeline.FixedWorkerPool(newLinkDecorator(cfg.Generators), cfg.DecorateWorkers),
			pipeline.FIFO(newTitleSanitizer()),
			pipeline.FIFO(newHitIndexer(cfg.IndexAPI)),
		),
	}, nil
}

// Decorate sends every hit of the report through the decoration pipeline
// and writes the produced links and sanitized titles back onto the report's
// hits. The report must have been assigned an ID before decoration so that
// the indexed hit documents can point back to it.
func (d *Decorator) Decorate(ctx context.Context, r *report.Report) error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("decorate: report has not been assigned an ID")
	}

	src := &hitSource{r: r}
	sink := &reportUpdater{r: r}
	if err := d.p.Process(ctx, src, sink); err != nil {
		return fmt.Errorf("decorate: %w", err)
	}

	d.cfg.Logger.WithFields(logrus.Fields{
		"report_id": r.ID.String(),
		"num_hits":  len(r.Hits),
	}).Info("decorated report")
	return nil
}

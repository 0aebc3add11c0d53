package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/lotrecon/pkg/application/dto"
	"github.com/vsinha/lotrecon/pkg/application/services/consolidation"
	"github.com/vsinha/lotrecon/pkg/application/services/reporting"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
	"github.com/vsinha/lotrecon/pkg/infrastructure/events"
	"github.com/vsinha/lotrecon/pkg/infrastructure/logging"
)

// ResultCache serves previously built results for identical source rows
type ResultCache interface {
	GetOrCompute(
		ctx context.Context,
		fingerprint string,
		compute func() (*dto.ConsolidationResult, error),
	) (*dto.ConsolidationResult, bool, error)
}

// RunObserver receives run outcomes, typically for metrics
type RunObserver interface {
	ObserveRun(result *dto.ConsolidationResult, duration time.Duration)
	ObserveCache(hit bool)
}

// Option configures a ReportOrchestrator
type Option func(*ReportOrchestrator)

func WithCache(cache ResultCache) Option {
	return func(o *ReportOrchestrator) { o.cache = cache }
}

// WithReportRepository persists records and flags after each run
func WithReportRepository(repo repositories.ReportRepository) Option {
	return func(o *ReportOrchestrator) { o.reports = repo }
}

// WithEventStore records lot events after each run and flushes subscribers
func WithEventStore(store events.EventStore) Option {
	return func(o *ReportOrchestrator) { o.events = store }
}

func WithObserver(observer RunObserver) Option {
	return func(o *ReportOrchestrator) { o.observer = observer }
}

// WithClock overrides the time source used for GeneratedAt and durations
func WithClock(now func() time.Time) Option {
	return func(o *ReportOrchestrator) { o.now = now }
}

// ReportOrchestrator loads the three sources, runs consolidation and
// reporting, and hands the result to the configured sinks
type ReportOrchestrator struct {
	source   repositories.SourceRepository
	cache    ResultCache
	reports  repositories.ReportRepository
	events   events.EventStore
	observer RunObserver
	now      func() time.Time
	logger   *slog.Logger
}

// NewReportOrchestrator creates a new report orchestrator
func NewReportOrchestrator(source repositories.SourceRepository, opts ...Option) *ReportOrchestrator {
	o := &ReportOrchestrator{
		source: source,
		now:    time.Now,
		logger: logging.WithComponent("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LoadSources reads the three sources concurrently
func (o *ReportOrchestrator) LoadSources(ctx context.Context) (dto.SourceRows, error) {
	var rows dto.SourceRows
	g, gCtx := errgroup.WithContext(ctx)

	load := func(source repositories.Source, dst *[]entities.Row) {
		g.Go(func() error {
			loaded, err := o.source.GetRows(gCtx, source)
			if err != nil {
				return fmt.Errorf("failed to load %s rows: %w", source, err)
			}
			*dst = loaded
			o.logger.Debug("source loaded", "source", source, "rows", len(loaded))
			return nil
		})
	}
	load(repositories.SourceProduction, &rows.Production)
	load(repositories.SourceQuality, &rows.Quality)
	load(repositories.SourceShipping, &rows.Shipping)

	if err := g.Wait(); err != nil {
		return dto.SourceRows{}, err
	}
	return rows, nil
}

// BuildResult consolidates the rows and derives the report views
func BuildResult(rows dto.SourceRows, fingerprint string, generatedAt time.Time) *dto.ConsolidationResult {
	consolidated := consolidation.Consolidate(rows.Production, rows.Quality, rows.Shipping)
	return &dto.ConsolidationResult{
		Records:             consolidated.Records,
		Flags:               consolidated.Flags,
		Summary:             reporting.Summarize(consolidated.Records),
		HighSeverityShipped: reporting.HighSeverityShipped(consolidated.Records),
		Stats:               consolidated.Stats,
		Fingerprint:         fingerprint,
		GeneratedAt:         generatedAt,
	}
}

// Run performs one complete consolidation run
func (o *ReportOrchestrator) Run(ctx context.Context) (*dto.ConsolidationResult, error) {
	start := o.now()

	rows, err := o.LoadSources(ctx)
	if err != nil {
		return nil, err
	}

	fingerprint, err := rows.Fingerprint()
	if err != nil {
		return nil, err
	}

	compute := func() (*dto.ConsolidationResult, error) {
		return BuildResult(rows, fingerprint, o.now()), nil
	}

	var result *dto.ConsolidationResult
	if o.cache != nil {
		var hit bool
		result, hit, err = o.cache.GetOrCompute(ctx, fingerprint, compute)
		if err != nil {
			return nil, fmt.Errorf("failed to build report: %w", err)
		}
		if o.observer != nil {
			o.observer.ObserveCache(hit)
		}
		o.logger.Debug("report cache lookup", "fingerprint", fingerprint, "hit", hit)
	} else {
		result, _ = compute()
	}

	if err := o.publish(ctx, result); err != nil {
		return nil, err
	}

	if o.observer != nil {
		o.observer.ObserveRun(result, o.now().Sub(start))
	}
	o.logger.Info("consolidation complete",
		"records", len(result.Records),
		"flags", len(result.Flags),
		"fingerprint", fingerprint,
	)
	return result, nil
}

func (o *ReportOrchestrator) publish(ctx context.Context, result *dto.ConsolidationResult) error {
	if o.reports != nil {
		if err := o.reports.SaveRecords(ctx, result.Records); err != nil {
			return fmt.Errorf("failed to persist records: %w", err)
		}
		if err := o.reports.ReplaceFlags(ctx, result.Flags); err != nil {
			return fmt.Errorf("failed to persist flags: %w", err)
		}
	}

	if o.events != nil {
		if err := events.RecordResult(ctx, o.events, result); err != nil {
			return err
		}
		if err := o.events.Flush(ctx); err != nil {
			return fmt.Errorf("failed to flush event subscribers: %w", err)
		}
	}
	return nil
}

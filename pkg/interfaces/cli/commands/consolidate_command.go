package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vsinha/lotrecon/pkg/application/services/orchestration"
	"github.com/vsinha/lotrecon/pkg/application/services/reporting"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
	"github.com/vsinha/lotrecon/pkg/infrastructure/cache"
	"github.com/vsinha/lotrecon/pkg/infrastructure/config"
	"github.com/vsinha/lotrecon/pkg/infrastructure/events"
	"github.com/vsinha/lotrecon/pkg/infrastructure/logging"
	"github.com/vsinha/lotrecon/pkg/infrastructure/messaging/kafka"
	"github.com/vsinha/lotrecon/pkg/infrastructure/metrics"
	"github.com/vsinha/lotrecon/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/lotrecon/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/lotrecon/pkg/interfaces/cli/output"
)

// Config holds the command-line settings of the consolidate command. Set
// fields override the configuration file.
type Config struct {
	ConfigFile     string
	Source         string
	ScenarioDir    string
	ProductionFile string
	QualityFile    string
	ShippingFile   string
	OutputDir      string
	Format         string
	Persist        bool
	Verbose        bool
	LogLevel       string
	MetricsFile    string

	// Record filters
	From              string
	To                string
	Lines             string
	Severities        string
	DefectTypes       string
	Shipped           string
	ExcludeIncomplete bool

	Help bool

	// Stdout receives report output; nil means os.Stdout
	Stdout io.Writer

	// Stderr receives verbose progress for json and csv output; nil means os.Stderr
	Stderr io.Writer
}

// ConsolidateCommand runs one consolidation and renders the report
type ConsolidateCommand struct {
	config Config
	stdout io.Writer
	stderr io.Writer
}

// NewConsolidateCommand creates a new consolidate command with the given configuration
func NewConsolidateCommand(config Config) *ConsolidateCommand {
	stdout := config.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := config.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	return &ConsolidateCommand{
		config: config,
		stdout: stdout,
		stderr: stderr,
	}
}

// Execute runs the consolidate command
func (c *ConsolidateCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.WithComponent("consolidate")
	progress := c.progressWriter(cfg.Output.Format)

	criteria, err := c.parseCriteria()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	var pg *postgres.Client
	if cfg.Source.Kind == config.SourcePostgres || cfg.Postgres.Persist {
		pg, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pg.Close()
	}

	var source repositories.SourceRepository
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		source = postgres.NewSourceRepository(pg)
	default:
		production, quality, shipping := cfg.Source.Files()
		if c.config.Verbose {
			c.printHeader(progress, production, quality, shipping, cfg)
		}
		source = csv.NewSourceRepository(production, quality, shipping)
	}

	m := metrics.New()
	opts := []orchestration.Option{orchestration.WithObserver(m)}

	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		opts = append(opts, orchestration.WithCache(cache.NewReportCache(client, cfg.Redis.ReportTTL)))
	}

	if cfg.Postgres.Persist {
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		opts = append(opts, orchestration.WithReportRepository(postgres.NewReportRepository(pg)))
	}

	if cfg.Kafka.Enabled {
		store := events.NewInMemoryEventStore()
		publisher := kafka.NewFlagPublisher(cfg.Kafka)
		defer publisher.Close()
		detach, err := attachHandler(store, publisher, events.LotFlaggedEvent)
		if err != nil {
			return fmt.Errorf("failed to subscribe flag publisher: %w", err)
		}
		defer detach()
		opts = append(opts, orchestration.WithEventStore(store))
	}

	orchestrator := orchestration.NewReportOrchestrator(source, opts...)

	if c.config.Verbose {
		fmt.Fprintln(progress, "🔄 Running consolidation...")
	}

	startTime := time.Now()
	result, err := orchestrator.Run(ctx)
	elapsed := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error running consolidation: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(progress, "✅ Consolidation completed in %v\n\n", elapsed)
	}

	outputConfig := output.Config{
		Format:    cfg.Output.Format,
		OutputDir: cfg.Output.Dir,
		Verbose:   c.config.Verbose,
		Elapsed:   elapsed,
		Stdout:    c.stdout,
	}
	if err := output.Generate(result.Filtered(criteria), outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if cfg.Metrics.TextfilePath != "" {
		if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Error("failed to write metrics", "path", cfg.Metrics.TextfilePath, "error", err)
		}
	}

	return nil
}

// loadConfig reads the configuration file and applies command-line overrides
func (c *ConsolidateCommand) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.config.Source != "" {
		cfg.Source.Kind = c.config.Source
	}
	if c.config.ScenarioDir != "" {
		cfg.Source.ScenarioDir = c.config.ScenarioDir
	}
	if c.config.ProductionFile != "" {
		cfg.Source.Production = c.config.ProductionFile
	}
	if c.config.QualityFile != "" {
		cfg.Source.Quality = c.config.QualityFile
	}
	if c.config.ShippingFile != "" {
		cfg.Source.Shipping = c.config.ShippingFile
	}
	if c.config.Format != "" {
		cfg.Output.Format = c.config.Format
	}
	if c.config.OutputDir != "" {
		cfg.Output.Dir = c.config.OutputDir
	}
	if c.config.Persist {
		cfg.Postgres.Persist = true
	}
	if c.config.MetricsFile != "" {
		cfg.Metrics.TextfilePath = c.config.MetricsFile
	}
	if c.config.LogLevel != "" {
		cfg.Logging.Level = c.config.LogLevel
	} else if c.config.Verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return cfg, nil
}

// parseCriteria builds record filters from the command-line settings
func (c *ConsolidateCommand) parseCriteria() (reporting.Criteria, error) {
	var criteria reporting.Criteria

	if c.config.From != "" || c.config.To != "" {
		if c.config.From == "" || c.config.To == "" {
			return criteria, fmt.Errorf("-from and -to must be given together")
		}
		from := entities.ParseDate(c.config.From)
		if from == nil {
			return criteria, fmt.Errorf("invalid -from date: %s (expected YYYY-MM-DD)", c.config.From)
		}
		to := entities.ParseDate(c.config.To)
		if to == nil {
			return criteria, fmt.Errorf("invalid -to date: %s (expected YYYY-MM-DD)", c.config.To)
		}
		criteria.From, criteria.To = from, to
	}

	criteria.Lines = splitList(c.config.Lines)
	criteria.Severities = splitList(c.config.Severities)
	criteria.DefectTypes = splitList(c.config.DefectTypes)
	criteria.ExcludeIncomplete = c.config.ExcludeIncomplete

	shipped, err := reporting.ParseShippedStatus(c.config.Shipped)
	if err != nil {
		return criteria, err
	}
	criteria.Shipped = shipped

	return criteria, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// printHeader prints the command header information
func (c *ConsolidateCommand) printHeader(w io.Writer, production, quality, shipping string, cfg *config.Config) {
	fmt.Fprintf(w, "🚀 Lot Consolidation CLI\n")
	fmt.Fprintf(w, "Input files:\n")
	fmt.Fprintf(w, "  Production: %s\n", production)
	fmt.Fprintf(w, "  Quality: %s\n", quality)
	fmt.Fprintf(w, "  Shipping: %s\n", shipping)
	fmt.Fprintf(w, "Output format: %s\n", cfg.Output.Format)
	if cfg.Output.Dir != "" {
		fmt.Fprintf(w, "Output directory: %s\n", cfg.Output.Dir)
	}
	fmt.Fprintln(w)
}

// progressWriter keeps stdout clean for machine-readable formats
func (c *ConsolidateCommand) progressWriter(format string) io.Writer {
	if format == config.FormatText {
		return c.stdout
	}
	return c.stderr
}

// attachHandler subscribes handler to the event types and returns a func
// that detaches it again, so nothing reaches a closed sink
func attachHandler(store events.EventStore, handler events.EventHandler, eventTypes ...string) (func(), error) {
	if err := store.Subscribe(eventTypes, handler); err != nil {
		return nil, err
	}
	return func() { _ = store.Unsubscribe(handler) }, nil
}

// showHelp displays the help message
func (c *ConsolidateCommand) showHelp() {
	fmt.Fprintf(c.stdout, `lotrecon - Lot consolidation across production, quality and shipping records

USAGE:
    lotrecon -scenario <directory>                        # Use scenario directory with CSV files
    lotrecon -production <file> -quality <file> ...       # Use individual CSV files
    lotrecon -source postgres -config lotrecon.yaml       # Read from the plant database
    lotrecon generate -help                               # Generate a synthetic scenario

OPTIONS:
    -config <file>        YAML configuration file (LOTRECON_* env vars override it)
    -source <kind>        Source kind: csv, postgres (default: csv)
    -scenario <dir>       Path to scenario directory containing CSV files
    -production <file>    Path to production log CSV file
    -quality <file>       Path to quality inspection CSV file
    -shipping <file>      Path to shipping manifest CSV file
    -output <dir>         Output directory for results (optional)
    -format <fmt>         Output format: text, json, csv (default: text)
    -persist              Write records and flags to the postgres report tables
    -metrics-file <file>  Write Prometheus metrics to a node-exporter textfile
    -log-level <level>    Log level: debug, info, warn, error
    -verbose              Enable verbose output
    -help                 Show this help message

FILTERS:
    -from <date> -to <date>   Production date range, inclusive (YYYY-MM-DD)
    -lines <list>             Comma-separated line numbers ("Unknown" matches missing lines)
    -severities <list>        Comma-separated defect severities
    -defect-types <list>      Comma-separated defect types
    -shipped <status>         all, shipped, not-shipped (default: all)
    -exclude-incomplete       Drop records without a production date

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── production.csv  # Production logs
    ├── quality.csv     # Quality inspections
    └── shipping.csv    # Shipping manifests

CSV FILE FORMATS (any accepted spelling of a column works):

production.csv:
    Lot_ID,Line_No,Production_Date,Shift_Leader
    LOT-100,1,2024-05-01,Alvarez

quality.csv:
    Lot_ID,Defect_Type,Defect_Severity,is_defective
    LOT-100,Scratch,Medium,True

shipping.csv:
    Lot_ID,Ship_Date,is_shipped,Destination
    LOT-100,2024-05-03,True,Dock 4

EXAMPLES:
    # Run a scenario with verbose output
    lotrecon -scenario scenarios/plant_basic -verbose

    # Shipped lots with high or critical defects, as JSON
    lotrecon -scenario scenarios/plant_basic -shipped shipped -severities High,Critical -format json

    # Write consolidated.csv and flags.csv
    lotrecon -scenario scenarios/plant_basic -format csv -output results/
`)
}

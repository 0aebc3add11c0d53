package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/lotrecon/pkg/interfaces/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "generate" {
		if err := runGenerate(ctx, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			stop()
			os.Exit(1)
		}
		return
	}

	// Command line flags
	var (
		configFile     = flag.String("config", "", "Path to YAML configuration file")
		source         = flag.String("source", "", "Source kind: csv, postgres")
		scenarioDir    = flag.String("scenario", "", "Path to scenario directory containing CSV files")
		productionFile = flag.String("production", "", "Path to production log CSV file")
		qualityFile    = flag.String("quality", "", "Path to quality inspection CSV file")
		shippingFile   = flag.String("shipping", "", "Path to shipping manifest CSV file")
		outputDir      = flag.String("output", "", "Output directory for results (optional)")
		format         = flag.String("format", "", "Output format: text, json, csv")
		persist        = flag.Bool("persist", false, "Persist records and flags to postgres")
		metricsFile    = flag.String("metrics-file", "", "Write Prometheus metrics to this textfile")
		logLevel       = flag.String("log-level", "", "Log level: debug, info, warn, error")
		verbose        = flag.Bool("verbose", false, "Enable verbose output")
		from           = flag.String("from", "", "Production date range start (YYYY-MM-DD)")
		to             = flag.String("to", "", "Production date range end (YYYY-MM-DD)")
		lines          = flag.String("lines", "", "Comma-separated line numbers to keep")
		severities     = flag.String("severities", "", "Comma-separated defect severities to keep")
		defectTypes    = flag.String("defect-types", "", "Comma-separated defect types to keep")
		shipped        = flag.String("shipped", "", "Shipped status: all, shipped, not-shipped")
		excludeIncomp  = flag.Bool("exclude-incomplete", false, "Drop records without a production date")
		help           = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ConfigFile:        *configFile,
		Source:            *source,
		ScenarioDir:       *scenarioDir,
		ProductionFile:    *productionFile,
		QualityFile:       *qualityFile,
		ShippingFile:      *shippingFile,
		OutputDir:         *outputDir,
		Format:            *format,
		Persist:           *persist,
		MetricsFile:       *metricsFile,
		LogLevel:          *logLevel,
		Verbose:           *verbose,
		From:              *from,
		To:                *to,
		Lines:             *lines,
		Severities:        *severities,
		DefectTypes:       *defectTypes,
		Shipped:           *shipped,
		ExcludeIncomplete: *excludeIncomp,
		Help:              *help,
	}

	// Create and execute command
	cmd := commands.NewConsolidateCommand(config)
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// runGenerate parses the generate subcommand flags and writes a scenario
func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		lots        = fs.Int("lots", 100, "Number of lots to generate")
		lines       = fs.Int("lines", 4, "Number of production lines")
		defectRate  = fs.Float64("defect-rate", 0.2, "Probability that an inspection finds a defect")
		anomalyRate = fs.Float64("anomaly-rate", 0.1, "Probability that a lot carries a data-quality anomaly")
		outputDir   = fs.String("output", "", "Output directory for generated files")
		seed        = fs.Int64("seed", 0, "Random seed for reproducible generation")
		verbose     = fs.Bool("verbose", false, "Enable verbose output")
		help        = fs.Bool("help", false, "Show help message")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := commands.NewGenerateCommand(commands.GenerateConfig{
		Lots:        *lots,
		Lines:       *lines,
		DefectRate:  *defectRate,
		AnomalyRate: *anomalyRate,
		OutputDir:   *outputDir,
		Seed:        *seed,
		Verbose:     *verbose,
		Help:        *help,
	})
	return cmd.Execute(ctx)
}

package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/lotrecon/pkg/application/dto"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

// Output file names
const (
	JSONFile         = "lotrecon_report.json"
	ConsolidatedFile = "consolidated.csv"
	FlagsFile        = "flags.csv"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Elapsed   time.Duration
	// Stdout receives text output and JSON when no directory is set; nil means os.Stdout
	Stdout io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Generate creates output in the specified format
func Generate(result *dto.ConsolidationResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput writes a human-readable summary
func generateTextOutput(result *dto.ConsolidationResult, config Config) error {
	w := config.stdout()
	summary := result.Summary

	fmt.Fprintf(w, "📊 Lot Consolidation Summary\n")
	fmt.Fprintf(w, "============================\n\n")

	fmt.Fprintf(w, "Consolidated Lots: %d\n", len(result.Records))
	fmt.Fprintf(w, "Flags: %d\n", len(result.Flags))
	fmt.Fprintf(w, "Total Defects: %d\n", summary.TotalDefects)
	fmt.Fprintf(w, "Defect Rate: %s\n", summary.DefectRate.StringFixed(4))
	if config.Verbose {
		s := result.Stats
		fmt.Fprintf(w, "Rows Read: production=%d quality=%d shipping=%d\n", s.ProductionRows, s.QualityRows, s.ShippingRows)
		fmt.Fprintf(w, "Rows Dropped: production=%d quality=%d shipping=%d\n", s.ProductionDropped, s.QualityDropped, s.ShippingDropped)
		fmt.Fprintf(w, "Elapsed: %v\n", config.Elapsed)
	}
	fmt.Fprintln(w)

	if len(summary.TopLines) > 0 {
		fmt.Fprintf(w, "🏭 Defects by Line:\n")
		fmt.Fprintf(w, "%-10s %-8s %s\n", "Line", "Defects", "By Type")
		fmt.Fprintf(w, "%-10s %-8s %s\n", "----------", "--------", "--------------------")
		for _, line := range summary.TopLines {
			fmt.Fprintf(w, "%-10s %-8d %s\n", line.Line, line.TotalDefects, formatCounts(line.ByType))
		}
		fmt.Fprintln(w)
	}

	if len(summary.TrendingDefects) > 0 {
		fmt.Fprintf(w, "📈 Trending Defects:\n")
		for _, trend := range summary.TrendingDefects {
			fmt.Fprintf(w, "  %-20s %d\n", trend.DefectType, trend.Count)
		}
		fmt.Fprintln(w)
	}

	if len(result.HighSeverityShipped) > 0 {
		fmt.Fprintf(w, "🚨 High-Severity Lots Shipped:\n")
		fmt.Fprintf(w, "%-15s %-12s %-15s %s\n", "Lot", "Ship Date", "Destination", "Severities")
		fmt.Fprintf(w, "%-15s %-12s %-15s %s\n", "---------------", "------------", "---------------", "----------")
		for _, h := range result.HighSeverityShipped {
			fmt.Fprintf(w, "%-15s %-12s %-15s %s\n",
				h.Lot,
				formatDate(h.Shipping.ShipDate),
				h.Shipping.Destination,
				strings.Join(h.Severities, ", "))
		}
		fmt.Fprintln(w)
	}

	if len(result.Flags) > 0 {
		fmt.Fprintf(w, "⚠️  Flags:\n")
		fmt.Fprintf(w, "%-15s %-28s %s\n", "Lot", "Issue", "Details")
		fmt.Fprintf(w, "%-15s %-28s %s\n", "---------------", "----------------------------", "-------")
		for _, f := range result.Flags {
			fmt.Fprintf(w, "%-15s %-28s %s\n", f.Lot, f.Issue, strings.Join(f.Details, ", "))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// generateJSONOutput writes the full result as JSON
func generateJSONOutput(result *dto.ConsolidationResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.stdout(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, JSONFile)
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes consolidated records and flags as two CSV files
func generateCSVOutput(result *dto.ConsolidationResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	recordsFile := filepath.Join(config.OutputDir, ConsolidatedFile)
	if err := writeCSVFile(recordsFile, func(w io.Writer) error {
		return WriteRecordsCSV(w, result.Records)
	}); err != nil {
		return fmt.Errorf("failed to write consolidated CSV: %w", err)
	}

	flagsFile := filepath.Join(config.OutputDir, FlagsFile)
	if err := writeCSVFile(flagsFile, func(w io.Writer) error {
		return WriteFlagsCSV(w, result.Flags)
	}); err != nil {
		return fmt.Errorf("failed to write flags CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 CSV results saved to:\n")
		fmt.Fprintf(config.stdout(), "  Consolidated: %s\n", recordsFile)
		fmt.Fprintf(config.stdout(), "  Flags: %s\n", flagsFile)
	}
	return nil
}

func writeCSVFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

var recordsHeader = []string{
	"lot_id", "line_no", "production_date", "shift_leader", "inspections", "defect_count",
	"defect_types", "severities", "ship_date", "is_shipped", "destination", "traceability_only",
}

// WriteRecordsCSV writes one row per consolidated record. List columns are
// joined with ';'. Absent values are written as empty cells.
func WriteRecordsCSV(w io.Writer, records []entities.ConsolidatedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordsHeader); err != nil {
		return err
	}

	for _, rec := range records {
		var shipDate, shipped, destination string
		if rec.Shipping != nil {
			shipDate = formatDate(rec.Shipping.ShipDate)
			shipped = strconv.FormatBool(rec.Shipping.Shipped)
			destination = rec.Shipping.Destination
		}
		row := []string{
			string(rec.Lot),
			deref(rec.LineNo),
			formatDate(rec.ProductionDate),
			deref(rec.ShiftLeader),
			strconv.Itoa(len(rec.Inspections)),
			strconv.Itoa(rec.DefectCount),
			strings.Join(rec.DefectTypes, ";"),
			strings.Join(rec.Severities, ";"),
			shipDate,
			shipped,
			destination,
			strconv.FormatBool(rec.TraceabilityOnly),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFlagsCSV writes flags in emission order
func WriteFlagsCSV(w io.Writer, flags []entities.Flag) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"lot_id", "issue", "details"}); err != nil {
		return err
	}
	for _, f := range flags {
		if err := cw.Write([]string{string(f.Lot), string(f.Issue), strings.Join(f.Details, ";")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(d *entities.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formatCounts renders a type→count map in a stable order
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

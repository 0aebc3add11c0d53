package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/lotrecon/pkg/application/dto"
	"github.com/vsinha/lotrecon/pkg/application/services/orchestration"
	testhelpers "github.com/vsinha/lotrecon/pkg/infrastructure/testing"
)

func plantResult() *dto.ConsolidationResult {
	s := testhelpers.BuildPlantScenario()
	rows := dto.SourceRows{Production: s.Production, Quality: s.Quality, Shipping: s.Shipping}
	return orchestration.BuildResult(rows, "fp", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(plantResult(), Config{Format: "text", Stdout: &buf})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Consolidated Lots: 6",
		"Defect Rate: 0.7500",
		"LOT-101",
		"conflicting_defect_types",
		"Dent, Scratch",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerate_JSONToStdout(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(plantResult(), Config{Format: "json", Stdout: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	for _, key := range []string{"consolidated", "flags", "summary", "high_severity_shipped", "stats"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Expected key %q in JSON output", key)
		}
	}
}

func TestGenerate_JSONToFile(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(plantResult(), Config{Format: "json", OutputDir: dir, Stdout: &bytes.Buffer{}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, JSONFile)); err != nil {
		t.Errorf("Expected JSON file: %v", err)
	}
}

func TestGenerate_CSV(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(plantResult(), Config{Format: "csv", OutputDir: dir}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, ConsolidatedFile))
	if len(records) != 7 {
		t.Fatalf("Expected header plus 6 records, got %d rows", len(records))
	}
	if records[0][0] != "lot_id" {
		t.Errorf("Unexpected header %v", records[0])
	}

	var lot101 []string
	for _, r := range records[1:] {
		if r[0] == "LOT-101" {
			lot101 = r
		}
	}
	if lot101 == nil {
		t.Fatal("Expected LOT-101 row")
	}
	if lot101[6] != "Dent;Scratch" || lot101[9] != "true" {
		t.Errorf("Unexpected LOT-101 row %v", lot101)
	}

	flags := readCSV(t, filepath.Join(dir, FlagsFile))
	if len(flags) != 6 {
		t.Errorf("Expected header plus 5 flags, got %d rows", len(flags))
	}
}

func TestGenerate_Errors(t *testing.T) {
	if err := Generate(plantResult(), Config{Format: "csv"}); err == nil {
		t.Error("Expected error for CSV without directory")
	}
	if err := Generate(plantResult(), Config{Format: "xml"}); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestFormatCounts(t *testing.T) {
	if got := formatCounts(map[string]int{"Scratch": 2, "Dent": 1}); got != "Dent=1 Scratch=2" {
		t.Errorf("Unexpected rendering %q", got)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return rows
}

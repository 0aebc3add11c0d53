package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsinha/lotrecon/pkg/application/services/reporting"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/infrastructure/config"
	"github.com/vsinha/lotrecon/pkg/infrastructure/events"
)

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"production.csv": "Lot_ID,Line_No,Production_Date,Shift_Leader\n" +
			"LOT-1,1,2024-05-01,Ahmed\n" +
			"LOT-2,2,2024-05-03,Baker\n" +
			"LOT-4,,,\n",
		"quality.csv": "Lot_ID,Defect_Type,Defect_Severity,is_defective\n" +
			"LOT-1,Scratch,High,True\n" +
			"LOT-2,Dent,Low,True\n" +
			"LOT-3,Warp,Critical,True\n",
		"shipping.csv": "Lot_ID,Ship_Date,is_shipped,Destination\n" +
			"LOT-1,2024-05-02,True,Dock 4\n" +
			"LOT-2,2024-05-01,False,Dock 1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

type report struct {
	Consolidated []struct {
		Lot string `json:"lot_id"`
	} `json:"consolidated"`
	Flags []struct {
		Lot   string `json:"lot"`
		Issue string `json:"issue"`
	} `json:"flags"`
	HighSeverityShipped []struct {
		Lot string `json:"lot_id"`
	} `json:"high_severity_shipped"`
}

func runJSON(t *testing.T, cfg Config) report {
	t.Helper()
	var buf bytes.Buffer
	cfg.Format = "json"
	cfg.Stdout = &buf
	if err := NewConsolidateCommand(cfg).Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var r report
	if err := json.Unmarshal(buf.Bytes(), &r); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, buf.String())
	}
	return r
}

func TestConsolidateCommand_Scenario(t *testing.T) {
	r := runJSON(t, Config{ScenarioDir: writeScenario(t)})

	lots := make([]string, 0, len(r.Consolidated))
	for _, rec := range r.Consolidated {
		lots = append(lots, rec.Lot)
	}
	if strings.Join(lots, ",") != "LOT-1,LOT-2,LOT-3" {
		t.Errorf("Unexpected lots %v", lots)
	}

	issues := make([]string, 0, len(r.Flags))
	for _, f := range r.Flags {
		issues = append(issues, f.Lot+":"+f.Issue)
	}
	expected := "LOT-2:ship_before_production,LOT-3:missing_production_record,LOT-4:insufficient_data_excluded"
	if strings.Join(issues, ",") != expected {
		t.Errorf("Unexpected flags %v", issues)
	}

	if len(r.HighSeverityShipped) != 1 || r.HighSeverityShipped[0].Lot != "LOT-1" {
		t.Errorf("Unexpected high-severity list %+v", r.HighSeverityShipped)
	}
}

func TestConsolidateCommand_VerboseJSONKeepsStdoutParseable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := NewConsolidateCommand(Config{
		ScenarioDir: writeScenario(t),
		Format:      "json",
		Verbose:     true,
		Stdout:      &stdout,
		Stderr:      &stderr,
	})
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var r report
	if err := json.Unmarshal(stdout.Bytes(), &r); err != nil {
		t.Fatalf("Expected stdout to hold only JSON: %v\n%s", err, stdout.String())
	}
	if len(r.Consolidated) != 3 {
		t.Errorf("Expected 3 records, got %d", len(r.Consolidated))
	}
	if !strings.Contains(stderr.String(), "Lot Consolidation CLI") || !strings.Contains(stderr.String(), "Running consolidation") {
		t.Errorf("Expected progress on stderr, got %q", stderr.String())
	}
}

func TestConsolidateCommand_VerboseTextUsesStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := NewConsolidateCommand(Config{
		ScenarioDir: writeScenario(t),
		Format:      "text",
		Verbose:     true,
		Stdout:      &stdout,
		Stderr:      &stderr,
	})
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "Running consolidation") {
		t.Errorf("Expected progress on stdout, got %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("Expected nothing on stderr, got %q", stderr.String())
	}
}

func TestAttachHandler_DetachStopsDelivery(t *testing.T) {
	store := events.NewInMemoryEventStore()
	handler := &countingHandler{}

	detach, err := attachHandler(store, handler, events.LotFlaggedEvent)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	flag := entities.Flag{Lot: "LOT-1", Issue: entities.IssueMissingProductionRecord}
	ctx := context.Background()
	if err := store.AppendEvent(ctx, events.LotStreamID(flag.Lot), events.NewLotFlaggedEvent(flag)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	detach()
	if err := store.AppendEvent(ctx, events.LotStreamID(flag.Lot), events.NewLotFlaggedEvent(flag)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if handler.handled != 1 {
		t.Errorf("Expected 1 delivered event, got %d", handler.handled)
	}
}

type countingHandler struct {
	handled int
}

func (h *countingHandler) CanHandle(eventType string) bool {
	return eventType == events.LotFlaggedEvent
}

func (h *countingHandler) Handle(ctx context.Context, event events.Event) error {
	h.handled++
	return nil
}

func TestConsolidateCommand_Filters(t *testing.T) {
	r := runJSON(t, Config{
		ScenarioDir:       writeScenario(t),
		Shipped:           "not-shipped",
		ExcludeIncomplete: true,
	})

	if len(r.Consolidated) != 1 || r.Consolidated[0].Lot != "LOT-2" {
		t.Errorf("Expected only LOT-2, got %+v", r.Consolidated)
	}
	if len(r.Flags) != 3 {
		t.Errorf("Expected flags to be unfiltered, got %d", len(r.Flags))
	}
}

func TestConsolidateCommand_CSVOutput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "results")
	cmd := NewConsolidateCommand(Config{
		ScenarioDir: writeScenario(t),
		Format:      "csv",
		OutputDir:   outDir,
		Stdout:      &bytes.Buffer{},
	})
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, name := range []string{"consolidated.csv", "flags.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}
}

func TestConsolidateCommand_Errors(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{"no inputs", Config{}},
		{"unknown format", Config{ScenarioDir: "x", Format: "xml"}},
		{"half date range", Config{ScenarioDir: "x", From: "2024-05-01"}},
		{"bad date", Config{ScenarioDir: "x", From: "May 1", To: "2024-05-02"}},
		{"bad shipped status", Config{ScenarioDir: "x", Shipped: "maybe"}},
		{"missing files", Config{ScenarioDir: filepath.Join(t.TempDir(), "none")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Stdout = &bytes.Buffer{}
			if err := NewConsolidateCommand(tc.cfg).Execute(context.Background()); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestConsolidateCommand_Help(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsolidateCommand(Config{Help: true, Stdout: &buf}).Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "USAGE:") {
		t.Error("Expected help text")
	}
}

func TestParseCriteria(t *testing.T) {
	cmd := NewConsolidateCommand(Config{
		From:       "2024-05-01",
		To:         "2024-05-31",
		Lines:      "1, 2,,Unknown",
		Severities: "High",
		Shipped:    "shipped",
	})

	criteria, err := cmd.parseCriteria()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if criteria.From.String() != "2024-05-01" || criteria.To.String() != "2024-05-31" {
		t.Errorf("Unexpected date range %s..%s", criteria.From, criteria.To)
	}
	if strings.Join(criteria.Lines, "|") != "1|2|Unknown" {
		t.Errorf("Unexpected lines %v", criteria.Lines)
	}
	if criteria.Shipped != reporting.ShippedOnly {
		t.Errorf("Expected shipped only, got %s", criteria.Shipped)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	cmd := NewConsolidateCommand(Config{
		ProductionFile: "p.csv",
		QualityFile:    "q.csv",
		ShippingFile:   "s.csv",
		Format:         "csv",
		OutputDir:      "out",
		Verbose:        true,
	})

	cfg, err := cmd.loadConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Output.Format != config.FormatCSV || cfg.Output.Dir != "out" {
		t.Errorf("Unexpected output config %+v", cfg.Output)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected verbose to raise log level to debug, got %s", cfg.Logging.Level)
	}
}

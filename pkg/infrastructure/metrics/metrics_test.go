package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vsinha/lotrecon/pkg/application/dto"
	"github.com/vsinha/lotrecon/pkg/application/services/consolidation"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

func sampleResult() *dto.ConsolidationResult {
	return &dto.ConsolidationResult{
		Records: []entities.ConsolidatedRecord{
			{Lot: "LOT-1"},
			{Lot: "LOT-2", TraceabilityOnly: true},
		},
		Flags: []entities.Flag{
			{Lot: "LOT-2", Issue: entities.IssueMissingProductionRecord},
			{Lot: "LOT-3", Issue: entities.IssueInsufficientDataExcluded},
			{Lot: "LOT-4", Issue: entities.IssueInsufficientDataExcluded},
		},
		Stats: consolidation.IndexStats{
			ProductionRows:    4,
			QualityRows:       3,
			ShippingRows:      2,
			ProductionDropped: 1,
		},
	}
}

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun(sampleResult(), 250*time.Millisecond)

	if got := testutil.ToFloat64(m.RowsRead.WithLabelValues("production")); got != 4 {
		t.Errorf("Expected 4 production rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.RowsDropped.WithLabelValues("production")); got != 1 {
		t.Errorf("Expected 1 dropped production row, got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsTotal); got != 2 {
		t.Errorf("Expected 2 records, got %v", got)
	}
	if got := testutil.ToFloat64(m.TraceabilityTotal); got != 1 {
		t.Errorf("Expected 1 traceability record, got %v", got)
	}
	if got := testutil.ToFloat64(m.FlagsTotal.WithLabelValues(string(entities.IssueInsufficientDataExcluded))); got != 2 {
		t.Errorf("Expected 2 exclusion flags, got %v", got)
	}
	if got := testutil.ToFloat64(m.ExcludedLotsTotal); got != 2 {
		t.Errorf("Expected 2 excluded lots, got %v", got)
	}
	if got := testutil.CollectAndCount(m.RunDuration); got != 1 {
		t.Errorf("Expected run duration histogram, got %d series", got)
	}
}

func TestObserveCache(t *testing.T) {
	m := New()
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	if got := testutil.ToFloat64(m.ReportCacheResults.WithLabelValues("miss")); got != 2 {
		t.Errorf("Expected 2 misses, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveRun(sampleResult(), time.Second)

	path := filepath.Join(t.TempDir(), "lotrecon.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), "lotrecon_consolidated_records_total 2") {
		t.Errorf("Expected records counter in textfile, got:\n%s", data)
	}
}

package csv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsinha/lotrecon/pkg/application/services/consolidation"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
)

func TestReadRows(t *testing.T) {
	content := "\ufeffLot_ID,Line_No,Production_Date,Shift_Leader\n" +
		" lot 1 ,3,2024-05-01, Ahmed \n" +
		"LOT-2,,2024-05-02,\n" +
		",,,\n"

	rows, err := NewLoader().ReadRows(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if rows[0]["Lot_ID"] != "lot 1" {
		t.Errorf("Expected BOM stripped and value trimmed, got %#v", rows[0])
	}
	if rows[0]["Shift_Leader"] != "Ahmed" {
		t.Errorf("Expected trimmed shift leader, got %#v", rows[0]["Shift_Leader"])
	}
	if _, ok := rows[1]["Line_No"]; ok {
		t.Error("Expected blank cell to be absent")
	}
	if got := entities.NormalizeLot(rows[0]["Lot_ID"]); got != "LOT-1" {
		t.Errorf("Expected LOT-1, got %s", got)
	}
}

func TestReadRows_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "", "header and at least one data row"},
		{"header only", "Lot_ID,Line_No\n", "header and at least one data row"},
		{"blank header", "Lot_ID,,Ship_Date\nA,B,C\n", "column 2 is blank"},
		{"duplicate header", "Lot_ID,Lot_ID\nA,B\n", "duplicate column"},
		{"ragged row", "Lot_ID,Line_No\nA,1\nB\n", "row 3: expected 2 columns, got 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().ReadRows(strings.NewReader(tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"production.csv": "Lot_ID,Line_No,Production_Date,Shift_Leader\n" +
			"LOT-1,1,2024-05-01,Ahmed\n" +
			"LOT-2,2,2024-05-03,Baker\n",
		"quality.csv": "Lot_ID,Defect_Type,Defect_Severity,is_defective\n" +
			"LOT-1,Scratch,High,True\n" +
			"LOT-1,Dent,Low,False\n" +
			"LOT-3,Warp,Critical,True\n",
		"shipping.csv": "Lot_ID,Ship_Date,is_shipped,Destination\n" +
			"LOT-1,2024-05-02,True,Dock 4\n" +
			"LOT-2,2024-05-01,True,Dock 1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestSourceRepository_Scenario(t *testing.T) {
	dir := writeScenario(t)
	repo := NewSourceRepository(
		filepath.Join(dir, "production.csv"),
		filepath.Join(dir, "quality.csv"),
		filepath.Join(dir, "shipping.csv"),
	)
	ctx := context.Background()

	var loaded [3][]entities.Row
	for i, source := range repositories.AllSources {
		rows, err := repo.GetRows(ctx, source)
		if err != nil {
			t.Fatalf("Unexpected error loading %s: %v", source, err)
		}
		loaded[i] = rows
	}

	result := consolidation.Consolidate(loaded[0], loaded[1], loaded[2])

	if len(result.Records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(result.Records))
	}
	lot1 := result.Records[0]
	if lot1.DefectCount != 1 || len(lot1.DefectTypes) != 2 {
		t.Errorf("Expected string booleans to parse, got count=%d types=%v", lot1.DefectCount, lot1.DefectTypes)
	}

	issues := make(map[entities.IssueType]bool)
	for _, f := range result.Flags {
		issues[f.Issue] = true
	}
	for _, want := range []entities.IssueType{
		entities.IssueMissingProductionRecord,
		entities.IssueShipBeforeProduction,
		entities.IssueConflictingDefectTypes,
	} {
		if !issues[want] {
			t.Errorf("Expected %s flag, got %+v", want, result.Flags)
		}
	}
}

func TestSourceRepository_Errors(t *testing.T) {
	dir := t.TempDir()
	repo := NewSourceRepository(filepath.Join(dir, "missing.csv"), "", "")

	_, err := repo.GetRows(context.Background(), repositories.SourceProduction)
	if !errors.Is(err, repositories.ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}

	_, err = repo.GetRows(context.Background(), "returns")
	if !errors.Is(err, repositories.ErrUnknownSource) {
		t.Errorf("Expected ErrUnknownSource, got %v", err)
	}
}

package reporting

import (
	"testing"
	"time"

	"github.com/vsinha/lotrecon/pkg/application/services/consolidation"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
	testhelpers "github.com/vsinha/lotrecon/pkg/infrastructure/testing"
)

func plantRecords() []entities.ConsolidatedRecord {
	s := testhelpers.BuildPlantScenario()
	return consolidation.Consolidate(s.Production, s.Quality, s.Shipping).Records
}

func lotsOf(records []entities.ConsolidatedRecord) []entities.LotKey {
	lots := make([]entities.LotKey, 0, len(records))
	for _, r := range records {
		lots = append(lots, r.Lot)
	}
	return lots
}

func TestFilter(t *testing.T) {
	may2 := entities.NewDate(2024, time.May, 2)
	may3 := entities.NewDate(2024, time.May, 3)

	testCases := []struct {
		name     string
		criteria Criteria
		expected []entities.LotKey
	}{
		{
			name:     "zero criteria keeps everything",
			criteria: Criteria{},
			expected: []entities.LotKey{"LOT-100", "LOT-101", "LOT-102", "LOT-103", "LOT-105", "LOT-999"},
		},
		{
			name:     "date range is inclusive and drops undated",
			criteria: Criteria{From: &may2, To: &may3},
			expected: []entities.LotKey{"LOT-101", "LOT-102"},
		},
		{
			name:     "half-open range is ignored",
			criteria: Criteria{From: &may3},
			expected: []entities.LotKey{"LOT-100", "LOT-101", "LOT-102", "LOT-103", "LOT-105", "LOT-999"},
		},
		{
			name:     "lines",
			criteria: Criteria{Lines: []string{"2"}},
			expected: []entities.LotKey{"LOT-101", "LOT-103"},
		},
		{
			name:     "unknown line",
			criteria: Criteria{Lines: []string{entities.UnknownLine}},
			expected: []entities.LotKey{"LOT-999"},
		},
		{
			name:     "severities",
			criteria: Criteria{Severities: []string{"Low"}},
			expected: []entities.LotKey{"LOT-101", "LOT-103"},
		},
		{
			name:     "defect types",
			criteria: Criteria{DefectTypes: []string{"Scratch"}},
			expected: []entities.LotKey{"LOT-100", "LOT-101"},
		},
		{
			name:     "shipped only",
			criteria: Criteria{Shipped: ShippedOnly},
			expected: []entities.LotKey{"LOT-100", "LOT-101", "LOT-103", "LOT-105"},
		},
		{
			name:     "not shipped",
			criteria: Criteria{Shipped: NotShipped},
			expected: []entities.LotKey{"LOT-102", "LOT-999"},
		},
		{
			name:     "exclude incomplete",
			criteria: Criteria{ExcludeIncomplete: true},
			expected: []entities.LotKey{"LOT-100", "LOT-101", "LOT-102", "LOT-103"},
		},
		{
			name:     "criteria compose",
			criteria: Criteria{Shipped: ShippedOnly, Lines: []string{"1", "2"}, Severities: []string{"Low", "Medium"}},
			expected: []entities.LotKey{"LOT-100", "LOT-101", "LOT-103"},
		},
	}

	records := plantRecords()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := lotsOf(Filter(records, tc.criteria))
			if len(got) != len(tc.expected) {
				t.Fatalf("Expected %v, got %v", tc.expected, got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("Expected %v, got %v", tc.expected, got)
					break
				}
			}
		})
	}
}

func TestParseShippedStatus(t *testing.T) {
	testCases := []struct {
		input    string
		expected ShippedStatus
		wantErr  bool
	}{
		{"", ShippedAny, false},
		{"All", ShippedAny, false},
		{"shipped", ShippedOnly, false},
		{"Not Shipped", NotShipped, false},
		{"not-shipped", NotShipped, false},
		{"maybe", ShippedAny, true},
	}

	for _, tc := range testCases {
		got, err := ParseShippedStatus(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.input, err)
		}
		if got != tc.expected {
			t.Errorf("%q: expected %s, got %s", tc.input, tc.expected, got)
		}
	}
}

package services

import (
	"testing"
	"time"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

func TestIsInsufficient(t *testing.T) {
	line := "2"
	date := entities.NewDate(2024, time.May, 1)

	testCases := []struct {
		name     string
		record   entities.ConsolidatedRecord
		expected bool
	}{
		{
			name:     "everything missing",
			record:   entities.ConsolidatedRecord{Lot: "LOT-1"},
			expected: true,
		},
		{
			name:     "line number only",
			record:   entities.ConsolidatedRecord{Lot: "LOT-1", LineNo: &line},
			expected: false,
		},
		{
			name: "inspection only",
			record: entities.ConsolidatedRecord{
				Lot:         "LOT-1",
				Inspections: []entities.Inspection{{DefectType: "Scratch"}},
			},
			expected: false,
		},
		{
			name:     "shipping only",
			record:   entities.ConsolidatedRecord{Lot: "LOT-1", Shipping: &entities.Shipment{}},
			expected: false,
		},
		{
			name:     "production date only",
			record:   entities.ConsolidatedRecord{Lot: "LOT-1", ProductionDate: &date},
			expected: false,
		},
		{
			name:     "empty inspection slice counts as none",
			record:   entities.ConsolidatedRecord{Lot: "LOT-1", Inspections: []entities.Inspection{}},
			expected: true,
		},
		{
			name: "shift leader does not count",
			record: entities.ConsolidatedRecord{
				Lot:         "LOT-1",
				ShiftLeader: &line,
			},
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsInsufficient(&tc.record); got != tc.expected {
				t.Errorf("IsInsufficient() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestShipmentIssues(t *testing.T) {
	may1 := entities.NewDate(2024, time.May, 1)
	apr30 := entities.NewDate(2024, time.April, 30)
	may3 := entities.NewDate(2024, time.May, 3)

	testCases := []struct {
		name           string
		productionDate *entities.Date
		shipment       *entities.Shipment
		expected       []entities.IssueType
	}{
		{"no shipment", &may1, nil, nil},
		{"invalid ship date", &may1, &entities.Shipment{}, []entities.IssueType{entities.IssueInvalidShipDate}},
		{"invalid ship date without production date", nil, &entities.Shipment{}, []entities.IssueType{entities.IssueInvalidShipDate}},
		{"ship before production", &may1, &entities.Shipment{ShipDate: &apr30}, []entities.IssueType{entities.IssueShipBeforeProduction}},
		{"same day", &may1, &entities.Shipment{ShipDate: &may1}, nil},
		{"ship after production", &may1, &entities.Shipment{ShipDate: &may3}, nil},
		{"no production date skips ordering", nil, &entities.Shipment{ShipDate: &apr30}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShipmentIssues(tc.productionDate, tc.shipment)
			if len(got) != len(tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("issue %d: expected %s, got %s", i, tc.expected[i], got[i])
				}
			}
		})
	}
}

package testing

import (
	"time"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
	"github.com/vsinha/lotrecon/pkg/infrastructure/repositories/memory"
)

// PlantScenario holds the raw rows of a small plant with one of every anomaly
type PlantScenario struct {
	Production []entities.Row
	Quality    []entities.Row
	Shipping   []entities.Row
}

// BuildPlantScenario builds a scenario covering the normal path and every flag:
//
//	LOT-100  clean lot, one defect, shipped after production
//	LOT-101  two defect types (conflict), high severity, shipped
//	LOT-102  undated first production row replaced by a dated one; unparseable ship date
//	LOT-103  shipped before production
//	LOT-104  production row with nothing else (excluded)
//	LOT-105  unparseable production date, shipping row overwritten by a later one
//	LOT-999  inspection without any production row
func BuildPlantScenario() PlantScenario {
	return PlantScenario{
		Production: []entities.Row{
			{"Lot_ID": "LOT-100", "Line_No": 1, "Production_Date": "2024-05-01", "Shift_Leader": "Alvarez"},
			{"lot_id": "lot_101", "line_number": "2", "production_date": "2024-05-02", "shift_leader": "Brooks"},
			{"Lot_ID": "LOT-102", "Line_No": 1, "Production_Date": nil, "Shift_Leader": "Chen"},
			{"Lot_ID": "lot 102", "Line_No": 4, "Production_Date": "2024-05-03", "Shift_Leader": "Diaz"},
			{"lotNumber": "LOT-103", "LineNo": 2, "Production_Date": time.Date(2024, 5, 4, 6, 30, 0, 0, time.UTC)},
			{"Lot_ID": "LOT-104"},
			{"Lot_ID": "LOT-105", "Line_No": 3, "Production_Date": "sometime in May"},
			{"Lot_ID": nil, "Line_No": nil, "Production_Date": nil},
		},
		Quality: []entities.Row{
			{"Lot_ID": "lot-100", "Defect_Type": "Scratch", "is_defective": true, "Defect_Severity": "Medium"},
			{"Lot_ID": "LOT-101", "Defect_Type": "Scratch", "is_defective": true, "Defect_Severity": "High"},
			{"lot_id": "LOT_101", "Defect_Type": "Dent", "is_defective": true, "Defect_Severity": "Low"},
			{"Lot_ID": "LOT-103", "Defect_Type": "Color", "is_defective": false, "Defect_Severity": "Low"},
			{"Lot_ID": "LOT-999", "Defect_Type": "Crack", "is_defective": true, "Defect_Severity": "Critical"},
			{"Lot_ID": "", "Defect_Type": "Scratch", "is_defective": true},
		},
		Shipping: []entities.Row{
			{"Lot_ID": "LOT-100", "Ship_Date": "2024-05-03", "is_shipped": true, "Destination": "Rotterdam"},
			{"LotID": "LOT-101", "ship_date": "2024-05-05", "Is_Shipped": true},
			{"Lot_ID": "LOT-102", "Ship_Date": "soon", "is_shipped": false},
			{"Lot_ID": "LOT-103", "Ship_Date": "2024-05-01", "isShipped": true},
			{"Lot_ID": "LOT-105", "Ship_Date": "2024-05-06", "is_shipped": false},
			{"Lot_ID": "LOT-105", "Ship_Date": "2024-05-07", "is_shipped": true},
			{"Ship_Date": "2024-05-07", "is_shipped": true},
		},
	}
}

// Rows returns the scenario's rows for one source
func (s PlantScenario) Rows(source repositories.Source) []entities.Row {
	switch source {
	case repositories.SourceProduction:
		return s.Production
	case repositories.SourceQuality:
		return s.Quality
	case repositories.SourceShipping:
		return s.Shipping
	default:
		return nil
	}
}

// BuildPlantRepository loads the plant scenario into an in-memory source repository
func BuildPlantRepository() *memory.SourceRepository {
	scenario := BuildPlantScenario()
	repo := memory.NewSourceRepository()
	for _, source := range repositories.AllSources {
		if err := repo.LoadRows(source, scenario.Rows(source)); err != nil {
			panic(err)
		}
	}
	return repo
}

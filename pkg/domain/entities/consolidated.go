package entities

import "strings"

// ProductionEntry is the production row that survived duplicate reduction for a lot
type ProductionEntry struct {
	Row            Row
	ProductionDate *Date
}

// NewProductionEntry resolves the production date of a raw production row
func NewProductionEntry(row Row) ProductionEntry {
	return ProductionEntry{
		Row:            row,
		ProductionDate: row.Date(ProductionDateField),
	}
}

// Inspection represents one quality inspection row for a lot
type Inspection struct {
	DefectType string `json:"defect_type,omitempty"`
	Severity   string `json:"severity,omitempty"`
	Defective  bool   `json:"is_defective"`
	Row        Row    `json:"row"`
}

// NewInspection extracts the load-bearing inspection fields from a raw row
func NewInspection(row Row) Inspection {
	defectType, _ := row.String(DefectTypeField)
	severity, _ := row.String(DefectSeverityField)
	return Inspection{
		DefectType: defectType,
		Severity:   severity,
		Defective:  row.Bool(DefectiveField),
		Row:        row,
	}
}

// Shipment represents the shipping manifest entry for a lot
type Shipment struct {
	ShipDate    *Date  `json:"ship_date"`
	Shipped     bool   `json:"is_shipped"`
	Destination string `json:"destination,omitempty"`
	Row         Row    `json:"row"`
}

// NewShipment extracts the load-bearing shipping fields from a raw row
func NewShipment(row Row) Shipment {
	destination, _ := row.String(DestinationField)
	return Shipment{
		ShipDate:    row.Date(ShipDateField),
		Shipped:     row.Bool(ShippedField),
		Destination: destination,
		Row:         row,
	}
}

// UnknownLine groups records without a line number in reports and filters
const UnknownLine = "Unknown"

// ConsolidatedRecord is the merged per-lot view of production, quality and shipping data
type ConsolidatedRecord struct {
	Lot            LotKey       `json:"lot_id"`
	LineNo         *string      `json:"line_no"`
	ProductionDate *Date        `json:"production_date"`
	ShiftLeader    *string      `json:"shift_leader"`
	Inspections    []Inspection `json:"inspections"`
	Shipping       *Shipment    `json:"shipping"`
	DefectCount    int          `json:"defect_count"`
	DefectTypes    []string     `json:"defect_types"`
	Severities     []string     `json:"severities"`

	// TraceabilityOnly marks records kept for lots that have no production entry
	TraceabilityOnly bool `json:"traceability_only"`
}

// LineKey returns the line number, or UnknownLine when it is missing
func (r *ConsolidatedRecord) LineKey() string {
	if r.LineNo == nil {
		return UnknownLine
	}
	return *r.LineNo
}

// IsShipped reports whether the lot's shipping entry marks it as shipped
func (r *ConsolidatedRecord) IsShipped() bool {
	return r.Shipping != nil && r.Shipping.Shipped
}

// HasSeverity reports whether any severity matches one of the given levels, ignoring case
func (r *ConsolidatedRecord) HasSeverity(levels ...string) bool {
	for _, s := range r.Severities {
		for _, level := range levels {
			if strings.EqualFold(s, level) {
				return true
			}
		}
	}
	return false
}

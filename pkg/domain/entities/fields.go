package entities

// Accepted field spellings per logical field. Order matters: the first alias
// that carries a value is used, so these lists are business policy.
var (
	ProductionLotField = Field{Name: "lot_id", Aliases: []string{"Lot_ID", "lot_id", "lotNumber"}}
	QualityLotField    = Field{Name: "lot_id", Aliases: []string{"Lot_ID", "lot_id"}}
	ShippingLotField   = Field{Name: "lot_id", Aliases: []string{"Lot_ID", "lot_id", "LotID"}}

	LineNumberField     = Field{Name: "line_no", Aliases: []string{"Line_No", "line_number", "LineNo"}}
	ProductionDateField = Field{Name: "production_date", Aliases: []string{"Production_Date", "production_date"}}
	ShiftLeaderField    = Field{Name: "shift_leader", Aliases: []string{"Shift_Leader", "shift_leader"}}

	DefectTypeField     = Field{Name: "defect_type", Aliases: []string{"Defect_Type", "defect_type"}}
	DefectSeverityField = Field{Name: "defect_severity", Aliases: []string{"Defect_Severity", "defect_severity"}}
	DefectiveField      = Field{Name: "is_defective", Aliases: []string{"is_defective", "Is_Defective"}}

	ShipDateField    = Field{Name: "ship_date", Aliases: []string{"Ship_Date", "ship_date"}}
	ShippedField     = Field{Name: "is_shipped", Aliases: []string{"is_shipped", "Is_Shipped", "isShipped"}}
	DestinationField = Field{Name: "destination", Aliases: []string{"Destination", "destination"}}
)

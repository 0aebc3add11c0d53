package services

import "github.com/vsinha/lotrecon/pkg/domain/entities"

// IsInsufficient reports whether a record carries no usable data at all: no
// line number, no inspections, no shipping entry and no production date. Any
// one of those being present keeps the record, so a lot known only by its
// production date is still consolidated.
func IsInsufficient(rec *entities.ConsolidatedRecord) bool {
	return rec.LineNo == nil &&
		len(rec.Inspections) == 0 &&
		rec.Shipping == nil &&
		rec.ProductionDate == nil
}

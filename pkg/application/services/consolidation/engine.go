package consolidation

import (
	"slices"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/services"
)

// Result contains the complete output of a consolidation run
type Result struct {
	Records []entities.ConsolidatedRecord
	Flags   []entities.Flag
	Stats   IndexStats
}

// Consolidate indexes the three raw row lists and merges them per lot.
// It holds no state between calls and never fails: malformed input ends up
// as a flag, a nil field, or an omitted row.
func Consolidate(production, quality, shipping []entities.Row) *Result {
	ix := BuildIndexes(production, quality, shipping)
	records, flags := Merge(ix)
	return &Result{
		Records: records,
		Flags:   flags,
		Stats:   ix.Stats,
	}
}

// Merge walks the sorted union of lot keys and produces one consolidated
// record per lot plus the flags raised along the way. Flags for a single lot
// are always emitted in the same order: missing production, ship date
// checks, exclusion, conflicting defect types.
func Merge(ix *Indexes) ([]entities.ConsolidatedRecord, []entities.Flag) {
	records := make([]entities.ConsolidatedRecord, 0, len(ix.Production))
	flags := make([]entities.Flag, 0)

	for _, lot := range ix.Lots() {
		inspections := slices.Clone(ix.Quality[lot])
		if inspections == nil {
			inspections = []entities.Inspection{}
		}

		var shipping *entities.Shipment
		if s, ok := ix.Shipping[lot]; ok {
			shipping = &s
		}

		prod, ok := ix.Production[lot]
		if !ok {
			flags = append(flags, entities.Flag{Lot: lot, Issue: entities.IssueMissingProductionRecord})
			records = append(records, entities.ConsolidatedRecord{
				Lot:              lot,
				Inspections:      inspections,
				Shipping:         shipping,
				DefectTypes:      []string{},
				Severities:       []string{},
				TraceabilityOnly: true,
			})
			continue
		}

		rec := baseRecord(lot, prod, inspections, shipping)

		for _, issue := range services.ShipmentIssues(rec.ProductionDate, rec.Shipping) {
			flags = append(flags, entities.Flag{Lot: lot, Issue: issue})
		}

		if services.IsInsufficient(&rec) {
			flags = append(flags, entities.Flag{Lot: lot, Issue: entities.IssueInsufficientDataExcluded})
			continue
		}

		applyDefectAggregates(&rec)
		if len(rec.DefectTypes) > 1 {
			flags = append(flags, entities.Flag{
				Lot:     lot,
				Issue:   entities.IssueConflictingDefectTypes,
				Details: slices.Clone(rec.DefectTypes),
			})
		}

		records = append(records, rec)
	}

	return records, flags
}

// baseRecord anchors the record on the production row
func baseRecord(lot entities.LotKey, prod entities.ProductionEntry, inspections []entities.Inspection, shipping *entities.Shipment) entities.ConsolidatedRecord {
	rec := entities.ConsolidatedRecord{
		Lot:            lot,
		ProductionDate: prod.ProductionDate,
		Inspections:    inspections,
		Shipping:       shipping,
	}
	if line, ok := prod.Row.String(entities.LineNumberField); ok {
		rec.LineNo = &line
	}
	if leader, ok := prod.Row.String(entities.ShiftLeaderField); ok {
		rec.ShiftLeader = &leader
	}
	return rec
}

// applyDefectAggregates derives the defect count and the sorted distinct
// defect types and severities from the record's inspections
func applyDefectAggregates(rec *entities.ConsolidatedRecord) {
	types := make(map[string]struct{})
	severities := make(map[string]struct{})
	count := 0

	for _, insp := range rec.Inspections {
		if insp.Defective {
			count++
		}
		if insp.DefectType != "" {
			types[insp.DefectType] = struct{}{}
		}
		if insp.Severity != "" {
			severities[insp.Severity] = struct{}{}
		}
	}

	rec.DefectCount = count
	rec.DefectTypes = sortedKeys(types)
	rec.Severities = sortedKeys(severities)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

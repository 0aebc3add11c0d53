package consolidation

import (
	"slices"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

// IndexStats counts what happened to input rows while indexing
type IndexStats struct {
	ProductionRows     int `json:"production_rows"`
	QualityRows        int `json:"quality_rows"`
	ShippingRows       int `json:"shipping_rows"`
	ProductionDropped  int `json:"production_dropped"`
	QualityDropped     int `json:"quality_dropped"`
	ShippingDropped    int `json:"shipping_dropped"`
	ProductionReplaced int `json:"production_replaced"`
	ShippingReplaced   int `json:"shipping_replaced"`
}

// Indexes holds the per-source lookups keyed by normalized lot
type Indexes struct {
	Production map[entities.LotKey]entities.ProductionEntry
	Quality    map[entities.LotKey][]entities.Inspection
	Shipping   map[entities.LotKey]entities.Shipment
	Stats      IndexStats
}

// BuildIndexes indexes the three raw row lists. Rows without a usable lot
// identifier are skipped.
func BuildIndexes(production, quality, shipping []entities.Row) *Indexes {
	ix := &Indexes{
		Production: make(map[entities.LotKey]entities.ProductionEntry, len(production)),
		Quality:    make(map[entities.LotKey][]entities.Inspection, len(quality)),
		Shipping:   make(map[entities.LotKey]entities.Shipment, len(shipping)),
	}
	ix.indexProduction(production)
	ix.indexQuality(quality)
	ix.indexShipping(shipping)
	return ix
}

// indexProduction keeps the first row seen for a lot, unless that row has no
// production date and a later one does.
func (ix *Indexes) indexProduction(rows []entities.Row) {
	ix.Stats.ProductionRows = len(rows)
	for _, row := range rows {
		lot := lotKey(row, entities.ProductionLotField)
		if lot.IsEmpty() {
			ix.Stats.ProductionDropped++
			continue
		}

		entry := entities.NewProductionEntry(row)
		existing, seen := ix.Production[lot]
		if !seen {
			ix.Production[lot] = entry
			continue
		}
		if existing.ProductionDate == nil && entry.ProductionDate != nil {
			ix.Production[lot] = entry
			ix.Stats.ProductionReplaced++
		}
	}
}

func (ix *Indexes) indexQuality(rows []entities.Row) {
	ix.Stats.QualityRows = len(rows)
	for _, row := range rows {
		lot := lotKey(row, entities.QualityLotField)
		if lot.IsEmpty() {
			ix.Stats.QualityDropped++
			continue
		}
		ix.Quality[lot] = append(ix.Quality[lot], entities.NewInspection(row))
	}
}

// indexShipping lets the last row for a lot win
func (ix *Indexes) indexShipping(rows []entities.Row) {
	ix.Stats.ShippingRows = len(rows)
	for _, row := range rows {
		lot := lotKey(row, entities.ShippingLotField)
		if lot.IsEmpty() {
			ix.Stats.ShippingDropped++
			continue
		}
		if _, seen := ix.Shipping[lot]; seen {
			ix.Stats.ShippingReplaced++
		}
		ix.Shipping[lot] = entities.NewShipment(row)
	}
}

// Lots returns the sorted union of lot keys across all three indexes
func (ix *Indexes) Lots() []entities.LotKey {
	seen := make(map[entities.LotKey]struct{}, len(ix.Production)+len(ix.Quality)+len(ix.Shipping))
	for lot := range ix.Production {
		seen[lot] = struct{}{}
	}
	for lot := range ix.Quality {
		seen[lot] = struct{}{}
	}
	for lot := range ix.Shipping {
		seen[lot] = struct{}{}
	}

	lots := make([]entities.LotKey, 0, len(seen))
	for lot := range seen {
		lots = append(lots, lot)
	}
	slices.Sort(lots)
	return lots
}

func lotKey(row entities.Row, field entities.Field) entities.LotKey {
	raw, ok := row.Lookup(field)
	if !ok {
		return ""
	}
	return entities.NormalizeLot(raw)
}

package reporting

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

// TrendingLimit caps the number of defect types reported as trending
const TrendingLimit = 10

// LineDefects holds defect-type occurrences for one production line
type LineDefects struct {
	Line         string         `json:"line"`
	TotalDefects int            `json:"total_defects"`
	ByType       map[string]int `json:"by_type"`
}

// DefectTrend is one entry of the trending defect ranking
type DefectTrend struct {
	DefectType string `json:"defect_type"`
	Count      int    `json:"count"`
}

// ShippedLot identifies a lot whose shipping entry marks it as shipped
type ShippedLot struct {
	Lot      entities.LotKey `json:"lot_id"`
	ShipDate *entities.Date  `json:"ship_date"`
}

// Summary contains aggregate metrics over a consolidated record set
type Summary struct {
	TotalDefects     int             `json:"total_defects"`
	TotalInspections int             `json:"total_inspections"`
	DefectRate       decimal.Decimal `json:"defect_rate"`
	TopLines         []LineDefects   `json:"top_lines"`
	TrendingDefects  []DefectTrend   `json:"trending_defects"`
	ShippedLots      []ShippedLot    `json:"shipped_lots"`
}

// HighSeverityShipment is a shipped lot carrying at least one high or critical severity
type HighSeverityShipment struct {
	Lot        entities.LotKey   `json:"lot_id"`
	Severities []string          `json:"severities"`
	Shipping   entities.Shipment `json:"shipping"`
}

// lineTally counts defect types for a line in first-seen order
type lineTally struct {
	line   string
	counts map[string]int
	order  []string
}

func (lt *lineTally) add(defectType string) {
	if _, ok := lt.counts[defectType]; !ok {
		lt.order = append(lt.order, defectType)
	}
	lt.counts[defectType]++
}

func (lt *lineTally) total() int {
	total := 0
	for _, n := range lt.counts {
		total += n
	}
	return total
}

// Summarize computes summary metrics over consolidated records
func Summarize(records []entities.ConsolidatedRecord) Summary {
	summary := Summary{
		DefectRate:      decimal.Zero,
		TopLines:        []LineDefects{},
		TrendingDefects: []DefectTrend{},
		ShippedLots:     []ShippedLot{},
	}

	var tallies []*lineTally
	byLine := make(map[string]*lineTally)

	for i := range records {
		rec := &records[i]
		summary.TotalDefects += rec.DefectCount
		if !rec.TraceabilityOnly {
			summary.TotalInspections += len(rec.Inspections)
		}

		if len(rec.DefectTypes) > 0 {
			key := rec.LineKey()
			tally, ok := byLine[key]
			if !ok {
				tally = &lineTally{line: key, counts: make(map[string]int)}
				byLine[key] = tally
				tallies = append(tallies, tally)
			}
			for _, d := range rec.DefectTypes {
				tally.add(d)
			}
		}

		if rec.IsShipped() {
			summary.ShippedLots = append(summary.ShippedLots, ShippedLot{
				Lot:      rec.Lot,
				ShipDate: rec.Shipping.ShipDate,
			})
		}
	}

	if summary.TotalInspections > 0 {
		summary.DefectRate = decimal.NewFromInt(int64(summary.TotalDefects)).
			Div(decimal.NewFromInt(int64(summary.TotalInspections))).
			Round(4)
	}

	summary.TopLines = topLines(tallies)
	summary.TrendingDefects = trending(tallies, TrendingLimit)
	return summary
}

// topLines orders lines by total defects, descending. Ties keep first-seen order.
func topLines(tallies []*lineTally) []LineDefects {
	lines := make([]LineDefects, 0, len(tallies))
	for _, tally := range tallies {
		byType := make(map[string]int, len(tally.counts))
		for k, v := range tally.counts {
			byType[k] = v
		}
		lines = append(lines, LineDefects{
			Line:         tally.line,
			TotalDefects: tally.total(),
			ByType:       byType,
		})
	}
	slices.SortStableFunc(lines, func(a, b LineDefects) int {
		return b.TotalDefects - a.TotalDefects
	})
	return lines
}

// trending ranks defect types by overall frequency. Ties keep the order in
// which types were first encountered walking lines, then types within a line.
func trending(tallies []*lineTally, limit int) []DefectTrend {
	var order []string
	counts := make(map[string]int)
	for _, tally := range tallies {
		for _, d := range tally.order {
			if _, ok := counts[d]; !ok {
				order = append(order, d)
			}
			counts[d] += tally.counts[d]
		}
	}

	trends := make([]DefectTrend, 0, len(order))
	for _, d := range order {
		trends = append(trends, DefectTrend{DefectType: d, Count: counts[d]})
	}
	slices.SortStableFunc(trends, func(a, b DefectTrend) int {
		return b.Count - a.Count
	})
	if len(trends) > limit {
		trends = trends[:limit]
	}
	return trends
}

// HighSeverityShipped lists shipped lots with a high or critical severity
func HighSeverityShipped(records []entities.ConsolidatedRecord) []HighSeverityShipment {
	out := make([]HighSeverityShipment, 0)
	for i := range records {
		rec := &records[i]
		if !rec.HasSeverity("high", "critical") || !rec.IsShipped() {
			continue
		}
		out = append(out, HighSeverityShipment{
			Lot:        rec.Lot,
			Severities: slices.Clone(rec.Severities),
			Shipping:   *rec.Shipping,
		})
	}
	return out
}

package reporting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

// ShippedStatus selects records by their shipped state
type ShippedStatus int

const (
	ShippedAny ShippedStatus = iota
	ShippedOnly
	NotShipped
)

// String method for ShippedStatus enum
func (s ShippedStatus) String() string {
	switch s {
	case ShippedAny:
		return "All"
	case ShippedOnly:
		return "Shipped"
	case NotShipped:
		return "Not Shipped"
	default:
		return "Unknown"
	}
}

// ParseShippedStatus accepts all, shipped or not-shipped in any case
func ParseShippedStatus(s string) (ShippedStatus, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-")) {
	case "", "all", "any":
		return ShippedAny, nil
	case "shipped":
		return ShippedOnly, nil
	case "not-shipped", "unshipped":
		return NotShipped, nil
	default:
		return ShippedAny, fmt.Errorf("invalid shipped status: %s (expected: all, shipped, or not-shipped)", s)
	}
}

// Criteria narrows a consolidated record set. Zero-valued criteria match everything.
type Criteria struct {
	// From and To bound the production date inclusively. Both must be set for
	// the range to apply; records without a production date then never match.
	From *entities.Date
	To   *entities.Date

	// Lines matches line numbers; a missing line matches entities.UnknownLine
	Lines       []string
	Severities  []string
	DefectTypes []string
	Shipped     ShippedStatus

	// ExcludeIncomplete drops traceability records and records without a production date
	ExcludeIncomplete bool
}

// Matches reports whether a record satisfies every criterion
func (c Criteria) Matches(rec *entities.ConsolidatedRecord) bool {
	if c.ExcludeIncomplete && (rec.TraceabilityOnly || rec.ProductionDate == nil) {
		return false
	}

	if c.From != nil && c.To != nil {
		if rec.ProductionDate == nil {
			return false
		}
		if rec.ProductionDate.Before(*c.From) || rec.ProductionDate.After(*c.To) {
			return false
		}
	}

	if len(c.Lines) > 0 && !slices.Contains(c.Lines, rec.LineKey()) {
		return false
	}

	if len(c.Severities) > 0 && !containsAny(rec.Severities, c.Severities) {
		return false
	}

	if len(c.DefectTypes) > 0 && !containsAny(rec.DefectTypes, c.DefectTypes) {
		return false
	}

	switch c.Shipped {
	case ShippedOnly:
		return rec.IsShipped()
	case NotShipped:
		return !rec.IsShipped()
	}

	return true
}

// Filter returns the records matching the criteria, preserving order
func Filter(records []entities.ConsolidatedRecord, c Criteria) []entities.ConsolidatedRecord {
	out := make([]entities.ConsolidatedRecord, 0, len(records))
	for i := range records {
		if c.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

func containsAny(values, wanted []string) bool {
	for _, v := range values {
		if slices.Contains(wanted, v) {
			return true
		}
	}
	return false
}

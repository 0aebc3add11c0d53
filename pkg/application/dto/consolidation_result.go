package dto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vsinha/lotrecon/pkg/application/services/consolidation"
	"github.com/vsinha/lotrecon/pkg/application/services/reporting"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

// SourceRows bundles the raw rows of the three sources for one run
type SourceRows struct {
	Production []entities.Row `json:"production"`
	Quality    []entities.Row `json:"quality"`
	Shipping   []entities.Row `json:"shipping"`
}

// Fingerprint hashes the rows in order. Row order matters to duplicate
// reduction, so reordered input yields a different fingerprint.
func (s SourceRows) Fingerprint() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode source rows: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}

// ConsolidationResult contains the complete output of a consolidation run
type ConsolidationResult struct {
	Records             []entities.ConsolidatedRecord    `json:"consolidated"`
	Flags               []entities.Flag                  `json:"flags"`
	Summary             reporting.Summary                `json:"summary"`
	HighSeverityShipped []reporting.HighSeverityShipment `json:"high_severity_shipped"`
	Stats               consolidation.IndexStats         `json:"stats"`
	Fingerprint         string                           `json:"fingerprint,omitempty"`
	GeneratedAt         time.Time                        `json:"generated_at"`
}

// FlagCounts tallies flags per issue type
func (r *ConsolidationResult) FlagCounts() map[entities.IssueType]int {
	counts := make(map[entities.IssueType]int, len(entities.AllIssueTypes))
	for _, f := range r.Flags {
		counts[f.Issue]++
	}
	return counts
}

// Filtered returns a copy narrowed to the records matching c, with the
// summary and high-severity list recomputed over them. Flags and stats
// describe the whole run and are kept as is.
func (r *ConsolidationResult) Filtered(c reporting.Criteria) *ConsolidationResult {
	out := *r
	out.Records = reporting.Filter(r.Records, c)
	out.Summary = reporting.Summarize(out.Records)
	out.HighSeverityShipped = reporting.HighSeverityShipped(out.Records)
	return &out
}

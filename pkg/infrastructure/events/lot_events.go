package events

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/lotrecon/pkg/application/dto"
	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

// Lot event types
const (
	LotFlaggedEvent      = "lot.flagged"
	LotConsolidatedEvent = "lot.consolidated"
	RunCompletedEvent    = "run.completed"
)

// RunStreamID is the stream that carries run-level events
const RunStreamID = "run"

// LotFlaggedData is the payload of a lot.flagged event
type LotFlaggedData struct {
	Lot      entities.LotKey    `json:"lot"`
	Issue    entities.IssueType `json:"issue"`
	Details  []string           `json:"details,omitempty"`
	Excluded bool               `json:"excluded"`
}

// LotConsolidatedData is the payload of a lot.consolidated event
type LotConsolidatedData struct {
	Lot              entities.LotKey `json:"lot"`
	DefectCount      int             `json:"defect_count"`
	Shipped          bool            `json:"shipped"`
	TraceabilityOnly bool            `json:"traceability_only"`
}

// RunCompletedData is the payload of a run.completed event
type RunCompletedData struct {
	Fingerprint  string    `json:"fingerprint"`
	Records      int       `json:"records"`
	Flags        int       `json:"flags"`
	TotalDefects int       `json:"total_defects"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// LotStreamID names the per-lot event stream
func LotStreamID(lot entities.LotKey) string {
	return "lot-" + string(lot)
}

func NewLotFlaggedEvent(flag entities.Flag) Event {
	return NewEvent(LotFlaggedEvent, LotStreamID(flag.Lot), LotFlaggedData{
		Lot:      flag.Lot,
		Issue:    flag.Issue,
		Details:  flag.Details,
		Excluded: flag.Excludes(),
	})
}

func NewLotConsolidatedEvent(rec entities.ConsolidatedRecord) Event {
	return NewEvent(LotConsolidatedEvent, LotStreamID(rec.Lot), LotConsolidatedData{
		Lot:              rec.Lot,
		DefectCount:      rec.DefectCount,
		Shipped:          rec.IsShipped(),
		TraceabilityOnly: rec.TraceabilityOnly,
	})
}

func NewRunCompletedEvent(result *dto.ConsolidationResult) Event {
	return NewEvent(RunCompletedEvent, RunStreamID, RunCompletedData{
		Fingerprint:  result.Fingerprint,
		Records:      len(result.Records),
		Flags:        len(result.Flags),
		TotalDefects: result.Summary.TotalDefects,
		GeneratedAt:  result.GeneratedAt,
	})
}

// RecordResult appends the events of one run: consolidated lots, then flags
// in emission order, then run.completed
func RecordResult(ctx context.Context, store EventStore, result *dto.ConsolidationResult) error {
	for _, rec := range result.Records {
		event := NewLotConsolidatedEvent(rec)
		if err := store.AppendEvent(ctx, event.StreamID(), event); err != nil {
			return fmt.Errorf("failed to record consolidated lot %s: %w", rec.Lot, err)
		}
	}

	for _, flag := range result.Flags {
		event := NewLotFlaggedEvent(flag)
		if err := store.AppendEvent(ctx, event.StreamID(), event); err != nil {
			return fmt.Errorf("failed to record flag %s for lot %s: %w", flag.Issue, flag.Lot, err)
		}
	}

	event := NewRunCompletedEvent(result)
	if err := store.AppendEvent(ctx, event.StreamID(), event); err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}
	return nil
}

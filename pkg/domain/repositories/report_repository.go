package repositories

import (
	"context"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

// ReportRepository persists consolidation output for downstream consumers
type ReportRepository interface {
	// SaveRecords upserts records keyed by lot
	SaveRecords(ctx context.Context, records []entities.ConsolidatedRecord) error
	// ReplaceFlags replaces the stored flag list with the given one
	ReplaceFlags(ctx context.Context, flags []entities.Flag) error
}

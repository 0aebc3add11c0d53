package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
)

// ReportRepository keeps the latest consolidated records and flags in memory
type ReportRepository struct {
	mu      sync.RWMutex
	records map[entities.LotKey]entities.ConsolidatedRecord
	flags   []entities.Flag
}

// NewReportRepository creates a new in-memory report repository
func NewReportRepository() *ReportRepository {
	return &ReportRepository{
		records: make(map[entities.LotKey]entities.ConsolidatedRecord),
	}
}

// Verify interface compliance
var _ repositories.ReportRepository = (*ReportRepository)(nil)

// SaveRecords upserts each record by lot
func (r *ReportRepository) SaveRecords(ctx context.Context, records []entities.ConsolidatedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		r.records[rec.Lot] = rec
	}
	return nil
}

// ReplaceFlags swaps the stored flag list
func (r *ReportRepository) ReplaceFlags(ctx context.Context, flags []entities.Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flags = slices.Clone(flags)
	return nil
}

// GetRecord returns the stored record for a lot
func (r *ReportRepository) GetRecord(lot entities.LotKey) (entities.ConsolidatedRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[lot]
	return rec, ok
}

// GetAllRecords returns stored records sorted by lot
func (r *ReportRepository) GetAllRecords() []entities.ConsolidatedRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]entities.ConsolidatedRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b entities.ConsolidatedRecord) int {
		return cmp.Compare(a.Lot, b.Lot)
	})
	return records
}

// GetFlags returns the stored flags
func (r *ReportRepository) GetFlags() []entities.Flag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.flags)
}

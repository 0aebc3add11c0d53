package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
)

const (
	upsertRecordSQL = `INSERT INTO report_consolidated (lot_id, line_no, production_date, shift_leader, payload)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (lot_id) DO UPDATE SET
	line_no = EXCLUDED.line_no,
	production_date = EXCLUDED.production_date,
	shift_leader = EXCLUDED.shift_leader,
	payload = EXCLUDED.payload,
	updated_at = now()`

	deleteFlagsSQL = `DELETE FROM report_flags`

	insertFlagSQL = `INSERT INTO report_flags (position, lot_id, issue, details) VALUES ($1, $2, $3, $4)`
)

// ReportRepository writes consolidated records and flags to reporting tables
type ReportRepository struct {
	client *Client
}

var _ repositories.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository(client *Client) *ReportRepository {
	return &ReportRepository{client: client}
}

// recordPayload is the jsonb column content of report_consolidated
type recordPayload struct {
	DefectCount      int                   `json:"defect_count"`
	DefectTypes      []string              `json:"defect_types"`
	Severities       []string              `json:"severities"`
	Inspections      []entities.Inspection `json:"inspections"`
	Shipping         *entities.Shipment    `json:"shipping"`
	TraceabilityOnly bool                  `json:"traceability_only"`
}

func encodePayload(rec *entities.ConsolidatedRecord) ([]byte, error) {
	data, err := json.Marshal(recordPayload{
		DefectCount:      rec.DefectCount,
		DefectTypes:      rec.DefectTypes,
		Severities:       rec.Severities,
		Inspections:      rec.Inspections,
		Shipping:         rec.Shipping,
		TraceabilityOnly: rec.TraceabilityOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding payload for lot %s: %w", rec.Lot, err)
	}
	return data, nil
}

// recordArgs returns the upsert arguments for one record
func recordArgs(rec *entities.ConsolidatedRecord) ([]any, error) {
	payload, err := encodePayload(rec)
	if err != nil {
		return nil, err
	}

	var productionDate sql.NullTime
	if rec.ProductionDate != nil {
		productionDate = sql.NullTime{Time: rec.ProductionDate.Time(), Valid: true}
	}

	return []any{
		string(rec.Lot),
		nullString(rec.LineNo),
		productionDate,
		nullString(rec.ShiftLeader),
		payload,
	}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// SaveRecords upserts all records in one transaction
func (r *ReportRepository) SaveRecords(ctx context.Context, records []entities.ConsolidatedRecord) error {
	return r.client.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertRecordSQL)
		if err != nil {
			return fmt.Errorf("preparing record upsert: %w", err)
		}
		defer stmt.Close()

		for i := range records {
			args, err := recordArgs(&records[i])
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("upserting lot %s: %w", records[i].Lot, err)
			}
		}
		return nil
	})
}

// ReplaceFlags swaps the stored flag list for flags, keeping emission order
func (r *ReportRepository) ReplaceFlags(ctx context.Context, flags []entities.Flag) error {
	return r.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteFlagsSQL); err != nil {
			return fmt.Errorf("clearing flags: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, insertFlagSQL)
		if err != nil {
			return fmt.Errorf("preparing flag insert: %w", err)
		}
		defer stmt.Close()

		for i, f := range flags {
			if _, err := stmt.ExecContext(ctx, flagArgs(i, f)...); err != nil {
				return fmt.Errorf("inserting flag %s for lot %s: %w", f.Issue, f.Lot, err)
			}
		}
		return nil
	})
}

func flagArgs(position int, f entities.Flag) []any {
	details := f.Details
	if details == nil {
		details = []string{}
	}
	return []any{position, string(f.Lot), string(f.Issue), pq.Array(details)}
}

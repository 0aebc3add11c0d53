package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
)

// Column aliases are quoted so they reach the row with the field names the
// consolidation engine resolves.
const (
	productionQuery = `SELECT lot_number AS "Lot_ID", line_number AS "Line_No",
	production_date AS "Production_Date", shift_leader AS "Shift_Leader"
FROM production_logs
ORDER BY production_log_id`

	qualityQuery = `SELECT qi.quality_inspection_id AS "Inspection_ID", pl.lot_number AS "Lot_ID",
	qi.defect_type AS "Defect_Type", qi.defect_severity AS "Defect_Severity",
	qi.is_defective AS "is_defective", qi.inspection_count AS "inspection_count"
FROM quality_inspections qi
JOIN production_logs pl ON qi.production_log_id = pl.production_log_id
ORDER BY qi.quality_inspection_id`

	shippingQuery = `SELECT pl.lot_number AS "Lot_ID", sm.ship_date AS "Ship_Date",
	sm.destination AS "Destination", sm.is_shipped AS "is_shipped", sm.is_cancelled AS "is_cancelled"
FROM shipping_manifests sm
JOIN production_logs pl ON sm.production_log_id = pl.production_log_id
ORDER BY sm.shipping_manifest_id`
)

// SourceRepository reads the three record streams from the plant database
type SourceRepository struct {
	db *sql.DB
}

var _ repositories.SourceRepository = (*SourceRepository)(nil)

func NewSourceRepository(client *Client) *SourceRepository {
	return &SourceRepository{db: client.DB}
}

func queryFor(source repositories.Source) (string, error) {
	switch source {
	case repositories.SourceProduction:
		return productionQuery, nil
	case repositories.SourceQuality:
		return qualityQuery, nil
	case repositories.SourceShipping:
		return shippingQuery, nil
	default:
		return "", fmt.Errorf("%w: %s", repositories.ErrUnknownSource, source)
	}
}

func (r *SourceRepository) GetRows(ctx context.Context, source repositories.Source) ([]entities.Row, error) {
	query, err := queryFor(source)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s rows: %v", repositories.ErrSourceUnavailable, source, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", source, err)
	}

	var result []entities.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s row %d: %w", source, len(result)+1, err)
		}
		result = append(result, rowFromValues(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating %s rows: %v", repositories.ErrSourceUnavailable, source, err)
	}
	return result, nil
}

// rowFromValues maps scanned values onto column names. Text arrives from
// lib/pq as []byte and is converted to string; NULL columns are left absent.
func rowFromValues(columns []string, values []any) entities.Row {
	row := make(entities.Row, len(columns))
	for i, col := range columns {
		switch v := values[i].(type) {
		case nil:
			continue
		case []byte:
			row[col] = string(v)
		default:
			row[col] = v
		}
	}
	return row
}

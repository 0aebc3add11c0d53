package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
)

// SourceRepository provides in-memory raw row storage for the three sources
type SourceRepository struct {
	rows map[repositories.Source][]entities.Row
}

// NewSourceRepository creates a new in-memory source repository
func NewSourceRepository() *SourceRepository {
	return &SourceRepository{
		rows: make(map[repositories.Source][]entities.Row, len(repositories.AllSources)),
	}
}

// Verify interface compliance
var _ repositories.SourceRepository = (*SourceRepository)(nil)

// LoadRows appends rows to a source, preserving their order
func (r *SourceRepository) LoadRows(source repositories.Source, rows []entities.Row) error {
	if err := validateSource(source); err != nil {
		return err
	}
	for _, row := range rows {
		r.rows[source] = append(r.rows[source], row.Clone())
	}
	return nil
}

// GetRows returns a copy of the rows stored for a source
func (r *SourceRepository) GetRows(ctx context.Context, source repositories.Source) ([]entities.Row, error) {
	if err := validateSource(source); err != nil {
		return nil, err
	}
	stored := r.rows[source]
	rows := make([]entities.Row, 0, len(stored))
	for _, row := range stored {
		rows = append(rows, row.Clone())
	}
	return rows, nil
}

func validateSource(source repositories.Source) error {
	for _, s := range repositories.AllSources {
		if s == source {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", repositories.ErrUnknownSource, source)
}

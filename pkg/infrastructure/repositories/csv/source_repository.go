package csv

import (
	"context"
	"fmt"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
	"github.com/vsinha/lotrecon/pkg/domain/repositories"
)

// SourceRepository serves each source from its own CSV file
type SourceRepository struct {
	loader *Loader
	files  map[repositories.Source]string
}

var _ repositories.SourceRepository = (*SourceRepository)(nil)

func NewSourceRepository(production, quality, shipping string) *SourceRepository {
	return &SourceRepository{
		loader: NewLoader(),
		files: map[repositories.Source]string{
			repositories.SourceProduction: production,
			repositories.SourceQuality:    quality,
			repositories.SourceShipping:   shipping,
		},
	}
}

func (r *SourceRepository) GetRows(ctx context.Context, source repositories.Source) ([]entities.Row, error) {
	filename, ok := r.files[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrUnknownSource, source)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := r.loader.LoadRows(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repositories.ErrSourceUnavailable, source, err)
	}
	return rows, nil
}

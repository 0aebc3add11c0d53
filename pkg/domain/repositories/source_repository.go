package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/lotrecon/pkg/domain/entities"
)

var (
	// ErrSourceUnavailable is returned when a backing store cannot be read
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrUnknownSource is returned for a source name outside production, quality and shipping
	ErrUnknownSource = errors.New("unknown source")
)

// Source names one of the three record streams
type Source string

const (
	SourceProduction Source = "production"
	SourceQuality    Source = "quality"
	SourceShipping   Source = "shipping"
)

// AllSources lists the sources in pipeline order
var AllSources = []Source{SourceProduction, SourceQuality, SourceShipping}

// SourceRepository provides access to the raw rows of each record stream
type SourceRepository interface {
	GetRows(ctx context.Context, source Source) ([]entities.Row, error)
}

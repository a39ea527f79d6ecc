package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

type DataSource interface {
	// Initialize initializes the data source with the given data path (parquet or csv)
	Initialize(path string) error
	// ReadAll reads the bars in time order and yields them to the caller
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// Count returns the number of bars in the data source
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources
	Close() error
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}

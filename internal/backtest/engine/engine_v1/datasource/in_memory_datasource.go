package datasource

import (
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/moznion/go-optional"
)

// InMemoryDataSource serves bars that are already loaded, for tests and callers that
// fetched data themselves.
type InMemoryDataSource struct {
	bars []types.Bar
}

func NewInMemoryDataSource(bars []types.Bar) *InMemoryDataSource {
	return &InMemoryDataSource{bars: bars}
}

// Initialize is a no-op: the bars were given at construction.
func (ds *InMemoryDataSource) Initialize(_ string) error {
	return nil
}

func (ds *InMemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range ds.bars {
			if !inRange(bar.Time, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

func (ds *InMemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	for _, bar := range ds.bars {
		if inRange(bar.Time, start, end) {
			count++
		}
	}

	return count, nil
}

func (ds *InMemoryDataSource) Close() error {
	return nil
}

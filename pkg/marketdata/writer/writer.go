package writer

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// MarketDataWriter persists downloaded bars to a file the backtest engine can read.
type MarketDataWriter interface {
	// Initialize opens the staging database and prepares the insert statement.
	Initialize() error
	// Write stages a single bar.
	Write(bar types.Bar) error
	// Finalize commits the staged bars and exports them to the output path.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

package mocks

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// DataGenerator generates synthetic bars for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed uint64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewPCG(seed, seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// Symbol is the traded symbol (e.g., "R_100", "frxEURUSD")
	Symbol string
	// StartTime is the beginning of the series
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per bar)
	Volatility float64
	// Trend is the drift over the whole series (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "R_100",
		StartTime:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          10000,
		InitialPrice:   1000.0,
		Volatility:     0.002, // 0.2% per bar
		Trend:          0.0,   // neutral
		VolumeBase:     0,
		VolumeVariance: 0,
	}
}

// Generate creates bars following a geometric Brownian motion.
// Every bar satisfies low <= min(open, close) <= max(open, close) <= high.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime
	timeframe := int64(config.Interval / time.Second)

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		priceChange := config.Volatility * g.rng.NormFloat64()
		drift := config.Trend / float64(config.Count) // Distribute trend across bars

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99 // Prevent negative prices
		}

		// High and low extend the open-close range
		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := 0.0
		if config.VolumeBase > 0 {
			volume = math.Max(config.VolumeBase*(1.0+(g.rng.Float64()*2-1)*config.VolumeVariance), 0)
		}

		bars[i] = types.Bar{
			Symbol:           config.Symbol,
			TimeframeSeconds: timeframe,
			Time:             currentTime,
			Open:             roundToDecimals(open, 4),
			High:             roundToDecimals(high, 4),
			Low:              roundToDecimals(low, 4),
			Close:            roundToDecimals(close, 4),
			Volume:           roundToDecimals(volume, 2),
		}

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return bars
}

// GenerateBars generates count bars with the default settings and a fixed seed.
func GenerateBars(symbol string, count int) []types.Bar {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Symbol = symbol
	config.Count = count

	return gen.Generate(config)
}

// BarsFromCloses builds one-minute bars from close prices. Each bar opens at the
// previous close and its range is the open-close range widened by spread.
func BarsFromCloses(symbol string, spread float64, closes ...float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	start := DefaultConfig().StartTime

	for i, closePrice := range closes {
		open := closePrice
		if i > 0 {
			open = closes[i-1]
		}

		bars[i] = types.Bar{
			Symbol:           symbol,
			TimeframeSeconds: 60,
			Time:             start.Add(time.Duration(i) * time.Minute),
			Open:             open,
			High:             math.Max(open, closePrice) + spread,
			Low:              math.Min(open, closePrice) - spread,
			Close:            closePrice,
			Volume:           0,
		}
	}

	return bars
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}

package types

import "time"

// Bar is a single OHLCV candle. Time is the start of the period.
type Bar struct {
	Symbol           string    `json:"symbol" yaml:"symbol"`
	TimeframeSeconds int64     `json:"timeframe_seconds" yaml:"timeframe_seconds"`
	Time             time.Time `json:"time" yaml:"time"`
	Open             float64   `json:"open" yaml:"open"`
	High             float64   `json:"high" yaml:"high"`
	Low              float64   `json:"low" yaml:"low"`
	Close            float64   `json:"close" yaml:"close"`
	Volume           float64   `json:"volume" yaml:"volume"`
}

// Timestamp returns the bar start as unix seconds.
func (b Bar) Timestamp() int64 {
	return b.Time.Unix()
}

// Timeframe returns the bar period as a duration.
func (b Bar) Timeframe() time.Duration {
	return time.Duration(b.TimeframeSeconds) * time.Second
}

// IsValid checks the OHLC ordering invariant low <= min(open,close) <= max(open,close) <= high.
func (b Bar) IsValid() bool {
	return b.Low <= min(b.Open, b.Close) && max(b.Open, b.Close) <= b.High
}

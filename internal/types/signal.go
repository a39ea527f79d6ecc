package types

import "time"

// Direction is the side of a trade. CALL is long, PUT is short.
type Direction string

const (
	DirectionCall Direction = "CALL"
	DirectionPut  Direction = "PUT"
)

// Sign returns +1 for CALL and -1 for PUT.
func (d Direction) Sign() float64 {
	if d == DirectionPut {
		return -1
	}

	return 1
}

// EntryMode controls which price a signal is filled at.
type EntryMode string

const (
	// EntryModeSignalPrice fills at the signal price on the signal bar.
	EntryModeSignalPrice EntryMode = "signal_price"
	// EntryModeNextOpen fills at the open of the bar after the signal bar.
	EntryModeNextOpen EntryMode = "next_open"
)

// EntrySignal is produced by a strategy's entry check and consumed by the trade executor.
type EntrySignal struct {
	Direction Direction `json:"direction" yaml:"direction"`
	// Time of the bar that produced the signal
	Time time.Time `json:"time" yaml:"time"`
	// Price is the intended fill. Zero means the close of the signal bar.
	Price     float64   `json:"price" yaml:"price"`
	EntryMode EntryMode `json:"entry_mode" yaml:"entry_mode"`
	// Confidence in [0, 1]
	Confidence float64           `json:"confidence" yaml:"confidence"`
	Reason     string            `json:"reason" yaml:"reason"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

package types

// CandleEvent records one replayed bar and the indicators known at that bar.
type CandleEvent struct {
	Index      int               `json:"index"`
	Bar        Bar               `json:"bar"`
	Indicators IndicatorSnapshot `json:"indicators,omitempty"`
}

// SignalEvent records an entry signal and whether it produced a trade.
type SignalEvent struct {
	Index    int         `json:"index"`
	Signal   EntrySignal `json:"signal"`
	Accepted bool        `json:"accepted"`
	TradeID  string      `json:"trade_id,omitempty"`
}

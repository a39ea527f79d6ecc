package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199). Fatal, surfaced before a run starts.
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidTakeProfit    ErrorCode = 102
	ErrCodeInvalidStopLoss      ErrorCode = 103
	ErrCodeInvalidStake         ErrorCode = 104
	ErrCodeInvalidTimeframe     ErrorCode = 105
	ErrCodeInvalidType          ErrorCode = 106
	ErrCodeInvalidPeriod        ErrorCode = 107
	ErrCodeMissingParameter     ErrorCode = 108
	ErrCodeInvalidVersion       ErrorCode = 109
	ErrCodeInvalidMultiplier    ErrorCode = 110
	ErrCodeInvalidRatio         ErrorCode = 111

	// Data errors (200-299). Raised by the bar source before data reaches the engine.
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeInvalidMarketData     ErrorCode = 203
	ErrCodeNonMonotonicTimestamp ErrorCode = 204
	ErrCodeInsufficientData      ErrorCode = 205

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Strategy errors (400-499)
	ErrCodeStrategyNotLoaded    ErrorCode = 400
	ErrCodeStrategyConfigError  ErrorCode = 401
	ErrCodeStrategyRuntimeError ErrorCode = 402
	ErrCodeStrategyNotFound     ErrorCode = 403
	ErrCodeVersionMismatch      ErrorCode = 404

	// Backtest errors (600-699)
	ErrCodeBacktestNotInitialized ErrorCode = 600
	ErrCodeBacktestConfigError    ErrorCode = 601
	ErrCodeBacktestNoStrategies   ErrorCode = 602
	ErrCodeBacktestNoDataPaths    ErrorCode = 603
	ErrCodeBacktestNoResultsDir   ErrorCode = 604
	ErrCodeBacktestNoDatasource   ErrorCode = 605
	ErrCodeBacktestCancelled      ErrorCode = 606
	ErrCodeResultWriteFailed      ErrorCode = 607

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeInvalidTimespan       ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)

// IsConfiguration reports whether the code belongs to the configuration range.
func (c ErrorCode) IsConfiguration() bool {
	return c >= 100 && c < 200
}

// IsRunSetup reports whether the code rejects a single run before its first bar:
// engine configuration, indicator requirements, strategy parameters and engine version
// constraints.
func (c ErrorCode) IsRunSetup() bool {
	switch c {
	case ErrCodeIndicatorNotFound, ErrCodeStrategyConfigError, ErrCodeVersionMismatch, ErrCodeBacktestConfigError:
		return true
	default:
		return c.IsConfiguration()
	}
}

// IsData reports whether the code belongs to the data range.
func (c ErrorCode) IsData() bool {
	return c >= 200 && c < 300
}

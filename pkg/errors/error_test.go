package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestMessages() {
	cause := errors.New("no such file")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "new",
			err:  New(ErrCodeBacktestNotInitialized, "engine is not initialized"),
			want: "[600] engine is not initialized",
		},
		{
			name: "newf",
			err:  Newf(ErrCodeInvalidStopLoss, "stop loss %.1f%% must be below take profit %.1f%%", 2.0, 1.0),
			want: "[103] stop loss 2.0% must be below take profit 1.0%",
		},
		{
			name: "wrap",
			err:  Wrap(ErrCodeDataSourceUnavailable, "failed to open R_100.parquet", cause),
			want: "[201] failed to open R_100.parquet: no such file",
		},
		{
			name: "wrapf",
			err:  Wrapf(ErrCodeResultWriteFailed, cause, "failed to write %s", "stats.yaml"),
			want: "[607] failed to write stats.yaml: no such file",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.want, tc.err.Error())
		})
	}
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeResultWriteFailed, "failed to export trades", cause)

	suite.ErrorIs(err, cause)
	suite.Nil(New(ErrCodeBacktestCancelled, "cancelled").Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	inner := New(ErrCodeNonMonotonicTimestamp, "bar 3 is not after bar 2")

	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "coded", err: inner, want: ErrCodeNonMonotonicTimestamp},
		// the outermost code wins
		{name: "wrapped in a coded error", err: Wrap(ErrCodeBacktestConfigError, "config_1", inner), want: ErrCodeBacktestConfigError},
		{name: "wrapped with fmt", err: fmt.Errorf("grid point period=5: %w", inner), want: ErrCodeNonMonotonicTimestamp},
		{name: "warm-up", err: NewInsufficientDataErrorf(14, 3, "R_100", "rsi needs 14 bars"), want: ErrCodeInsufficientData},
		{name: "plain", err: errors.New("plain"), want: ErrCodeUnknown},
		{name: "nil", err: nil, want: ErrCodeUnknown},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.want, GetCode(tc.err))
			suite.True(HasCode(tc.err, tc.want))
		})
	}
}

func (suite *ErrorTestSuite) TestAs() {
	err := fmt.Errorf("run: %w", New(ErrCodeStrategyRuntimeError, "strategy failed"))

	var coded *Error
	suite.Require().True(As(err, &coded))
	suite.Equal(ErrCodeStrategyRuntimeError, coded.Code)
}

func (suite *ErrorTestSuite) TestCategories() {
	tests := []struct {
		code          ErrorCode
		configuration bool
		runSetup      bool
		data          bool
	}{
		{code: ErrCodeInvalidTakeProfit, configuration: true, runSetup: true},
		{code: ErrCodeInvalidRatio, configuration: true, runSetup: true},
		{code: ErrCodeIndicatorNotFound, runSetup: true},
		{code: ErrCodeStrategyConfigError, runSetup: true},
		{code: ErrCodeVersionMismatch, runSetup: true},
		{code: ErrCodeBacktestConfigError, runSetup: true},
		{code: ErrCodeInvalidMarketData, data: true},
		{code: ErrCodeInsufficientData, data: true},
		{code: ErrCodeIndicatorCalculation},
		{code: ErrCodeStrategyRuntimeError},
		{code: ErrCodeBacktestCancelled},
		{code: ErrCodeMarketDataFetchFailed},
	}

	for _, tc := range tests {
		suite.Run(fmt.Sprintf("code %d", tc.code), func() {
			err := fmt.Errorf("backtest: %w", New(tc.code, "failed"))

			suite.Equal(tc.configuration, IsConfigurationError(err))
			suite.Equal(tc.runSetup, IsRunSetupError(err))
			suite.Equal(tc.data, IsDataError(err))
		})
	}

	suite.False(IsConfigurationError(errors.New("plain")))
	suite.False(IsRunSetupError(nil))
}

func (suite *ErrorTestSuite) TestCodeRanges() {
	ranges := []struct {
		first ErrorCode
		last  ErrorCode
	}{
		{first: ErrCodeInvalidParameter, last: ErrCodeInvalidRatio},
		{first: ErrCodeDataNotFound, last: ErrCodeInsufficientData},
		{first: ErrCodeIndicatorNotFound, last: ErrCodeIndicatorCalculation},
		{first: ErrCodeStrategyNotLoaded, last: ErrCodeVersionMismatch},
		{first: ErrCodeBacktestNotInitialized, last: ErrCodeResultWriteFailed},
		{first: ErrCodeMarketDataFetchFailed, last: ErrCodeInvalidProvider},
	}

	for _, r := range ranges {
		suite.Equal(r.first/100, r.last/100, "codes %d and %d", r.first, r.last)
		suite.Zero(r.first % 100)
	}
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(20, 5, "R_100", "%s needs %d bars, got %d", "bollinger", 20, 5)

	suite.Equal("bollinger needs 20 bars, got 5", err.Error())
	suite.Equal(20, err.Required)
	suite.Equal(5, err.Actual)
	suite.Equal("R_100", err.Symbol)

	suite.True(IsInsufficientDataError(err))
	suite.True(IsInsufficientDataError(fmt.Errorf("bar 4: %w", err)))
	suite.True(IsDataError(err))
	suite.False(IsRunSetupError(err))

	suite.False(IsInsufficientDataError(New(ErrCodeInsufficientData, "coded, not a warm-up")))
	suite.False(IsInsufficientDataError(errors.New("plain")))
	suite.False(IsInsufficientDataError(nil))
}

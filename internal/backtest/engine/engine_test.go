package engine

import (
	"errors"
	"testing"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)
		return nil
	})

	for i := 1; i <= 5; i++ {
		err := callback(i, 5)
		suite.NoError(err)
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackAbort() {
	stop := errors.New("stop")
	callback := OnProcessDataCallback(func(current int, total int) error {
		if current >= total/2 {
			return stop
		}

		return nil
	})

	suite.NoError(callback(1, 10))
	suite.ErrorIs(callback(5, 10), stop)
}

func (suite *EngineTestSuite) TestLifecycleCallbacksDefaultToNil() {
	callbacks := LifecycleCallbacks{}

	suite.Nil(callbacks.OnBacktestStart)
	suite.Nil(callbacks.OnBacktestEnd)
	suite.Nil(callbacks.OnRunStart)
	suite.Nil(callbacks.OnRunEnd)
	suite.Nil(callbacks.OnProcessData)
}

func (suite *EngineTestSuite) TestOnRunEndReceivesResult() {
	var received *types.BacktestResult

	onRunEnd := OnRunEndCallback(func(_ int, _ string, _ int, _ string, _ string, result *types.BacktestResult) {
		received = result
	})
	callbacks := LifecycleCallbacks{OnRunEnd: &onRunEnd}

	(*callbacks.OnRunEnd)(0, "default", 0, "R_100.csv", "results/rsi_reversal", &types.BacktestResult{ID: "run"})

	suite.Require().NotNil(received)
	suite.Equal("run", received.ID)
}

package marketdata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ProgressReporterTestSuite struct {
	suite.Suite
}

func TestProgressReporterSuite(t *testing.T) {
	suite.Run(t, new(ProgressReporterTestSuite))
}

func (suite *ProgressReporterTestSuite) TestReportsRatio() {
	var out bytes.Buffer

	report := NewProgressReporter(&out, "BTCUSDT")

	suite.NotPanics(func() {
		report(0, 0, "ignored")
		report(500, 1000, "Downloading BTCUSDT")
		report(2000, 1000, "overshoot is clamped")
		report(-5, 1000, "undershoot is clamped")
	})
	suite.NotEmpty(out.String())
}

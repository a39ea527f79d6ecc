package marketdata

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata/provider"
	"github.com/polygon-io/client-go/rest/models"
)

// Timespan is a bar interval in exchange notation, e.g. "5m" or "1d".
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

type interval struct {
	multiplier int
	unit       models.Timespan
}

var intervals = map[Timespan]interval{
	TimespanOneSecond:      {1, models.Second},
	TimespanOneMinute:      {1, models.Minute},
	TimespanThreeMinutes:   {3, models.Minute},
	TimespanFiveMinutes:    {5, models.Minute},
	TimespanFifteenMinutes: {15, models.Minute},
	TimespanThirtyMinutes:  {30, models.Minute},
	TimespanOneHour:        {1, models.Hour},
	TimespanTwoHours:       {2, models.Hour},
	TimespanFourHours:      {4, models.Hour},
	TimespanSixHours:       {6, models.Hour},
	TimespanEightHours:     {8, models.Hour},
	TimespanTwelveHours:    {12, models.Hour},
	TimespanOneDay:         {1, models.Day},
	TimespanThreeDays:      {3, models.Day},
	TimespanOneWeek:        {1, models.Week},
	TimespanOneMonth:       {1, models.Month},
}

// ParseTimespan validates an interval string.
func ParseTimespan(value string) (Timespan, error) {
	timespan := Timespan(value)
	if _, ok := intervals[timespan]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval: %s", value)
	}

	return timespan, nil
}

// Multiplier returns the unit count of the interval. Unknown intervals count as 1.
func (t Timespan) Multiplier() int {
	if iv, ok := intervals[t]; ok {
		return iv.multiplier
	}

	return 1
}

// Timespan returns the interval unit. Unknown intervals fall back to a day.
func (t Timespan) Timespan() models.Timespan {
	if iv, ok := intervals[t]; ok {
		return iv.unit
	}

	return models.Day
}

// Seconds returns the bar length, or 0 for calendar months.
func (t Timespan) Seconds() int64 {
	return provider.TimeframeSeconds(t.Timespan(), t.Multiplier())
}

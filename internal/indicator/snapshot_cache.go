package indicator

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
)

type configuredIndicator struct {
	key       string
	indicator Indicator
}

// SnapshotCache holds the indicator snapshot of every bar of a series.
// Snapshot i is computed from bars [0..i] only: each indicator receives a slice whose
// capacity ends at i, so it cannot read later bars.
type SnapshotCache struct {
	snapshots []types.IndicatorSnapshot
}

// NewSnapshotCache configures one indicator per requirement and computes all snapshots.
// Unknown indicators, bad params and duplicate keys are configuration errors.
func NewSnapshotCache(bars []types.Bar, registry IndicatorRegistry, requirements []types.IndicatorRequirement) (*SnapshotCache, error) {
	configured := make([]configuredIndicator, 0, len(requirements))
	keys := make(map[string]struct{})

	for _, requirement := range requirements {
		indicator, err := registry.Configure(requirement)
		if err != nil {
			return nil, err
		}

		key := requirement.SnapshotKey()
		for _, suffix := range indicator.Outputs() {
			if _, exists := keys[key+suffix]; exists {
				return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "duplicate indicator key %s", key+suffix)
			}

			keys[key+suffix] = struct{}{}
		}

		configured = append(configured, configuredIndicator{key: key, indicator: indicator})
	}

	snapshots := make([]types.IndicatorSnapshot, len(bars))

	for i := range bars {
		snapshot := make(types.IndicatorSnapshot, len(keys))

		for _, c := range configured {
			start := max(0, i+1-c.indicator.Lookback())

			values, err := c.indicator.Calculate(bars[start : i+1 : i+1])
			if err != nil && !errors.IsInsufficientDataError(err) {
				return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err,
					"failed to calculate %s at bar %d", c.key, i)
			}

			// warm-up leaves values nil, so every output is unavailable
			for _, suffix := range c.indicator.Outputs() {
				value, ok := values[suffix]
				if !ok {
					value = types.UnavailableValue()
				}

				snapshot[c.key+suffix] = value
			}
		}

		snapshots[i] = snapshot
	}

	return &SnapshotCache{snapshots: snapshots}, nil
}

// Len returns the number of snapshots, one per bar.
func (c *SnapshotCache) Len() int {
	return len(c.snapshots)
}

// Snapshot returns the snapshot at index i. Out of range indices yield an empty snapshot.
func (c *SnapshotCache) Snapshot(i int) types.IndicatorSnapshot {
	if i < 0 || i >= len(c.snapshots) {
		return types.IndicatorSnapshot{}
	}

	return c.snapshots[i]
}

// Snapshots returns the snapshots from index from to the end of the series.
func (c *SnapshotCache) Snapshots(from int) []types.IndicatorSnapshot {
	if from >= len(c.snapshots) {
		return nil
	}

	return c.snapshots[max(0, from):]
}

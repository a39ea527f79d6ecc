package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
)

// getResultFolder returns <results>/<strategy>/<config>/[<start>_<end>]/<data file>.
func getResultFolder(resultsFolder string, strategyName string, configName string, dataPath string, config BacktestEngineV1Config) string {
	// Create base folders for strategy and config
	strategyFolder := filepath.Join(resultsFolder, strategyName)
	configFolder := filepath.Join(strategyFolder, strings.TrimSuffix(filepath.Base(configName), filepath.Ext(configName)))

	// Create data folder with time range if specified
	var dataFolder string

	if config.StartTime.IsSome() || config.EndTime.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if config.StartTime.IsSome() {
			startTimeStr = config.StartTime.Unwrap().Format("20060102")
		}

		if config.EndTime.IsSome() {
			endTimeStr = config.EndTime.Unwrap().Format("20060102")
		}

		timeRange := fmt.Sprintf("%s_%s", startTimeStr, endTimeStr)
		dataFolder = filepath.Join(configFolder, timeRange)
	} else {
		dataFolder = configFolder
	}

	// Add data file name as the final folder
	dataFileName := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))

	return filepath.Join(dataFolder, dataFileName)
}

// mergeRequirements combines the strategy's indicators with the configured ones.
// Identical requirements are kept once; two different requirements sharing a key are
// rejected.
func mergeRequirements(groups ...[]types.IndicatorRequirement) ([]types.IndicatorRequirement, error) {
	merged := make([]types.IndicatorRequirement, 0)
	byKey := make(map[string]types.IndicatorRequirement)

	for _, group := range groups {
		for _, requirement := range group {
			key := requirement.SnapshotKey()

			existing, ok := byKey[key]
			if !ok {
				byKey[key] = requirement
				merged = append(merged, requirement)

				continue
			}

			if !sameRequirement(existing, requirement) {
				return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
					"indicator key %s requested with different settings", key)
			}
		}
	}

	return merged, nil
}

func sameRequirement(a, b types.IndicatorRequirement) bool {
	if a.Type != b.Type || len(a.Params) != len(b.Params) {
		return false
	}

	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}

	return true
}

package version

import (
	"testing"

	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStrategyCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engineVersion string
		constraint    string
		code          errors.ErrorCode
	}{
		{name: "tilde match", engineVersion: "1.0.3", constraint: "~1.0"},
		{name: "range match", engineVersion: "v1.4.0", constraint: ">= 1.0.0, < 2.0.0"},
		{name: "caret match", engineVersion: "1.9.9", constraint: "^1.2"},
		{name: "prerelease engine", engineVersion: "1.2.0-rc.1", constraint: ">= 1.2.0"},
		{name: "build metadata", engineVersion: "1.2.0+build123", constraint: "1.2.x"},
		{name: "development build", engineVersion: "main", constraint: ">= 9.0.0"},
		{name: "no constraint", engineVersion: "1.0.0", constraint: ""},
		{name: "major too old", engineVersion: "1.4.0", constraint: ">= 2.0.0", code: errors.ErrCodeVersionMismatch},
		{name: "minor too new", engineVersion: "1.3.0", constraint: "~1.2", code: errors.ErrCodeVersionMismatch},
		{name: "invalid engine version", engineVersion: "not-a-version", constraint: "~1.0", code: errors.ErrCodeInvalidVersion},
		{name: "invalid constraint", engineVersion: "1.0.0", constraint: "abc >", code: errors.ErrCodeInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStrategyCompatibility(tt.engineVersion, tt.constraint)

			if tt.code == 0 {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
	assert.NoError(t, CheckStrategyCompatibility(GetVersion(), "~1.0"))
}

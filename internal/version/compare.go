package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
)

// CheckStrategyCompatibility checks the engine version against the semver constraint a
// strategy declares, for example "~1.0" or ">= 1.0.0, < 2.0.0".
//
// A development build ("main") or an empty constraint skips the check.
func CheckStrategyCompatibility(engineVersion, constraint string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	constraint = strings.TrimSpace(constraint)

	if engineVersion == "main" || constraint == "" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	requirement, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid version constraint '%s'", constraint)
	}

	// prerelease engine builds are checked as their release version
	release, err := engineSemver.SetPrerelease("")
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	if ok, reasons := requirement.Validate(&release); !ok {
		details := make([]string, len(reasons))
		for i, reason := range reasons {
			details[i] = reason.Error()
		}

		return errors.Newf(errors.ErrCodeVersionMismatch,
			"engine %s does not satisfy strategy requirement '%s': %s",
			engineSemver, constraint, strings.Join(details, "; "))
	}

	return nil
}

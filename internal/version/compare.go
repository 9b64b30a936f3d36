package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
)

// CheckConfigCompatibility checks whether a config file written for configVersion
// can be read by a build that supports supportedVersion.
//
// Compatibility Rules:
//   - An empty config version is treated as the supported version
//   - If either version is "main" (development build), the check is skipped
//   - Major and minor versions must match exactly
//   - Patch versions can differ (e.g., 0.3.0 reads 0.3.4)
func CheckConfigCompatibility(supportedVersion, configVersion string) error {
	supportedVersion = strings.TrimPrefix(supportedVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if configVersion == "" {
		return nil
	}

	if supportedVersion == "main" || configVersion == "main" {
		return nil
	}

	supported, err := semver.NewVersion(supportedVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid supported version '%s'", supportedVersion)
	}

	requested, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if supported.Major() != requested.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: pilot reads %d.x.x configs but the file is %d.x.x",
			supported.Major(), requested.Major())
	}

	if supported.Minor() != requested.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: pilot reads %d.%d.x configs but the file is %d.%d.x",
			supported.Major(), supported.Minor(), requested.Major(), requested.Minor())
	}

	return nil
}

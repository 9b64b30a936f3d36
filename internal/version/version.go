package version

// Version is the current version of argo-pilot.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-pilot/internal/version.Version=1.2.3"
// The value "main" indicates a development build.
var Version = "v0.3.0"

// ConfigVersion is the config file format this build reads.
const ConfigVersion = "0.3.0"

// GetVersion returns the current version of the binary.
func GetVersion() string {
	return Version
}

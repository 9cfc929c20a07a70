// Package version holds build metadata for the clinicbot binaries, set with
//
//	-ldflags "-X github.com/gaiapet/clinicbot/internal/version.Version=v1.2.0"
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as "<version> (<commit>, built <date>)".
func String() string {
	return Version + " (" + Commit + ", built " + Date + ")"
}

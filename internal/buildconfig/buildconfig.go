// Package buildconfig exposes build-time metadata injected via ldflags:
//
//	-X .../internal/buildconfig.version=v1.2.3
//	-X .../internal/buildconfig.commit=abc1234
//	-X .../internal/buildconfig.builtAt=2026-08-31T00:00:00Z
package buildconfig

var (
	version = "dev"
	commit  = "unknown"
	builtAt = "unknown"
)

func Version() string { return version }
func Commit() string  { return commit }
func BuiltAt() string { return builtAt }

// VersionInfo bundles the build metadata for the metrics endpoint.
func VersionInfo() map[string]string {
	return map[string]string{
		"version":  version,
		"commit":   commit,
		"built_at": builtAt,
	}
}

// Package version provides information about the build version of the engine.
package version

// BuildInfo holds version information about the engine build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'gpulens/internal/core/version.version=v0.0.1'
	// -X 'gpulens/internal/core/version.commit=abcd' -X 'gpulens/internal/core/version.date=2026-08-27'"
	return BuildInfo{
		Service: "gpulens",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// MatcherVersion stamps run artifacts so scored outputs can be traced back
// to the rule tables that produced them. Bump on any rule or threshold change
const MatcherVersion = "2026.08"

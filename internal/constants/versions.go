package constants

// Version information (injected at build time via -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// FullVersion returns the complete version string for startup logs.
func FullVersion() string {
	return Version + " (" + GitCommit + ") built at " + BuildTime
}

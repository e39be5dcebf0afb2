// Package buildinfo stores build-time metadata shared across packages.
package buildinfo

// Set via ldflags during build.
var (
	Version = "dev"
	Commit  = "none"
)

// UserAgent returns the User-Agent header value sent to the backend.
func UserAgent() string {
	return "twsdash/" + Version
}

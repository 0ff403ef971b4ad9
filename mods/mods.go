package mods

import "fmt"

// populated by -ldflags at build time
var (
	versionString  = "v0.0.0-dev"
	versionGitSHA  = ""
	buildTimestamp = ""
)

func DisplayVersion() string {
	return versionString
}

func VersionString() string {
	if versionGitSHA == "" {
		return versionString
	}
	return fmt.Sprintf("%s (%s %s)", versionString, versionGitSHA, buildTimestamp)
}

package version

import (
	"github.com/earthboundkid/versioninfo/v2"
)

// GetVersion returns the module version, or the short VCS revision for local builds
func GetVersion() string {
	return versioninfo.Short()
}

// GetFullVersion returns the version with the revision and dirty marker when known
func GetFullVersion() string {
	ver := versioninfo.Short()
	if versioninfo.Revision == "" || versioninfo.Revision == "unknown" {
		return ver
	}
	rev := versioninfo.Revision
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if versioninfo.DirtyBuild {
		rev += "-dirty"
	}
	return ver + " (commit: " + rev + ")"
}

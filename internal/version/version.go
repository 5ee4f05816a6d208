package version

import (
	"fmt"
	"runtime/debug"

	"github.com/larsks/gobot/tools"
)

// Version is set at link time with -ldflags "-X .../version.Version=...".
var Version = "dev"

// GetVersion describes the running binary: release, platform and, for
// builds from a git checkout, the revision it was built from.
func GetVersion(progName string) string {
	vs := fmt.Sprintf("%s version %s", progName, Version)

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return vs
	}

	bim := tools.BuildInfoMap(bi)
	vs = fmt.Sprintf("%s %s/%s", vs, bim["GOOS"], bim["GOARCH"])
	if bim["vcs"] == "git" {
		rev := bim["vcs.revision"]
		if len(rev) > 10 {
			rev = rev[:10]
		}
		vs = fmt.Sprintf("%s rev %s on %s", vs, rev, bim["vcs.time"])
	}
	if bim["vcs.modified"] == "true" {
		vs += " (modified)"
	}
	return vs
}

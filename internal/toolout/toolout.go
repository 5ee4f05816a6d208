// Package toolout extracts identifiers from the text printed by the
// macOS disk utilities. Each grammar below is a contract with one
// tool's English-locale output; when Apple changes the wording, this
// is the package that breaks.
package toolout

import (
	"regexp"

	"github.com/juju/errors"
)

// ErrPatternNotFound means the expected identifier was missing from the
// output or appeared more than once.
const ErrPatternNotFound = errors.ConstError("pattern not found in tool output")

var (
	// hdiutil attach -nomount ram://N prints the new whole-disk device:
	//   /dev/disk7          \n
	diskDevicePattern = regexp.MustCompile(`(?i)/dev/disk(\d+)`)

	// diskutil apfs createContainer and addVolume both finish with:
	//   Disk from APFS operation: disk7s1\n
	apfsOperationPattern = regexp.MustCompile(`Disk from APFS operation: (\S+)\n`)
)

// MountedPattern matches a line of mount(8) output for a /dev/disk
// device mounted on mountPath, e.g.
//
//	/dev/disk4 on /Users/me/Library/Developer/Xcode/DerivedData (hfs, local, nodev, nosuid, mounted by me)
func MountedPattern(mountPath string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)/dev/disk.*` + regexp.QuoteMeta(mountPath) + `.*mounted`)
}

// CountMounted returns how many lines of mount(8) output describe a
// disk mounted on mountPath.
func CountMounted(mountTable, mountPath string) int {
	return len(MountedPattern(mountPath).FindAllStringIndex(mountTable, -1))
}

// DiskNumber extracts N from the single /dev/diskN in hdiutil output.
func DiskNumber(output string) (string, error) {
	return single(diskDevicePattern, output, "disk device")
}

// APFSOperationDisk extracts the device identifier reported by a
// diskutil apfs subcommand.
func APFSOperationDisk(output string) (string, error) {
	return single(apfsOperationPattern, output, "APFS operation disk")
}

func single(re *regexp.Regexp, output, what string) (string, error) {
	matches := re.FindAllStringSubmatch(output, -1)
	if len(matches) != 1 {
		return "", errors.Annotatef(ErrPatternNotFound, "%s: %d matches for %q", what, len(matches), re.String())
	}
	return matches[0][1], nil
}

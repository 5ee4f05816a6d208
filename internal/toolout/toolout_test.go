package toolout

import (
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const derivedData = "/Users/alice/Library/Developer/Xcode/DerivedData"

func TestCountMounted(t *testing.T) {
	mounted := "/dev/disk4 on " + derivedData + " (hfs, local, nodev, nosuid, mounted by alice)"
	tests := []struct {
		name  string
		table []string
		want  int
	}{
		{
			name: "not mounted",
			table: []string{
				"/dev/disk3s1s1 on / (apfs, sealed, local, read-only, journaled)",
				"devfs on /dev (devfs, local, nobrowse)",
			},
			want: 0,
		},
		{
			name: "mounted once",
			table: []string{
				"/dev/disk3s1s1 on / (apfs, sealed, local, read-only, journaled)",
				mounted,
				"map auto_home on /System/Volumes/Data/home (autofs, automounted, nobrowse)",
			},
			want: 1,
		},
		{
			name:  "mounted twice",
			table: []string{mounted, strings.Replace(mounted, "disk4", "disk5", 1)},
			want:  2,
		},
		{
			name:  "case insensitive",
			table: []string{strings.ToUpper(mounted)},
			want:  1,
		},
		{
			name:  "other user",
			table: []string{strings.Replace(mounted, "alice", "bob", 1)},
			want:  0,
		},
		{
			name:  "no mounted keyword",
			table: []string{"/dev/disk4 on " + derivedData + " (hfs, local)"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountMounted(strings.Join(tt.table, "\n")+"\n", derivedData)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMountedPatternQuotesPath(t *testing.T) {
	re := MountedPattern("/Users/a.b/DerivedData")
	assert.False(t, re.MatchString("/dev/disk4 on /Users/aXb/DerivedData (hfs, mounted by a.b)"))
	assert.True(t, re.MatchString("/dev/disk4 on /Users/a.b/DerivedData (hfs, mounted by a.b)"))
}

func TestDiskNumber(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{"hdiutil", "/dev/disk7          \t\n", "7", false},
		{"prefixed", "created: /dev/disk7\n", "7", false},
		{"multi digit", "/dev/disk12\n", "12", false},
		{"missing", "hdiutil: attach failed - Resource busy\n", "", true},
		{"empty", "", "", true},
		{"ambiguous", "/dev/disk7\n/dev/disk8\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskNumber(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrPatternNotFound), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPFSOperationDisk(t *testing.T) {
	createContainer := strings.Join([]string{
		"Started APFS operation on disk7",
		"Creating a new empty APFS Container",
		"Unmounting Volumes",
		"Switching disk7 to APFS",
		"Disk from APFS operation: disk8",
		"Finished APFS operation on disk7",
	}, "\n") + "\n"

	got, err := APFSOperationDisk(createContainer)
	require.NoError(t, err)
	assert.Equal(t, "disk8", got)

	got, err = APFSOperationDisk("Disk from APFS operation: disk7s1\n")
	require.NoError(t, err)
	assert.Equal(t, "disk7s1", got)

	_, err = APFSOperationDisk("Error: -69624: Unable to add a new APFS Volume\n")
	assert.True(t, errors.Is(err, ErrPatternNotFound), "got %v", err)

	_, err = APFSOperationDisk("Disk from APFS operation: disk7s1\nDisk from APFS operation: disk7s2\n")
	assert.True(t, errors.Is(err, ErrPatternNotFound), "got %v", err)

	// The grammar requires the terminating newline.
	_, err = APFSOperationDisk("Disk from APFS operation: disk7s1")
	assert.True(t, errors.Is(err, ErrPatternNotFound), "got %v", err)
}

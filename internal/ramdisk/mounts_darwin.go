//go:build darwin

package ramdisk

import (
	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

type fsstatMountLister struct{}

// NewSystemMountLister reads the mount list with getfsstat(2).
func NewSystemMountLister() MountLister {
	return fsstatMountLister{}
}

func (fsstatMountLister) DevicesMountedOn(mountPoint string) ([]string, error) {
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil {
		return nil, errors.Annotate(err, "counting mounted filesystems")
	}

	buf := make([]unix.Statfs_t, n)
	n, err = unix.Getfsstat(buf, unix.MNT_NOWAIT)
	if err != nil {
		return nil, errors.Annotate(err, "listing mounted filesystems")
	}

	var devices []string
	for _, fs := range buf[:n] {
		if unix.ByteSliceToString(fs.Mntonname[:]) == mountPoint {
			devices = append(devices, unix.ByteSliceToString(fs.Mntfromname[:]))
		}
	}
	return devices, nil
}

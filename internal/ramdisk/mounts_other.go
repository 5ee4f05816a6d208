//go:build !darwin

package ramdisk

import (
	"github.com/juju/errors"
)

type unsupportedMountLister struct{}

// NewSystemMountLister returns a lister that always fails, which makes
// the existence check fall back to parsing mount(8).
func NewSystemMountLister() MountLister {
	return unsupportedMountLister{}
}

func (unsupportedMountLister) DevicesMountedOn(string) ([]string, error) {
	return nil, errors.NotSupportedf("getfsstat mount listing on this platform")
}

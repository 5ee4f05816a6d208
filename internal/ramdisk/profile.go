package ramdisk

import (
	"github.com/juju/errors"

	"github.com/larsks/ddram/internal/config"
)

// FilesystemProfile defines how a freshly allocated RAM disk is formatted
type FilesystemProfile interface {
	// Provision formats disk N and returns the device path to mount.
	Provision(m *Manager, disk string) (string, error)

	// Name returns the profile name
	Name() string
}

// NewProfile creates a filesystem profile for the configured filesystem
func NewProfile(fs config.Filesystem) (FilesystemProfile, error) {
	switch fs {
	case config.FilesystemHFS:
		return &HFSProfile{}, nil
	case config.FilesystemAPFS:
		return &APFSProfile{}, nil
	default:
		return nil, errors.NotValidf("filesystem %q (valid options: %s, %s)", fs, config.FilesystemHFS, config.FilesystemAPFS)
	}
}

package ramdisk

import (
	"github.com/juju/errors"

	"github.com/larsks/ddram/internal/toolout"
)

// HFSProfile formats the disk as journaled HFS+:
// - Runs newfs_hfs on the character-special device /dev/rdiskN
// - Mounts that same device
type HFSProfile struct{}

func (p *HFSProfile) Name() string {
	return "hfs"
}

func (p *HFSProfile) Provision(m *Manager, disk string) (string, error) {
	device := "/dev/rdisk" + disk
	if _, err := m.runChecked(m.cfg.Tools.NewfsHFS, "-v", m.cfg.VolumeLabel, device); err != nil {
		return "", errors.Annotatef(err, "formatting %s", device)
	}
	m.logger.Infof("formatted %s as HFS+ (%s)", device, m.cfg.VolumeLabel)
	return device, nil
}

// APFSProfile formats the disk as APFS:
// - Creates an APFS container on /dev/diskN
// - Adds an unmounted volume to the container
// - Mounts the volume device, /dev/diskNsM, not a raw device
type APFSProfile struct{}

func (p *APFSProfile) Name() string {
	return "apfs"
}

func (p *APFSProfile) Provision(m *Manager, disk string) (string, error) {
	diskutil := m.cfg.Tools.Diskutil

	result, err := m.runChecked(diskutil, "apfs", "createContainer", "/dev/disk"+disk)
	if err != nil {
		return "", errors.Annotatef(err, "creating APFS container on disk%s", disk)
	}
	container, err := toolout.APFSOperationDisk(result.Stdout)
	if err != nil {
		return "", errors.Annotatef(err, "creating APFS container on disk%s", disk)
	}
	m.logger.Infof("created APFS container %s", container)

	result, err = m.runChecked(diskutil, "apfs", "addVolume", container, "APFS", m.cfg.VolumeLabel, "-nomount")
	if err != nil {
		return "", errors.Annotatef(err, "adding APFS volume to %s", container)
	}
	volume, err := toolout.APFSOperationDisk(result.Stdout)
	if err != nil {
		return "", errors.Annotatef(err, "adding APFS volume to %s", container)
	}
	m.logger.Infof("added APFS volume %s (%s)", volume, m.cfg.VolumeLabel)

	return "/dev/" + volume, nil
}

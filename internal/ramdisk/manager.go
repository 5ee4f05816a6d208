package ramdisk

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/larsks/ddram/internal/config"
	"github.com/larsks/ddram/internal/runner"
	"github.com/larsks/ddram/internal/toolout"
)

type Option func(*Manager)

// WithMountLister lets the existence check consult the kernel's mount
// list before falling back to parsing mount(8).
func WithMountLister(l MountLister) Option {
	return func(m *Manager) { m.mounts = l }
}

func NewManager(cfg config.Config, r runner.Runner, opts ...Option) (*Manager, error) {
	profile, err := NewProfile(cfg.Filesystem)
	if err != nil {
		return nil, errors.Trace(err)
	}

	m := &Manager{
		cfg:     cfg,
		runner:  r,
		profile: profile,
		logger:  loggo.GetLogger("ddram.ramdisk"),
		state:   StateStart,
		path:    []State{StateStart},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Profile() FilesystemProfile {
	return m.profile
}

// Setup makes sure a RAM disk is mounted on the Derived Data path. It
// is a single attempt: nothing is retried and nothing is undone when a
// step fails, so a failure can leave an allocated or formatted disk
// behind. Running Setup again is safe once the disk is mounted.
func (m *Manager) Setup() (Outcome, error) {
	m.enter(StateCheckExisting)
	if m.Exists() {
		m.enter(StateAlreadyMounted)
		return m.outcome(), nil
	}

	m.enter(StateAllocating)
	disk, err := m.allocate()
	if err != nil {
		return m.fail(err)
	}

	m.enter(StateFormatting)
	device, err := m.profile.Provision(m, disk)
	if err != nil {
		return m.fail(err)
	}
	m.device = device

	m.enter(StateMounting)
	if err := m.mount(device); err != nil {
		return m.fail(err)
	}

	m.enter(StateIndexing)
	m.enableIndexing()

	m.enter(StateDone)
	return m.outcome(), nil
}

// Exists reports whether exactly one disk is mounted on the mount
// path. Any failure to find out counts as "not mounted". The kernel
// mount list compares paths exactly, so only a positive answer from it
// is final; otherwise the case-insensitive mount(8) grammar decides.
func (m *Manager) Exists() bool {
	if m.mounts != nil {
		devices, err := m.mounts.DevicesMountedOn(m.cfg.MountPath)
		if err == nil {
			var disks []string
			for _, dev := range devices {
				if strings.HasPrefix(dev, "/dev/disk") {
					disks = append(disks, dev)
				}
			}
			m.logger.Debugf("%d disk(s) mounted on %s", len(disks), m.cfg.MountPath)
			switch len(disks) {
			case 1:
				m.output = append(m.output, fmt.Sprintf("%s on %s\n", disks[0], m.cfg.MountPath))
				return true
			case 0:
				m.logger.Debugf("no exact match for %s, checking %s", m.cfg.MountPath, m.cfg.Tools.Mount)
			default:
				return false
			}
		} else {
			m.logger.Debugf("falling back to %s: %v", m.cfg.Tools.Mount, err)
		}
	}

	result, err := m.runner.RunCommand(m.cfg.Tools.Mount)
	if err != nil {
		m.logger.Warningf("listing mounts: %v", err)
		return false
	}
	if result.ExitStatus != 0 {
		m.logger.Warningf("%s exited with status %d", m.cfg.Tools.Mount, result.ExitStatus)
		return false
	}

	count := toolout.CountMounted(result.Stdout, m.cfg.MountPath)
	m.logger.Debugf("%d mount table line(s) match %s", count, m.cfg.MountPath)
	if count != 1 {
		return false
	}
	m.output = append(m.output, result.Stdout)
	return true
}

func (m *Manager) allocate() (string, error) {
	blocks := m.cfg.Blocks()
	m.logger.Infof("allocating %s RAM disk (%d blocks)", humanize.IBytes(m.cfg.CapacityBytes()), blocks)

	result, err := m.runChecked(m.cfg.Tools.Hdiutil, "attach", "-nomount", fmt.Sprintf("ram://%d", blocks))
	if err != nil {
		return "", errors.Annotate(err, "allocating RAM disk")
	}

	disk, err := toolout.DiskNumber(result.Stdout)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}
	m.logger.Infof("allocated /dev/disk%s", disk)
	return disk, nil
}

func (m *Manager) mount(device string) error {
	if _, err := m.runChecked(m.cfg.Tools.Mkdir, "-p", m.cfg.MountPath); err != nil {
		return errors.Annotatef(err, "creating mount point %s", m.cfg.MountPath)
	}

	if _, err := m.runChecked(m.cfg.Tools.Diskutil, "mount", "-mountPoint", m.cfg.MountPath, device); err != nil {
		return errors.Annotatef(err, "mounting %s on %s", device, m.cfg.MountPath)
	}
	m.logger.Infof("mounted %s on %s", device, m.cfg.MountPath)
	return nil
}

// enableIndexing turns Spotlight on for the mount point so Instruments
// can find symbols. Failures are logged and ignored.
func (m *Manager) enableIndexing() {
	result, err := m.run(m.cfg.Tools.Mdutil, m.cfg.MountPath, "-i", "on")
	if err != nil {
		m.logger.Warningf("enabling indexing on %s: %v", m.cfg.MountPath, err)
		return
	}
	if result.ExitStatus != 0 {
		m.logger.Warningf("enabling indexing on %s: %s exited with status %d", m.cfg.MountPath, m.cfg.Tools.Mdutil, result.ExitStatus)
	}
}

func (m *Manager) run(name string, args ...string) (runner.Result, error) {
	result, err := m.runner.RunCommand(name, args...)
	if err != nil {
		return result, errors.Trace(err)
	}
	if out := strings.TrimSpace(result.Stdout); out != "" {
		m.logger.Infof("%s: %s", name, out)
	}
	m.output = append(m.output, result.Stdout)
	return result, nil
}

// runChecked is run for tools whose exit status gates the next step.
func (m *Manager) runChecked(name string, args ...string) (runner.Result, error) {
	result, err := m.run(name, args...)
	if err != nil {
		return result, err
	}
	if result.ExitStatus != 0 {
		detail := strings.TrimSpace(result.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(result.Stdout)
		}
		return result, errors.Annotatef(ErrCommandFailed, "%s exited with status %d: %s", name, result.ExitStatus, detail)
	}
	return result, nil
}

func (m *Manager) enter(s State) {
	m.logger.Debugf("%s -> %s", m.state, s)
	m.state = s
	m.path = append(m.path, s)
}

func (m *Manager) fail(err error) (Outcome, error) {
	m.logger.Errorf("%s failed: %v", m.state, err)
	m.enter(StateFailed)
	return m.outcome(), err
}

func (m *Manager) outcome() Outcome {
	return Outcome{
		State:  m.state,
		Path:   append([]State(nil), m.path...),
		Device: m.device,
		Output: append([]string(nil), m.output...),
	}
}

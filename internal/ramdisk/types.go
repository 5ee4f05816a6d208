package ramdisk

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/larsks/ddram/internal/config"
	"github.com/larsks/ddram/internal/runner"
)

const (
	// ErrAllocationFailed means hdiutil did not report exactly one new disk.
	ErrAllocationFailed = errors.ConstError("RAM disk not created")
	// ErrCommandFailed means a tool the pipeline depends on exited non-zero.
	ErrCommandFailed = errors.ConstError("command failed")
)

type State int

const (
	StateStart State = iota
	StateCheckExisting
	StateAlreadyMounted
	StateAllocating
	StateFormatting
	StateMounting
	StateIndexing
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateStart:          "start",
	StateCheckExisting:  "check-existing",
	StateAlreadyMounted: "already-mounted",
	StateAllocating:     "allocating",
	StateFormatting:     "formatting",
	StateMounting:       "mounting",
	StateIndexing:       "indexing",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Outcome describes how a Setup run ended.
type Outcome struct {
	State State
	// Path lists every state entered, starting with StateStart.
	Path []State
	// Device is the path handed to the mount step, if one was reached.
	Device string
	// Output collects the stdout of each tool in the order they ran.
	Output []string
}

func (o Outcome) Succeeded() bool {
	return o.State == StateAlreadyMounted || o.State == StateDone
}

// MountLister answers the existence check without parsing mount(8).
type MountLister interface {
	// DevicesMountedOn returns the source device of every filesystem
	// mounted exactly at mountPoint.
	DevicesMountedOn(mountPoint string) ([]string, error)
}

type Manager struct {
	cfg     config.Config
	runner  runner.Runner
	profile FilesystemProfile
	mounts  MountLister
	logger  loggo.Logger

	state  State
	path   []State
	device string
	output []string
}

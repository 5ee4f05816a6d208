package runner

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("ddram.runner")

// Result is what a finished command left behind. A non-zero
// ExitStatus is not an error at this level; callers decide whether
// the tool's status matters to them.
type Result struct {
	Stdout     string
	Stderr     string
	ExitStatus int
}

// Runner executes an external program and waits for it to exit.
// There is no timeout: a hung tool blocks the caller.
type Runner interface {
	RunCommand(name string, args ...string) (Result, error)
}

type execRunner struct {
	decoder *Decoder
}

// NewExecRunner returns a Runner that decodes command output with the
// named IANA charset.
func NewExecRunner(encoding string) (Runner, error) {
	decoder, err := NewDecoder(encoding)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &execRunner{decoder: decoder}, nil
}

func (r *execRunner) RunCommand(name string, args ...string) (Result, error) {
	cmdString := strings.Join(append([]string{name}, args...), " ")
	logger.Debugf("running command: %s", cmdString)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := Result{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{ExitStatus: -1}, errors.Annotatef(err, "starting command %s", cmdString)
		}
	}
	result.ExitStatus = cmd.ProcessState.ExitCode()

	out, err := r.decoder.Decode(stdout.Bytes())
	if err != nil {
		return Result{ExitStatus: result.ExitStatus}, errors.Annotatef(err, "stdout of %s", cmdString)
	}
	result.Stdout = out

	// stderr is diagnostic only; keep what we can rather than failing.
	if errOut, err := r.decoder.Decode(stderr.Bytes()); err == nil {
		result.Stderr = errOut
	} else {
		result.Stderr = strings.ToValidUTF8(stderr.String(), "?")
	}

	logger.Tracef("stdout: %s", result.Stdout)
	logger.Tracef("stderr: %s", result.Stderr)
	logger.Debugf("exit status %d: %s", result.ExitStatus, cmdString)

	return result, nil
}

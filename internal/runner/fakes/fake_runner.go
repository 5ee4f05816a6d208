package fakes

import (
	"strings"

	"github.com/larsks/ddram/internal/runner"
)

// FakeRunner records every command it is asked to run and replays
// scripted results keyed by the full command line.
type FakeRunner struct {
	CommandResults map[string][]FakeResult
	RunCommands    [][]string
}

type FakeResult struct {
	Stdout     string
	Stderr     string
	ExitStatus int
	Error      error
	Sticky     bool // keep returning this result on every call
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		CommandResults: map[string][]FakeResult{},
	}
}

func (r *FakeRunner) RunCommand(name string, args ...string) (runner.Result, error) {
	runCmd := append([]string{name}, args...)
	r.RunCommands = append(r.RunCommands, runCmd)
	return r.resultFor(strings.Join(runCmd, " "))
}

func (r *FakeRunner) AddCmdResult(fullCmd string, result FakeResult) {
	if r.CommandResults == nil {
		r.CommandResults = map[string][]FakeResult{}
	}
	r.CommandResults[fullCmd] = append(r.CommandResults[fullCmd], result)
}

// Ran reports whether a command starting with prefix was run.
func (r *FakeRunner) Ran(prefix string) bool {
	for _, cmd := range r.RunCommands {
		if strings.HasPrefix(strings.Join(cmd, " "), prefix) {
			return true
		}
	}
	return false
}

// Commands returns the recorded command lines joined by spaces.
func (r *FakeRunner) Commands() []string {
	cmds := make([]string, 0, len(r.RunCommands))
	for _, cmd := range r.RunCommands {
		cmds = append(cmds, strings.Join(cmd, " "))
	}
	return cmds
}

func (r *FakeRunner) resultFor(fullCmd string) (runner.Result, error) {
	results, found := r.CommandResults[fullCmd]
	if !found || len(results) == 0 {
		return runner.Result{}, nil
	}

	result := results[0]
	if !result.Sticky && len(results) > 1 {
		r.CommandResults[fullCmd] = results[1:]
	} else if !result.Sticky {
		delete(r.CommandResults, fullCmd)
	}

	return runner.Result{
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ExitStatus: result.ExitStatus,
	}, result.Error
}

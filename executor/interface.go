package executor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrCommandFailed is wrapped by Run when a command exits non-zero and the
// caller did not ask for WarnOnly.
var ErrCommandFailed = errors.New("command exited with non-zero status")

// Options control how a single command is run.
type Options struct {
	// Quiet suppresses echoing the command's output to the console.
	Quiet bool
	// WarnOnly downgrades a non-zero exit from an error to a warning.
	WarnOnly bool
	// Sudo runs the command through sudo.
	Sudo bool
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

func (r *Result) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

func (r *Result) Failed() bool {
	return !r.Succeeded()
}

// Executor runs shell commands on one target.
type Executor interface {
	// Run executes command and waits for it to finish. Transport failures are
	// always returned as errors. A non-zero exit is an error wrapping
	// ErrCommandFailed unless opts.WarnOnly is set; the Result is returned
	// in both cases.
	Run(ctx context.Context, command string, opts Options) (*Result, error)
}

func finish(log *logrus.Entry, res *Result, runErr error, opts Options) (*Result, error) {
	if runErr != nil {
		return res, errors.Wrapf(runErr, "failed to run %q", res.Command)
	}
	if res.ExitCode == 0 {
		return res, nil
	}
	if opts.WarnOnly {
		log.Warnf("Command %q exited with code %d, continuing", res.Command, res.ExitCode)
		return res, nil
	}
	return res, errors.Wrapf(ErrCommandFailed, "%q exited with code %d: %s", res.Command, res.ExitCode, res.Stderr)
}

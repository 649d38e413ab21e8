package executor

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/logger"
)

type localExecutor struct {
	out io.Writer
}

// NewLocalExecutor runs commands on this machine through /bin/bash.
func NewLocalExecutor(out io.Writer) Executor {
	if out == nil {
		out = io.Discard
	}
	return &localExecutor{out: out}
}

func (l *localExecutor) Run(ctx context.Context, command string, opts Options) (*Result, error) {
	if opts.Sudo {
		command = connector.SudoPrefix(command)
	}
	log := logger.Log.ForHost(common.LocalHostname).WithField(common.CommandName, command)
	log.Debug("Running local command")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "/bin/bash", "-c", command)
	if opts.Quiet {
		cmd.Stdout, cmd.Stderr = &stdout, &stderr
	} else {
		cmd.Stdout = io.MultiWriter(l.out, &stdout)
		cmd.Stderr = io.MultiWriter(l.out, &stderr)
	}

	res := &Result{Command: command}
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		err = nil
	} else if err != nil {
		res.ExitCode = -1
	}
	res.Stdout, res.Stderr = stdout.String(), stderr.String()
	return finish(log, res, err, opts)
}

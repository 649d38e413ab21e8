package executor

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/logger"
)

type remoteExecutor struct {
	conn connector.Connection
	host string
	out  io.Writer
}

// NewRemoteExecutor runs commands over conn. Unless a command is quiet its
// output is echoed to out as it arrives.
func NewRemoteExecutor(conn connector.Connection, hostName string, out io.Writer) (Executor, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil for remote executor")
	}
	if out == nil {
		out = io.Discard
	}
	return &remoteExecutor{conn: conn, host: hostName, out: out}, nil
}

func (r *remoteExecutor) Run(ctx context.Context, command string, opts Options) (*Result, error) {
	if opts.Sudo {
		command = connector.SudoPrefix(command)
	}
	log := logger.Log.ForHost(r.host).WithField(common.CommandName, command)
	log.Debug("Running remote command")

	res := &Result{Command: command}
	var err error
	if opts.Quiet {
		var stdout, stderr []byte
		stdout, stderr, res.ExitCode, err = r.conn.Exec(ctx, command)
		res.Stdout, res.Stderr = string(stdout), string(stderr)
	} else {
		var stdout, stderr bytes.Buffer
		res.ExitCode, err = r.conn.PExec(ctx, command, nil,
			io.MultiWriter(r.out, &stdout), io.MultiWriter(r.out, &stderr))
		res.Stdout, res.Stderr = stdout.String(), stderr.String()
	}
	return finish(log, res, err, opts)
}

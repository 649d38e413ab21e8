package executor

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnection struct {
	stdout   string
	stderr   string
	exitCode int
	err      error

	execCalls  []string
	pexecCalls []string
}

func (f *fakeConnection) Exec(_ context.Context, cmd string) ([]byte, []byte, int, error) {
	f.execCalls = append(f.execCalls, cmd)
	return []byte(f.stdout), []byte(f.stderr), f.exitCode, f.err
}

func (f *fakeConnection) PExec(_ context.Context, cmd string, _ io.Reader, stdout io.Writer, stderr io.Writer) (int, error) {
	f.pexecCalls = append(f.pexecCalls, cmd)
	_, _ = io.WriteString(stdout, f.stdout)
	_, _ = io.WriteString(stderr, f.stderr)
	return f.exitCode, f.err
}

func (f *fakeConnection) Fetch(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConnection) Close() error { return nil }

func TestNewRemoteExecutor_NilConnection(t *testing.T) {
	_, err := NewRemoteExecutor(nil, "web1", nil)
	require.Error(t, err)
}

func TestRemoteExecutor_Run(t *testing.T) {
	tests := []struct {
		name        string
		conn        *fakeConnection
		opts        Options
		wantCommand string
		wantEcho    string
		wantExec    bool
		wantErrIs   error
		wantErr     bool
	}{
		{
			name:        "quiet success is not echoed",
			conn:        &fakeConnection{stdout: "Fedora release 30 (Thirty)\n"},
			opts:        Options{Quiet: true},
			wantCommand: "cat /etc/redhat-release",
			wantExec:    true,
		},
		{
			name:        "loud success echoes output",
			conn:        &fakeConnection{stdout: "Complete!\n", stderr: "warning\n"},
			wantCommand: "cat /etc/redhat-release",
			wantEcho:    "Complete!\nwarning\n",
		},
		{
			name:        "non-zero exit is an error",
			conn:        &fakeConnection{exitCode: 1, stderr: "No such file"},
			opts:        Options{Quiet: true},
			wantCommand: "cat /etc/redhat-release",
			wantExec:    true,
			wantErrIs:   ErrCommandFailed,
		},
		{
			name:        "warn only tolerates non-zero exit",
			conn:        &fakeConnection{exitCode: 1},
			opts:        Options{Quiet: true, WarnOnly: true},
			wantCommand: "cat /etc/redhat-release",
			wantExec:    true,
		},
		{
			name:        "warn only does not hide transport errors",
			conn:        &fakeConnection{exitCode: -1, err: errors.New("connection reset")},
			opts:        Options{Quiet: true, WarnOnly: true},
			wantCommand: "cat /etc/redhat-release",
			wantExec:    true,
			wantErr:     true,
		},
		{
			name:        "sudo wraps the command",
			conn:        &fakeConnection{},
			opts:        Options{Quiet: true, Sudo: true},
			wantCommand: `sudo -E /bin/bash -c 'cat /etc/redhat-release'`,
			wantExec:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var console bytes.Buffer
			ex, err := NewRemoteExecutor(tt.conn, "web1", &console)
			require.NoError(t, err)

			res, err := ex.Run(context.Background(), "cat /etc/redhat-release", tt.opts)
			require.NotNil(t, res)
			assert.Equal(t, tt.wantCommand, res.Command)

			switch {
			case tt.wantErrIs != nil:
				assert.ErrorIs(t, err, tt.wantErrIs)
			case tt.wantErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}

			if tt.wantExec {
				assert.Equal(t, []string{tt.wantCommand}, tt.conn.execCalls)
				assert.Empty(t, tt.conn.pexecCalls)
			} else {
				assert.Equal(t, []string{tt.wantCommand}, tt.conn.pexecCalls)
				assert.Empty(t, tt.conn.execCalls)
			}
			assert.Equal(t, tt.wantEcho, console.String())
			assert.Equal(t, tt.conn.stdout, res.Stdout)
			assert.Equal(t, tt.conn.exitCode, res.ExitCode)
		})
	}
}

func TestResult_SucceededFailed(t *testing.T) {
	assert.True(t, (&Result{ExitCode: 0}).Succeeded())
	assert.True(t, (&Result{ExitCode: 2}).Failed())

	var nilResult *Result
	assert.True(t, nilResult.Failed())
}

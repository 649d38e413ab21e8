package packages

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/executor"
	"github.com/mensylisir/xmadmin/session"
)

type recordingExecutor struct {
	err  error
	cmds []string
	opts []executor.Options
}

func (r *recordingExecutor) Run(_ context.Context, command string, opts executor.Options) (*executor.Result, error) {
	r.cmds = append(r.cmds, command)
	r.opts = append(r.opts, opts)
	return &executor.Result{Command: command}, r.err
}

func testSession(ex executor.Executor) *session.Session {
	h := connector.NewHost()
	h.SetName("node1")
	h.SetAddress("10.0.0.1")
	return session.New(h, ex, nil)
}

func TestUpdateCommand(t *testing.T) {
	assert.Equal(t, "yum update -y ", UpdateCommand())
	assert.Equal(t, "yum update -y httpd", UpdateCommand("httpd"))
	assert.Equal(t, "yum update -y httpd vim", UpdateCommand("httpd", "vim"))
}

func TestUpdatePassesOptions(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		opts  executor.Options
		want  string
	}{
		{name: "all packages", opts: executor.Options{}, want: "yum update -y "},
		{name: "named quiet", names: []string{"httpd", "vim"}, opts: executor.Options{Quiet: true}, want: "yum update -y httpd vim"},
		{name: "sudo warn only", names: []string{"kernel"}, opts: executor.Options{Sudo: true, WarnOnly: true}, want: "yum update -y kernel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &recordingExecutor{}
			err := NewUpdater().Update(context.Background(), testSession(ex), tt.opts, tt.names...)
			require.NoError(t, err)
			require.Len(t, ex.cmds, 1)
			assert.Equal(t, tt.want, ex.cmds[0])
			assert.Equal(t, tt.opts, ex.opts[0])
		})
	}
}

func TestUpdateReturnsExecutorError(t *testing.T) {
	ex := &recordingExecutor{err: executor.ErrCommandFailed}
	err := NewUpdater().Update(context.Background(), testSession(ex), executor.Options{}, "httpd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, executor.ErrCommandFailed))
}

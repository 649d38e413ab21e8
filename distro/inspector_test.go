package distro

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/executor"
	"github.com/mensylisir/xmadmin/session"
)

type fakeExecutor struct {
	stdout   string
	exitCode int
	err      error

	calls []string
	opts  []executor.Options
}

func (f *fakeExecutor) Run(_ context.Context, command string, opts executor.Options) (*executor.Result, error) {
	f.calls = append(f.calls, command)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return &executor.Result{Command: command, ExitCode: -1}, f.err
	}
	res := &executor.Result{Command: command, Stdout: f.stdout, ExitCode: f.exitCode}
	if f.exitCode != 0 {
		return res, executor.ErrCommandFailed
	}
	return res, nil
}

func newTestSession(name string, ex executor.Executor) (*session.Session, *bytes.Buffer) {
	h := connector.NewHost()
	h.SetName(name)
	h.SetAddress("10.0.0.1")
	out := &bytes.Buffer{}
	return session.New(h, ex, out), out
}

func TestInspectCachesPerHost(t *testing.T) {
	ex := &fakeExecutor{stdout: "Red Hat Enterprise Linux Server release 7.6 (Maipo)\n"}
	sess, out := newTestSession("node1", ex)
	in := NewInspector()

	first, err := in.Inspect(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, Info{Family: FamilyRHEL, Major: 7, Minor: intPtr(6)}, first)
	require.Len(t, ex.calls, 1)
	assert.Equal(t, "cat /etc/redhat-release", ex.calls[0])
	assert.True(t, ex.opts[0].Quiet)

	second, err := in.Inspect(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, ex.calls, 1, "second inspect must not touch the host")

	assert.Equal(t, "rhel 7 6\nrhel 7 6\n", out.String())
}

func TestInspectFedoraWithoutMinor(t *testing.T) {
	ex := &fakeExecutor{stdout: "Fedora release 30 (Thirty)\n"}
	sess, out := newTestSession("f30", ex)
	in := NewInspector()

	info, err := in.Inspect(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, FamilyFedora, info.Family)
	assert.Equal(t, 30, info.Major)
	assert.False(t, info.HasMinor())
	assert.Equal(t, "fedora 30 None\n", out.String())
}

func TestInspectSeparateHosts(t *testing.T) {
	rhel := &fakeExecutor{stdout: "Red Hat Enterprise Linux release 8.4 (Ootpa)\n"}
	fedora := &fakeExecutor{stdout: "Fedora release 38 (Thirty Eight)\n"}
	s1, _ := newTestSession("a", rhel)
	s2, _ := newTestSession("b", fedora)
	in := NewInspector()

	i1, err := in.Inspect(context.Background(), s1)
	require.NoError(t, err)
	i2, err := in.Inspect(context.Background(), s2)
	require.NoError(t, err)

	assert.Equal(t, FamilyRHEL, i1.Family)
	assert.Equal(t, FamilyFedora, i2.Family)
	assert.Len(t, rhel.calls, 1)
	assert.Len(t, fedora.calls, 1)
}

func TestInspectUnrecognizedIsNotCached(t *testing.T) {
	tests := []struct {
		name    string
		release string
	}{
		{name: "unknown family", release: "SomeOtherOS release 1.2 (x)\n"},
		{name: "no version", release: "Fedora release rawhide (Rawhide)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExecutor{stdout: tt.release}
			sess, out := newTestSession("odd", ex)
			in := NewInspector()

			_, err := in.Inspect(context.Background(), sess)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnrecognizedRelease))

			var inspectErr *Error
			require.True(t, errors.As(err, &inspectErr))
			assert.Equal(t, "odd", inspectErr.Host)
			assert.Equal(t, tt.release, inspectErr.Output)

			_, cached := in.Cached("odd")
			assert.False(t, cached)
			assert.Empty(t, out.String())

			_, err = in.Inspect(context.Background(), sess)
			require.Error(t, err)
			assert.Len(t, ex.calls, 2, "failed detection is retried on the next call")
		})
	}
}

func TestInspectReadFailure(t *testing.T) {
	tests := []struct {
		name string
		ex   *fakeExecutor
	}{
		{name: "non-zero exit", ex: &fakeExecutor{exitCode: 1}},
		{name: "transport error", ex: &fakeExecutor{err: errors.New("connection reset")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, _ := newTestSession("down", tt.ex)
			in := NewInspector()

			_, err := in.Inspect(context.Background(), sess)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrReleaseUnreadable))
			assert.False(t, errors.Is(err, ErrUnrecognizedRelease))

			_, cached := in.Cached("down")
			assert.False(t, cached)
		})
	}
}

func TestInspectForget(t *testing.T) {
	ex := &fakeExecutor{stdout: "Fedora release 30 (Thirty)\n"}
	sess, _ := newTestSession("node1", ex)
	in := NewInspector()

	_, err := in.Inspect(context.Background(), sess)
	require.NoError(t, err)
	in.Forget("node1")
	_, cached := in.Cached("node1")
	assert.False(t, cached)

	_, err = in.Inspect(context.Background(), sess)
	require.NoError(t, err)
	assert.Len(t, ex.calls, 2)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Host: "node1", Kind: ErrReleaseUnreadable}
	assert.Equal(t, "node1: failed to read /etc/redhat-release file", err.Error())

	err = &Error{Host: "node1", Kind: ErrUnrecognizedRelease, Err: errors.New("boom")}
	assert.Equal(t, "node1: was not possible to fetch distro information: boom", err.Error())
}

func TestErrorMessage_SentinelOnce(t *testing.T) {
	_, parseErr := Parse("SomeOtherOS release 1.2 (x)\n")
	require.Error(t, parseErr)

	err := &Error{Host: "node1", Kind: ErrUnrecognizedRelease, Err: parseErr}
	msg := err.Error()
	assert.Equal(t, 1, strings.Count(msg, ErrUnrecognizedRelease.Error()), msg)
	assert.True(t, strings.HasPrefix(msg, "node1: unknown distribution in"), msg)
	assert.ErrorIs(t, err, ErrUnrecognizedRelease)
}

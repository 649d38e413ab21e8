package connector

import (
	"context"
	"io"
	"time"

	"github.com/mensylisir/xmadmin/common"
)

// Connection is an open session-capable link to one host.
type Connection interface {
	// Exec runs cmd and collects its output. A non-zero exit status is
	// reported through exitCode, not err.
	Exec(ctx context.Context, cmd string) (stdout []byte, stderr []byte, exitCode int, err error)
	// PExec runs cmd and streams its output to the given writers.
	PExec(ctx context.Context, cmd string, stdin io.Reader, stdout io.Writer, stderr io.Writer) (exitCode int, err error)
	// Fetch opens a remote file for reading over SFTP.
	Fetch(ctx context.Context, remotePath string) (io.ReadCloser, error)
	Close() error
}

// Dialer opens connections to hosts.
type Dialer interface {
	Dial(ctx context.Context, host Host) (Connection, error)
}

type Host interface {
	GetName() string
	SetName(name string)
	GetAddress() string
	SetAddress(addr string)
	GetPort() int
	SetPort(port int)
	GetUser() string
	SetUser(user string)
	GetPassword() string
	SetPassword(password string)
	GetPrivateKeyPath() string
	SetPrivateKeyPath(path string)
	GetArch() common.Arch
	SetArch(arch common.Arch)
	GetTimeout() time.Duration
	SetTimeout(timeout time.Duration)
	GetBastion() string
	SetBastion(addr string)
	GetBastionPort() int
	SetBastionPort(port int)
	GetBastionUser() string
	SetBastionUser(user string)
	Validate() error
	ID() string
}

package session

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/executor"
	"github.com/mensylisir/xmadmin/logger"
)

// Session binds one target host to the executor that reaches it. Operations
// take a Session explicitly instead of reading a process-wide current host.
type Session struct {
	ID       string
	Host     connector.Host
	Executor executor.Executor
	// Out receives human-readable results. Defaults to os.Stdout.
	Out io.Writer
	// Conn is set for SSH sessions and gives access to SFTP.
	Conn connector.Connection
}

func New(host connector.Host, ex executor.Executor, out io.Writer) *Session {
	if out == nil {
		out = os.Stdout
	}
	return &Session{
		ID:       uuid.NewString(),
		Host:     host,
		Executor: ex,
		Out:      out,
	}
}

// HostID is the key used for per-host caches.
func (s *Session) HostID() string {
	return s.Host.ID()
}

// Log returns a logger entry tagged with the host and session.
func (s *Session) Log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		common.HostName:    s.Host.GetName(),
		common.SessionName: s.ID,
	})
}

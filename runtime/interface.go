package runtime

import (
	"context"

	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/session"
)

// Runtime owns the target hosts of one invocation and the connections to
// them.
type Runtime interface {
	// AllHosts returns the selected hosts in the order they were given.
	AllHosts() []connector.Host

	// Session returns the session for host, dialing on first use. Sessions
	// are cached by host ID until Close.
	Session(ctx context.Context, host connector.Host) (*session.Session, error)

	// Close closes every connection opened by Session.
	Close() error
}

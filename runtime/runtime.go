package runtime

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmadmin/cache"
	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/executor"
	"github.com/mensylisir/xmadmin/logger"
	"github.com/mensylisir/xmadmin/session"
	"github.com/mensylisir/xmadmin/util"
)

type baseRuntime struct {
	allHosts []connector.Host
	dialer   connector.Dialer
	out      io.Writer
	local    bool

	sessions *cache.Cache[string, *session.Session]
}

// Config for creating a new Runtime.
type Config struct {
	Hosts []connector.Host
	// Dialer opens SSH connections. Defaults to a dialer with no agent and
	// no host key checking.
	Dialer connector.Dialer
	// Out receives command output and results. Defaults to os.Stdout.
	Out io.Writer
	// Local runs every command on this machine instead of over SSH.
	Local bool
}

func NewRuntime(cfg Config) (Runtime, error) {
	if len(cfg.Hosts) == 0 {
		return nil, errors.New("runtime: at least one host is required")
	}
	seen := make(map[string]struct{}, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		if h == nil {
			return nil, errors.New("runtime: host cannot be nil")
		}
		if _, dup := seen[h.ID()]; dup {
			return nil, errors.Errorf("runtime: duplicate host %q", h.ID())
		}
		seen[h.ID()] = struct{}{}
	}
	if cfg.Dialer == nil {
		cfg.Dialer = connector.NewDialer(connector.DialOptions{})
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	hosts := make([]connector.Host, len(cfg.Hosts))
	copy(hosts, cfg.Hosts)
	return &baseRuntime{
		allHosts: hosts,
		dialer:   cfg.Dialer,
		out:      cfg.Out,
		local:    cfg.Local,
		sessions: cache.NewCache[string, *session.Session](),
	}, nil
}

func (r *baseRuntime) AllHosts() []connector.Host {
	listCopy := make([]connector.Host, len(r.allHosts))
	copy(listCopy, r.allHosts)
	return listCopy
}

func (r *baseRuntime) Session(ctx context.Context, host connector.Host) (*session.Session, error) {
	if host == nil {
		return nil, errors.New("runtime: host cannot be nil when opening a session")
	}
	hostID := host.ID()

	if sess, found := r.sessions.Get(hostID); found {
		return sess, nil
	}

	// Dial without holding the cache; a concurrent caller may win the race.
	sess, err := r.newSession(ctx, host)
	if err != nil {
		return nil, err
	}

	actual, loaded := r.sessions.GetOrSet(hostID, sess)
	if loaded {
		if sess.Conn != nil {
			_ = sess.Conn.Close()
		}
		return actual, nil
	}
	sess.Log().Debug("Session opened")
	return sess, nil
}

func (r *baseRuntime) newSession(ctx context.Context, host connector.Host) (*session.Session, error) {
	if r.local {
		return session.New(host, executor.NewLocalExecutor(r.out), r.out), nil
	}

	arch := util.FirstNonEmpty(string(host.GetArch()), string(common.ArchUnknown))
	logger.Log.DebugfNode(host.GetName(), "Connecting to %s:%d as %s (arch %s)", host.GetAddress(), host.GetPort(), host.GetUser(), arch)
	conn, err := r.dialer.Dial(ctx, host)
	if err != nil {
		return nil, errors.Wrapf(err, "runtime: failed to connect to host %s (%s)", host.GetName(), host.GetAddress())
	}
	ex, err := executor.NewRemoteExecutor(conn, host.GetName(), r.out)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	sess := session.New(host, ex, r.out)
	sess.Conn = conn
	return sess, nil
}

func (r *baseRuntime) Close() error {
	logger.Log.Debugf("Closing %d session(s)", r.sessions.Len())

	var errs []error
	r.sessions.Range(func(id string, sess *session.Session) bool {
		if sess.Conn != nil {
			if err := sess.Conn.Close(); err != nil {
				logger.Log.ErrorfNode(id, err, "Failed to close connection")
				errs = append(errs, errors.Wrap(err, id))
			}
		}
		return true
	})
	r.sessions.Clean()

	if err := util.CombineErrors(errs...); err != nil {
		return errors.Wrap(err, "runtime: failed to close connections")
	}
	return nil
}

var _ Runtime = (*baseRuntime)(nil)

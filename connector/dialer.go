package connector

import (
	"context"

	"github.com/pkg/errors"
)

// DialOptions holds the SSH settings that apply to every host.
type DialOptions struct {
	// AgentSocket is a socket path or an "env:SSH_AUTH_SOCK" style
	// reference. Empty disables agent authentication.
	AgentSocket string
	// KnownHostsFile enables host key checking when set.
	KnownHostsFile string
}

type sshDialer struct {
	opts DialOptions
}

// NewDialer returns a Dialer that connects over SSH.
func NewDialer(opts DialOptions) Dialer {
	return &sshDialer{opts: opts}
}

func (d *sshDialer) Dial(ctx context.Context, host Host) (Connection, error) {
	if host == nil {
		return nil, errors.New("host cannot be nil for Dial")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewConnection(ConfigFromHost(host, d.opts))
}

// ConfigFromHost builds the SSH connection settings for host.
func ConfigFromHost(host Host, opts DialOptions) Config {
	return Config{
		Username:       host.GetUser(),
		Password:       host.GetPassword(),
		Address:        host.GetAddress(),
		Port:           host.GetPort(),
		KeyFile:        host.GetPrivateKeyPath(),
		Timeout:        host.GetTimeout(),
		AgentSocket:    opts.AgentSocket,
		Bastion:        host.GetBastion(),
		BastionPort:    host.GetBastionPort(),
		BastionUser:    host.GetBastionUser(),
		KnownHostsFile: opts.KnownHostsFile,
	}
}

var _ Dialer = (*sshDialer)(nil)

package connector

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmadmin/common"
)

var _ Host = (*BaseHost)(nil)

// BaseHost is the default Host implementation, populated from the inventory
// file or from command-line flags.
type BaseHost struct {
	Name              string        `yaml:"name,omitempty" json:"name,omitempty"`
	Address           string        `yaml:"address,omitempty" json:"address,omitempty"`
	Port              int           `yaml:"port,omitempty" json:"port,omitempty"`
	User              string        `yaml:"user,omitempty" json:"user,omitempty"`
	Password          string        `yaml:"password,omitempty" json:"password,omitempty"`
	PrivateKeyPath    string        `yaml:"privateKeyPath,omitempty" json:"privateKeyPath,omitempty"`
	HostArch          common.Arch   `yaml:"arch,omitempty" json:"arch,omitempty"`
	ConnectionTimeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Bastion           string        `yaml:"bastion,omitempty" json:"bastion,omitempty"`
	BastionPort       int           `yaml:"bastionPort,omitempty" json:"bastionPort,omitempty"`
	BastionUser       string        `yaml:"bastionUser,omitempty" json:"bastionUser,omitempty"`
}

func NewHost() *BaseHost {
	return &BaseHost{
		Port:              common.DefaultSSHPort,
		ConnectionTimeout: 30 * time.Second,
	}
}

func (b *BaseHost) GetName() string {
	return b.Name
}

func (b *BaseHost) SetName(name string) {
	b.Name = name
}

func (b *BaseHost) GetAddress() string {
	return b.Address
}

func (b *BaseHost) SetAddress(addr string) {
	b.Address = addr
}

func (b *BaseHost) GetPort() int {
	return b.Port
}

func (b *BaseHost) SetPort(port int) {
	b.Port = port
}

func (b *BaseHost) GetUser() string {
	return b.User
}

func (b *BaseHost) SetUser(u string) {
	b.User = u
}

func (b *BaseHost) GetPassword() string {
	return b.Password
}

func (b *BaseHost) SetPassword(password string) {
	b.Password = password
}

func (b *BaseHost) GetPrivateKeyPath() string {
	return b.PrivateKeyPath
}

func (b *BaseHost) SetPrivateKeyPath(path string) {
	b.PrivateKeyPath = path
}

func (b *BaseHost) GetArch() common.Arch {
	return b.HostArch
}

func (b *BaseHost) SetArch(arch common.Arch) {
	b.HostArch = arch
}

func (b *BaseHost) GetTimeout() time.Duration {
	return b.ConnectionTimeout
}

func (b *BaseHost) SetTimeout(timeout time.Duration) {
	b.ConnectionTimeout = timeout
}

// GetBastion returns the jump host address, or "" for a direct connection.
func (b *BaseHost) GetBastion() string {
	return b.Bastion
}

func (b *BaseHost) SetBastion(addr string) {
	b.Bastion = addr
}

func (b *BaseHost) GetBastionPort() int {
	return b.BastionPort
}

func (b *BaseHost) SetBastionPort(port int) {
	b.BastionPort = port
}

func (b *BaseHost) GetBastionUser() string {
	return b.BastionUser
}

func (b *BaseHost) SetBastionUser(user string) {
	b.BastionUser = user
}

// Validate checks that the host can be dialed over SSH.
func (b *BaseHost) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("host name cannot be empty")
	}
	if strings.TrimSpace(b.Address) == "" {
		return errors.Errorf("host address cannot be empty for host '%s'", b.Name)
	}
	if b.Port <= 0 || b.Port > 65535 {
		return errors.Errorf("invalid port number %d for host '%s'", b.Port, b.Name)
	}
	if strings.TrimSpace(b.User) == "" {
		return errors.Errorf("user cannot be empty for host '%s'", b.Name)
	}
	hasPassword := strings.TrimSpace(b.Password) != ""
	hasPrivateKeyPath := strings.TrimSpace(b.PrivateKeyPath) != ""
	if !hasPassword && !hasPrivateKeyPath {
		return errors.Errorf("authentication method (password or privateKeyPath) must be provided for host '%s'", b.Name)
	}
	if b.BastionPort < 0 || b.BastionPort > 65535 {
		return errors.Errorf("invalid bastion port number %d for host '%s'", b.BastionPort, b.Name)
	}

	switch b.HostArch {
	case "", common.ArchAmd64, common.ArchX86_64, common.ArchArm64, common.ArchArm, common.ArchUnknown:
	default:
		return errors.Errorf("invalid architecture '%s' for host '%s'", b.HostArch, b.Name)
	}
	return nil
}

// ID identifies the host for caching: the name when set, address:port
// otherwise.
func (b *BaseHost) ID() string {
	if trimmedName := strings.TrimSpace(b.Name); trimmedName != "" {
		return trimmedName
	}
	if trimmedAddress := strings.TrimSpace(b.Address); trimmedAddress != "" && b.Port > 0 {
		return fmt.Sprintf("%s:%d", trimmedAddress, b.Port)
	}
	return fmt.Sprintf("unidentified-host-%p", b)
}

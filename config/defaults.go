package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/util"
)

const (
	DefaultUser    = "root"
	DefaultTimeout = 30
)

// DefaultPrivateKeyPath is ~/.ssh/id_rsa, or empty when the home directory
// is unknown.
func DefaultPrivateKeyPath() string {
	home, err := util.Home()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "id_rsa")
}

// SetDefaults fills unset inventory defaults.
func SetDefaults(spec *InventorySpec) {
	if spec.Defaults.User == "" {
		spec.Defaults.User = DefaultUser
	}
	if spec.Defaults.Port == 0 {
		spec.Defaults.Port = common.DefaultSSHPort
	}
	if spec.Defaults.Timeout == 0 {
		spec.Defaults.Timeout = DefaultTimeout
	}
}

// Hosts converts the inventory hosts into validated connector hosts, applying
// spec.defaults to unset fields. A host without a password or key path falls
// back to the default key path. Bastion settings are taken from the host when
// set, from spec.defaults otherwise.
func (i *Inventory) Hosts() ([]connector.Host, error) {
	SetDefaults(&i.Spec)
	d := i.Spec.Defaults

	hosts := make([]connector.Host, 0, len(i.Spec.Hosts))
	seen := make(map[string]struct{}, len(i.Spec.Hosts))
	for idx, hs := range i.Spec.Hosts {
		name := strings.TrimSpace(hs.Name)
		if name == "" {
			return nil, errors.Errorf("spec.hosts[%d]: name is required", idx)
		}
		if _, dup := seen[name]; dup {
			return nil, errors.Errorf("spec.hosts[%d]: duplicate host name '%s'", idx, name)
		}
		seen[name] = struct{}{}

		host := connector.NewHost()
		host.SetName(name)
		host.SetAddress(hs.Address)
		host.SetPort(firstNonZero(hs.Port, d.Port))
		host.SetUser(util.FirstNonEmpty(hs.User, d.User))
		host.SetPassword(hs.Password)
		host.SetPrivateKeyPath(hs.PrivateKeyPath)
		if hs.Password == "" && hs.PrivateKeyPath == "" {
			host.SetPrivateKeyPath(util.FirstNonEmpty(d.PrivateKeyPath, DefaultPrivateKeyPath()))
		}
		host.SetArch(common.Arch(hs.Arch))
		host.SetTimeout(time.Duration(d.Timeout) * time.Second)
		host.SetBastion(util.FirstNonEmpty(hs.Bastion, d.Bastion))
		host.SetBastionPort(firstNonZero(hs.BastionPort, d.BastionPort))
		host.SetBastionUser(util.FirstNonEmpty(hs.BastionUser, d.BastionUser))

		if err := host.Validate(); err != nil {
			return nil, errors.Wrapf(err, "host '%s' validation failed", name)
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

// Select returns the hosts whose names are listed, in the order given. An
// empty names list selects every host.
func Select(hosts []connector.Host, names []string) ([]connector.Host, error) {
	if len(names) == 0 {
		return hosts, nil
	}
	byName := make(map[string]connector.Host, len(hosts))
	for _, h := range hosts {
		byName[h.GetName()] = h
	}
	selected := make([]connector.Host, 0, len(names))
	var missing []string
	for _, n := range util.UniqueStrings(names) {
		h, ok := byName[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		selected = append(selected, h)
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("unknown host(s): %s", strings.Join(missing, ", "))
	}
	return selected, nil
}

func firstNonZero(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

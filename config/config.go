package config

// Inventory is the top-level configuration document listing the hosts that
// xmadmin can target.
type Inventory struct {
	APIVersion string        `yaml:"apiVersion"`
	Kind       string        `yaml:"kind"`
	Metadata   MetadataSpec  `yaml:"metadata"`
	Spec       InventorySpec `yaml:"spec"`
}

// MetadataSpec defines metadata for the inventory.
type MetadataSpec struct {
	Name string `yaml:"name"`
}

// InventorySpec holds the hosts and the connection defaults shared by them.
type InventorySpec struct {
	Defaults DefaultsSpec `yaml:"defaults,omitempty"`
	Hosts    []HostSpec   `yaml:"hosts"`
}

// DefaultsSpec values apply to every host that leaves the field unset.
type DefaultsSpec struct {
	User           string `yaml:"user,omitempty"`
	Port           int    `yaml:"port,omitempty"`
	PrivateKeyPath string `yaml:"privateKeyPath,omitempty"`
	// Timeout is the SSH connect timeout in seconds.
	Timeout     int    `yaml:"timeout,omitempty"`
	Bastion     string `yaml:"bastion,omitempty"`
	BastionPort int    `yaml:"bastionPort,omitempty"`
	BastionUser string `yaml:"bastionUser,omitempty"`
}

// HostSpec defines the configuration for a single host.
type HostSpec struct {
	Name           string `yaml:"name"`
	Address        string `yaml:"address"`
	Port           int    `yaml:"port,omitempty"`
	User           string `yaml:"user,omitempty"`
	Password       string `yaml:"password,omitempty"`
	PrivateKeyPath string `yaml:"privateKeyPath,omitempty"`
	Arch           string `yaml:"arch,omitempty"`
	// Bastion is the jump host used to reach Address.
	Bastion     string `yaml:"bastion,omitempty"`
	BastionPort int    `yaml:"bastionPort,omitempty"`
	BastionUser string `yaml:"bastionUser,omitempty"`
}

// HostNames returns the names of all hosts in declaration order.
func (i *Inventory) HostNames() []string {
	names := make([]string, 0, len(i.Spec.Hosts))
	for _, h := range i.Spec.Hosts {
		names = append(names, h.Name)
	}
	return names
}

package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const InventoryKind = "Inventory"

// Loader handles loading and initial parsing of an Inventory from a file.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads the inventory file and performs structural validation.
// Defaults are applied by Inventory.Hosts.
func (l *Loader) Load() (*Inventory, error) {
	if l.filePath == "" {
		return nil, errors.New("configuration file path is empty")
	}
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file '%s'", l.filePath)
	}
	if len(content) == 0 {
		return nil, errors.Errorf("configuration file '%s' is empty", l.filePath)
	}

	var inv Inventory
	if err := yaml.Unmarshal(content, &inv); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config YAML from '%s'", l.filePath)
	}

	if inv.APIVersion == "" {
		return nil, errors.Errorf("config validation failed: apiVersion is a required field in '%s'", l.filePath)
	}
	if inv.Kind != InventoryKind {
		return nil, errors.Errorf("config validation failed: kind must be '%s' in '%s', got '%s'", InventoryKind, l.filePath, inv.Kind)
	}
	if inv.Metadata.Name == "" {
		return nil, errors.Errorf("config validation failed: metadata.name is a required field in '%s'", l.filePath)
	}
	if len(inv.Spec.Hosts) == 0 {
		return nil, errors.Errorf("config validation failed: spec.hosts must list at least one host in '%s'", l.filePath)
	}
	return &inv, nil
}

// Package config handles the YAML configuration for machine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// TokenEnv names the environment variable used when the config file has no
// access token.
const TokenEnv = "DIGITALOCEAN_ACCESS_TOKEN"

// ErrMachineTypeNotFound is returned for a machine type missing from config.
var ErrMachineTypeNotFound = errors.New("machine type not found")

// Config is the root configuration structure.
type Config struct {
	DigitalOcean DigitalOceanConfig       `yaml:"digital-ocean"`
	Machines     map[string]MachineConfig `yaml:"machines"`
}

// DigitalOceanConfig holds provider settings and droplet defaults.
type DigitalOceanConfig struct {
	AccessToken string `yaml:"access-token"`
	SSHKey      string `yaml:"ssh-key"`
	DNSZone     string `yaml:"dns-zone"`
	MachineSize string `yaml:"machine-size"`
	Image       string `yaml:"image"`
	Region      string `yaml:"region"`
}

// MachineConfig describes how a machine type is initialized on first boot.
type MachineConfig struct {
	NewUserName string `yaml:"new-user-name"`
	ScriptURL   string `yaml:"script-url"`
	ScriptDir   string `yaml:"script-dir"`
	ScriptPath  string `yaml:"script-path"`
	ScriptArgs  string `yaml:"script-args"`
}

// DefaultPath returns ~/.machine/config.yml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".machine", "config.yml")
	}
	return filepath.Join(home, ".machine", "config.yml")
}

// Load reads, parses and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if cfg.DigitalOcean.AccessToken == "" {
		cfg.DigitalOcean.AccessToken = os.Getenv(TokenEnv)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DigitalOcean.MachineSize == "" {
		cfg.DigitalOcean.MachineSize = "s-1vcpu-1gb"
	}
	if cfg.DigitalOcean.Image == "" {
		cfg.DigitalOcean.Image = "ubuntu-22-04-x64"
	}
	if cfg.DigitalOcean.Region == "" {
		cfg.DigitalOcean.Region = "nyc3"
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.DigitalOcean.AccessToken == "" {
		return fmt.Errorf("digital-ocean: access-token is required (or set %s)", TokenEnv)
	}
	if c.DigitalOcean.SSHKey == "" {
		return fmt.Errorf("digital-ocean: ssh-key is required")
	}
	for _, name := range c.MachineTypes() {
		if err := c.Machines[name].validate(); err != nil {
			return fmt.Errorf("machines.%s: %w", name, err)
		}
	}
	return nil
}

func (m MachineConfig) validate() error {
	switch {
	case m.NewUserName == "":
		return fmt.Errorf("new-user-name is required")
	case m.ScriptURL == "":
		return fmt.Errorf("script-url is required")
	case m.ScriptDir == "":
		return fmt.Errorf("script-dir is required")
	case m.ScriptPath == "":
		return fmt.Errorf("script-path is required")
	}
	return nil
}

// Machine returns the configuration of machine type name.
func (c *Config) Machine(name string) (MachineConfig, error) {
	m, ok := c.Machines[name]
	if !ok {
		return MachineConfig{}, fmt.Errorf("%w: %s", ErrMachineTypeNotFound, name)
	}
	return m, nil
}

// MachineTypes returns the configured machine type names, sorted.
func (c *Config) MachineTypes() []string {
	names := make([]string, 0, len(c.Machines))
	for name := range c.Machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FQDN returns the fully qualified name of host, using the DNS zone when set.
func (c *Config) FQDN(host string) string {
	if c.DigitalOcean.DNSZone == "" {
		return host
	}
	return host + "." + c.DigitalOcean.DNSZone
}

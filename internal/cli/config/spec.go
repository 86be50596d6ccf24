package config

import "time"

// CLIConfig is the configuration for ssmproxy-cli.
type CLIConfig struct {
	Server  string        `yaml:"server"`
	Output  string        `yaml:"output"` // table, json, yaml
	Timeout time.Duration `yaml:"timeout"`

	// Profiles are named servers; Current selects one when no server is
	// given on the command line.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
	Current  string             `yaml:"current,omitempty"`
}

// Profile is a saved server.
type Profile struct {
	Server  string        `yaml:"server"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:   "http://127.0.0.1:8480",
		Output:   "table",
		Timeout:  30 * time.Second,
		Profiles: make(map[string]Profile),
	}
}

// Resolve returns the server and timeout for the named profile, or for
// the current profile when name is empty. Without a matching profile the
// top-level values are used.
func (c *CLIConfig) Resolve(name string) (string, time.Duration, bool) {
	if name == "" {
		name = c.Current
	}
	p, ok := c.Profiles[name]
	if !ok || name == "" {
		return c.Server, c.Timeout, name == ""
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = c.Timeout
	}
	return p.Server, timeout, true
}

package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MachineConfig describes one worker host in the fleet a run targets. Id is
// implicit from the machine's position in RunConfig.Machines.
type MachineConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user"`
	Password string `yaml:"password,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
	Dir      string `yaml:"dir,omitempty"` // working directory on the host, defaults to DefaultWorkDir
}

// RunConfig describes one constellation run: the constellation service to poll,
// the tick cadence, and the worker fleet. Loaded from a YAML file, matching this
// codebase's existing convention for declarative scenario files.
type RunConfig struct {
	Constellation string          `yaml:"constellation"`
	APIURL        string          `yaml:"api_url"`
	StepSeconds   int             `yaml:"step"`
	Machines      []MachineConfig `yaml:"machines"`
	RedisAddr     string          `yaml:"redis_addr,omitempty"`
	AuditLogPath  string          `yaml:"audit_log_path,omitempty"`
}

// DefaultWorkDir is the working directory a worker host uses when a machine
// entry does not override Dir.
const DefaultWorkDir = "/var/lib/starmesh"

// LoadRunConfig reads and validates a YAML run configuration file.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config %s: %w", path, err)
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing run config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i := range cfg.Machines {
		if cfg.Machines[i].Port == 0 {
			cfg.Machines[i].Port = 22
		}
		if cfg.Machines[i].Dir == "" {
			cfg.Machines[i].Dir = DefaultWorkDir
		}
	}
	return &cfg, nil
}

// Validate checks that a run configuration has the fields the controller needs
// to start a pacemaker loop.
func (c *RunConfig) Validate() error {
	if c.Constellation == "" {
		return fmt.Errorf("run config: constellation name is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("run config: api_url is required")
	}
	if c.StepSeconds <= 0 {
		return fmt.Errorf("run config: step must be a positive number of seconds")
	}
	if len(c.Machines) == 0 {
		return fmt.Errorf("run config: at least one machine is required")
	}
	for i, m := range c.Machines {
		if m.Host == "" {
			return fmt.Errorf("run config: machines[%d].host is required", i)
		}
		if m.Password == "" && m.KeyPath == "" {
			return fmt.Errorf("run config: machines[%d] needs password or key_path", i)
		}
	}
	return nil
}

package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/schedlottery/schedlottery/taskstats"
)

// Config holds everything one load run needs. It is built once at startup
// — defaults, then an optional YAML file, then CLI flags — and passed
// explicitly into each operation; nothing reads it ambiently.
type Config struct {
	// ObjectPath is the compiled BPF object to load.
	ObjectPath string `yaml:"object_path"`

	// ProgPin, MapPin, and LinkPin are the bpffs paths the program, stats
	// map, and tracepoint link are pinned at.
	ProgPin string `yaml:"prog_pin"`
	MapPin  string `yaml:"map_pin"`
	LinkPin string `yaml:"link_pin"`

	// Trace is the "category:name" tracepoint specifier. Defaults to
	// sched:sched_switch.
	Trace string `yaml:"trace"`

	// BTFPath overrides the kernel's own BTF as the relocation target.
	// Empty means the running kernel's type database.
	BTFPath string `yaml:"btf_path"`

	// ProgramName and MapName are the entities resolved inside the object.
	ProgramName string `yaml:"program_name"`
	MapName     string `yaml:"map_name"`
}

// DefaultConfig returns a Config with the conventional entity names and
// tracepoint.
func DefaultConfig() *Config {
	return &Config{
		Trace:       taskstats.DefaultTracepoint,
		ProgramName: taskstats.ProgramName,
		MapName:     taskstats.MapName,
	}
}

// LoadConfig reads a YAML configuration file over the defaults. Validation
// is deferred until CLI flags have been merged on top.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that every path a load run requires is present. The
// tracepoint specifier is deliberately not parsed here; a malformed spec is
// an attach-stage failure, not a usage error.
func (c *Config) Validate() error {
	if c.ObjectPath == "" {
		return fmt.Errorf("obj is required")
	}

	if c.ProgPin == "" {
		return fmt.Errorf("prog-pin is required")
	}

	if c.MapPin == "" {
		return fmt.Errorf("map-pin is required")
	}

	if c.LinkPin == "" {
		return fmt.Errorf("link-pin is required")
	}

	if c.ProgramName == "" {
		return fmt.Errorf("program_name must not be empty")
	}

	if c.MapName == "" {
		return fmt.Errorf("map_name must not be empty")
	}

	return nil
}

// ValidateDetach checks the subset of fields a detach run requires.
func (c *Config) ValidateDetach() error {
	if c.ProgPin == "" {
		return fmt.Errorf("prog-pin is required")
	}

	if c.MapPin == "" {
		return fmt.Errorf("map-pin is required")
	}

	if c.LinkPin == "" {
		return fmt.Errorf("link-pin is required")
	}

	return nil
}

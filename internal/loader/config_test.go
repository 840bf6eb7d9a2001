package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "sched:sched_switch", cfg.Trace)
	assert.Equal(t, "handle_sched_switch", cfg.ProgramName)
	assert.Equal(t, "task_map", cfg.MapName)
}

func TestLoadConfig(t *testing.T) {
	yaml := `
object_path: /opt/schedlottery/sched_lottery.bpf.o
prog_pin: /sys/fs/bpf/sched_lottery/prog
map_pin: /sys/fs/bpf/sched_lottery/task_map
link_pin: /sys/fs/bpf/sched_lottery/prog_link
trace: "sched:sched_wakeup"
btf_path: /var/lib/btf/vmlinux
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/schedlottery/sched_lottery.bpf.o", cfg.ObjectPath)
	assert.Equal(t, "/sys/fs/bpf/sched_lottery/prog", cfg.ProgPin)
	assert.Equal(t, "/sys/fs/bpf/sched_lottery/task_map", cfg.MapPin)
	assert.Equal(t, "/sys/fs/bpf/sched_lottery/prog_link", cfg.LinkPin)
	assert.Equal(t, "sched:sched_wakeup", cfg.Trace)
	assert.Equal(t, "/var/lib/btf/vmlinux", cfg.BTFPath)

	// Unset fields keep their defaults.
	assert.Equal(t, "handle_sched_switch", cfg.ProgramName)
	assert.Equal(t, "task_map", cfg.MapName)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\t- bad"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.ObjectPath = "sched_lottery.bpf.o"
	cfg.ProgPin = "/sys/fs/bpf/sched_lottery/prog"
	cfg.MapPin = "/sys/fs/bpf/sched_lottery/task_map"
	cfg.LinkPin = "/sys/fs/bpf/sched_lottery/prog_link"

	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"obj", func(c *Config) { c.ObjectPath = "" }, "obj is required"},
		{"prog-pin", func(c *Config) { c.ProgPin = "" }, "prog-pin is required"},
		{"map-pin", func(c *Config) { c.MapPin = "" }, "map-pin is required"},
		{"link-pin", func(c *Config) { c.LinkPin = "" }, "link-pin is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_MalformedTraceAccepted(t *testing.T) {
	// A malformed tracepoint spec is an attach-stage failure, not a
	// usage error, so Validate does not reject it.
	cfg := validConfig()
	cfg.Trace = "no-separator"

	require.NoError(t, cfg.Validate())
}

func TestValidateDetach(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.ValidateDetach())

	cfg.ProgPin = "/sys/fs/bpf/sched_lottery/prog"
	cfg.MapPin = "/sys/fs/bpf/sched_lottery/task_map"
	cfg.LinkPin = "/sys/fs/bpf/sched_lottery/prog_link"
	require.NoError(t, cfg.ValidateDetach())

	// Detach does not need the object path.
	assert.Empty(t, cfg.ObjectPath)
}

package loader

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func detachConfig(dir string) *Config {
	cfg := DefaultConfig()
	cfg.ProgPin = filepath.Join(dir, "prog")
	cfg.MapPin = filepath.Join(dir, "task_map")
	cfg.LinkPin = filepath.Join(dir, "prog_link")

	return cfg
}

func TestDetach_RemovesAllPins(t *testing.T) {
	dir := t.TempDir()
	cfg := detachConfig(dir)

	for _, p := range []string{cfg.LinkPin, cfg.ProgPin, cfg.MapPin} {
		require.NoError(t, os.WriteFile(p, nil, 0o600))
	}

	require.NoError(t, Detach(testLogger(), cfg))

	for _, p := range []string{cfg.LinkPin, cfg.ProgPin, cfg.MapPin} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "pin %s should be gone", p)
	}
}

func TestDetach_NeverLoadedSucceeds(t *testing.T) {
	cfg := detachConfig(t.TempDir())

	require.NoError(t, Detach(testLogger(), cfg))
}

func TestDetach_PartialPinsSucceeds(t *testing.T) {
	dir := t.TempDir()
	cfg := detachConfig(dir)

	// Only the map pin exists, as after a crash mid-load.
	require.NoError(t, os.WriteFile(cfg.MapPin, nil, 0o600))

	require.NoError(t, Detach(testLogger(), cfg))

	_, err := os.Stat(cfg.MapPin)
	assert.True(t, os.IsNotExist(err))
}

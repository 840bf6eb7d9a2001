// Package pinfs manipulates pin paths on a BPF filesystem. Pins are plain
// filesystem names, so create and destroy are made idempotent with ordinary
// file operations: removal treats "does not exist" as success, and pinning
// is always preceded by removal of any stale entry at the same path.
package pinfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Pin directories are world-traversable and the stats map pin is
// world-readable, so unprivileged readers can open the map by path.
const (
	DirMode = 0o755
	MapMode = 0o644
)

// EnsureParent creates the directory containing path, if missing.
func EnsureParent(path string) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("creating pin directory %s: %w", dir, err)
	}

	return nil
}

// RemoveStale removes the pin at path. A missing pin is not an error; every
// other failure is.
func RemoveStale(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale pin %s: %w", path, err)
	}

	return nil
}

// RelaxMap widens the pinned map to world-readable. Must only be called
// once the pin exists, so readers never race a not-yet-created path.
func RelaxMap(path string) error {
	if err := os.Chmod(path, MapMode); err != nil {
		return fmt.Errorf("relaxing map pin %s: %w", path, err)
	}

	return nil
}

// RelaxParent widens the directory containing path to world-traversable.
// MkdirAll's mode is subject to the umask, so this is applied explicitly.
func RelaxParent(path string) error {
	dir := filepath.Dir(path)

	if err := os.Chmod(dir, DirMode); err != nil {
		return fmt.Errorf("relaxing pin directory %s: %w", dir, err)
	}

	return nil
}

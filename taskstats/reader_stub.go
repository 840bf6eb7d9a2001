//go:build !linux

package taskstats

import "fmt"

// OpenPinned requires Linux; on other platforms it always errors.
func OpenPinned(path string) (Reader, error) {
	return nil, fmt.Errorf("pinned BPF maps require Linux")
}

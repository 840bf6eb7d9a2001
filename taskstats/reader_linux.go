//go:build linux

package taskstats

import (
	"fmt"
	"sort"

	"github.com/cilium/ebpf"
)

type reader struct {
	m *ebpf.Map
}

// OpenPinned opens the stats map pinned at path. Opening requires only read
// permission on the pin, so unprivileged processes can use it once the
// loader has relaxed the pin's mode.
func OpenPinned(path string) (Reader, error) {
	m, err := ebpf.LoadPinnedMap(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening pinned map %s: %w", path, err)
	}

	if m.KeySize() != KeySize || m.ValueSize() != RecordSize {
		m.Close()

		return nil, fmt.Errorf(
			"map %s has key/value size %d/%d, want %d/%d",
			path, m.KeySize(), m.ValueSize(), KeySize, RecordSize,
		)
	}

	return &reader{m: m}, nil
}

func (r *reader) Snapshot() ([]Entry, error) {
	entries := make([]Entry, 0, 256)

	var (
		pid uint32
		rec TaskRecord
	)

	iter := r.m.Iterate()
	for iter.Next(&pid, &rec) {
		entries = append(entries, Entry{PID: pid, Record: rec})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("iterating stats map: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PID < entries[j].PID
	})

	return entries, nil
}

func (r *reader) Close() error {
	return r.m.Close()
}

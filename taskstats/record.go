// Package taskstats defines the per-task statistics record maintained by
// the sched_switch BPF handler, the ticket weighting it derives from task
// niceness, and a reader for the pinned stats map. The binary record layout
// is the contract between the in-kernel handler and every userspace
// consumer, privileged or not.
package taskstats

import (
	"encoding/binary"
	"fmt"
)

// Names and sizing shared between the BPF object and its loader. These must
// match bpf/sched_lottery.bpf.c; the loader resolves both entities by name
// before loading anything.
const (
	// MapName is the BPF hash map holding one TaskRecord per observed task.
	MapName = "task_map"

	// ProgramName is the sched_switch tracepoint handler.
	ProgramName = "handle_sched_switch"

	// DefaultTracepoint is the event source the handler attaches to.
	DefaultTracepoint = "sched:sched_switch"

	// MaxEntries is the fixed map capacity. Once full, inserts for unseen
	// tasks fail silently and those tasks are never recorded.
	MaxEntries = 10240

	// KeySize is the width of the task ID key in bytes.
	KeySize = 4

	// RecordSize is the width of the map value in bytes.
	RecordSize = 32
)

// TaskRecord is the per-task value stored in the stats map, in native byte
// order: runtime_ns u64, switches u64, nice i32, tickets u32,
// last_switch_in_ts u64.
type TaskRecord struct {
	// RuntimeNs is the cumulative on-CPU time attributed to this task.
	// Monotonically non-decreasing.
	RuntimeNs uint64

	// Switches counts how many times this task was switched away from.
	Switches uint64

	// Nice is the last-observed niceness, clamped to [-20, 19].
	Nice int32

	// Tickets is the lottery weight derived from Nice, in [10, 300].
	Tickets uint32

	// LastSwitchInTs is the monotonic timestamp of the most recent
	// switch-in. Zero means the task has never been observed running.
	LastSwitchInTs uint64
}

// Entry pairs a task ID with its record, as read from the map.
type Entry struct {
	PID    uint32
	Record TaskRecord
}

// UnmarshalRecord decodes a raw map value in native byte order.
func UnmarshalRecord(data []byte) (TaskRecord, error) {
	if len(data) < RecordSize {
		return TaskRecord{}, fmt.Errorf(
			"record too short: %d bytes, want %d", len(data), RecordSize,
		)
	}

	return TaskRecord{
		RuntimeNs:      binary.NativeEndian.Uint64(data[0:8]),
		Switches:       binary.NativeEndian.Uint64(data[8:16]),
		Nice:           int32(binary.NativeEndian.Uint32(data[16:20])),
		Tickets:        binary.NativeEndian.Uint32(data[20:24]),
		LastSwitchInTs: binary.NativeEndian.Uint64(data[24:32]),
	}, nil
}

// MarshalRecord encodes a record in native byte order.
func MarshalRecord(r TaskRecord) []byte {
	buf := make([]byte, RecordSize)
	binary.NativeEndian.PutUint64(buf[0:8], r.RuntimeNs)
	binary.NativeEndian.PutUint64(buf[8:16], r.Switches)
	binary.NativeEndian.PutUint32(buf[16:20], uint32(r.Nice))
	binary.NativeEndian.PutUint32(buf[20:24], r.Tickets)
	binary.NativeEndian.PutUint64(buf[24:32], r.LastSwitchInTs)

	return buf
}

package taskstats

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Table is the userspace model of the in-kernel stats map: a fixed-capacity
// task table updated once per scheduling switch. It mirrors the handler's
// semantics exactly — per-key atomic accumulation, no deletion, and a silent
// drop once capacity is reached — and is safe for concurrent use.
//
// The BPF handler cannot perform an atomic get-or-insert and accepts a
// benign lost-update window on first touch of a key. Here LoadOrStore closes
// that window; readers still see non-transactional snapshots, since fields
// of a record are updated independently.
type Table struct {
	entries  sync.Map // uint32 -> *record
	size     atomic.Int64
	capacity int64
}

type record struct {
	runtimeNs      atomic.Uint64
	switches       atomic.Uint64
	nice           atomic.Int32
	tickets        atomic.Uint32
	lastSwitchInTs atomic.Uint64
}

// NewTable creates a table bounded at MaxEntries.
func NewTable() *Table {
	return &Table{capacity: MaxEntries}
}

// NewTableWithCapacity creates a table with an explicit capacity bound.
func NewTableWithCapacity(capacity int) *Table {
	return &Table{capacity: int64(capacity)}
}

// ApplySwitch applies one sched_switch event: prev is the task being
// switched away from, next the task being switched in with kernel priority
// nextPrio, now the monotonic timestamp of the event. Task ID 0 is the idle
// task and is never tracked on either side.
func (t *Table) ApplySwitch(prev, next uint32, nextPrio int32, now uint64) {
	if prev != 0 {
		if rec := t.lookupOrCreate(prev); rec != nil {
			// A record created only as the outgoing side has never been
			// observed running; the guard also rejects implausible deltas.
			last := rec.lastSwitchInTs.Load()
			if last != 0 && now > last {
				rec.runtimeNs.Add(now - last)
			}

			rec.switches.Add(1)
		}
	}

	if next != 0 {
		if rec := t.lookupOrCreate(next); rec != nil {
			rec.lastSwitchInTs.Store(now)

			nice := NiceFromPrio(nextPrio)
			rec.nice.Store(nice)
			rec.tickets.Store(TicketsForNice(nice))
		}
	}
}

// lookupOrCreate returns the record for pid, inserting a zero-valued one on
// first sight. Returns nil once the table is full and pid is unseen; that
// task's statistics are never recorded.
func (t *Table) lookupOrCreate(pid uint32) *record {
	if v, ok := t.entries.Load(pid); ok {
		return v.(*record)
	}

	// Reserve a slot before inserting, so concurrent first touches of
	// distinct keys cannot push the table past its bound.
	if t.size.Add(1) > t.capacity {
		t.size.Add(-1)

		return nil
	}

	v, loaded := t.entries.LoadOrStore(pid, &record{})
	if loaded {
		// Lost the insert race for this key; release the reservation.
		t.size.Add(-1)
	}

	return v.(*record)
}

// Lookup returns the current record for pid, if one exists.
func (t *Table) Lookup(pid uint32) (TaskRecord, bool) {
	v, ok := t.entries.Load(pid)
	if !ok {
		return TaskRecord{}, false
	}

	return v.(*record).snapshot(), true
}

// Len returns the number of tracked tasks.
func (t *Table) Len() int {
	return int(t.size.Load())
}

// Snapshot returns all entries sorted by task ID. Each record is a
// non-transactional snapshot that may interleave with concurrent updates.
func (t *Table) Snapshot() []Entry {
	entries := make([]Entry, 0, t.Len())

	t.entries.Range(func(k, v any) bool {
		entries = append(entries, Entry{
			PID:    k.(uint32),
			Record: v.(*record).snapshot(),
		})

		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PID < entries[j].PID
	})

	return entries
}

func (r *record) snapshot() TaskRecord {
	return TaskRecord{
		RuntimeNs:      r.runtimeNs.Load(),
		Switches:       r.switches.Load(),
		Nice:           r.nice.Load(),
		Tickets:        r.tickets.Load(),
		LastSwitchInTs: r.lastSwitchInTs.Load(),
	}
}

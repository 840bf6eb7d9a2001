// Package loader drives the lifecycle of the sched_switch tracer: open a
// compiled BPF object, resolve the handler and the stats map by name,
// relocate and load against kernel BTF, pin map and program, attach the
// handler to its tracepoint, and pin the link. Pinning is what lets the
// tracer outlive this process; a separate detach entry point tears the pins
// down again.
//
// Every stage is idempotent where the filesystem is involved: pins are
// removed before being recreated, so re-running after a crash that left
// stale pins succeeds and leaves exactly one fresh set.
package loader

// Result reports where a successful run left its pinned objects.
type Result struct {
	ProgPin    string
	MapPin     string
	LinkPin    string
	Tracepoint Tracepoint
}

// Loader performs one load run. It is single-threaded and fully
// synchronous; each kernel operation blocks until the kernel responds. Any
// stage failure aborts the remaining stages, and partial pins are left in
// place for the next run to reclaim.
type Loader interface {
	Run() (Result, error)
}

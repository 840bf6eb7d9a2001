//go:build linux

package loader

import (
	"errors"
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/btf"
	"github.com/cilium/ebpf/link"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/schedlottery/schedlottery/internal/pinfs"
)

type loader struct {
	log logrus.FieldLogger
	cfg *Config
}

// New creates a Loader for the given configuration.
func New(log logrus.FieldLogger, cfg *Config) Loader {
	return &loader{
		log: log.WithField("component", "loader"),
		cfg: cfg,
	}
}

func (l *loader) Run() (Result, error) {
	spec, err := ebpf.LoadCollectionSpec(l.cfg.ObjectPath)
	if err != nil {
		return Result{}, &OpenError{Path: l.cfg.ObjectPath, Err: err}
	}

	l.log.WithField("obj", l.cfg.ObjectPath).Debug("Opened BPF object")

	return l.load(spec)
}

// load runs every stage after open: resolve, relocate and load, pin, and
// attach. Split from Run so the stages can be exercised against a
// collection spec that never touched the filesystem.
func (l *loader) load(spec *ebpf.CollectionSpec) (Result, error) {
	progSpec, mapSpec, err := resolveEntities(spec, l.cfg)
	if err != nil {
		return Result{}, err
	}

	l.log.WithFields(logrus.Fields{
		"program":     l.cfg.ProgramName,
		"type":        progSpec.Type.String(),
		"map":         l.cfg.MapName,
		"max_entries": mapSpec.MaxEntries,
	}).Debug("Resolved entities")

	// BPF maps are charged against RLIMIT_MEMLOCK on older kernels; the
	// limit must be lifted before any load is attempted.
	if err := raiseMemlock(); err != nil {
		return Result{}, err
	}

	var opts ebpf.CollectionOptions

	if l.cfg.BTFPath != "" {
		kernelTypes, err := btf.LoadSpec(l.cfg.BTFPath)
		if err != nil {
			return Result{}, &LoadError{
				Err: fmt.Errorf("parsing BTF %s: %w", l.cfg.BTFPath, err),
			}
		}

		opts.Programs.KernelTypes = kernelTypes

		l.log.WithField("btf", l.cfg.BTFPath).
			Info("Using BTF override as relocation target")
	}

	coll, err := ebpf.NewCollectionWithOptions(spec, opts)
	if err != nil {
		var verr *ebpf.VerifierError
		if errors.As(err, &verr) {
			l.log.WithError(verr).Debug("Verifier rejected program")
		}

		return Result{}, &LoadError{Err: err}
	}

	// Releasing the collection only drops in-process references; pinned
	// objects stay alive in the kernel.
	defer coll.Close()

	l.log.Info("Loaded and relocated BPF object")

	if err := l.repinMap(coll.Maps[l.cfg.MapName]); err != nil {
		return Result{}, err
	}

	if err := l.repinProgram(coll.Programs[l.cfg.ProgramName]); err != nil {
		return Result{}, err
	}

	tp, err := l.attach(coll.Programs[l.cfg.ProgramName])
	if err != nil {
		return Result{}, err
	}

	l.log.WithFields(logrus.Fields{
		"tracepoint": tp.String(),
		"prog_pin":   l.cfg.ProgPin,
		"map_pin":    l.cfg.MapPin,
		"link_pin":   l.cfg.LinkPin,
	}).Info("Tracer attached and pinned")

	return Result{
		ProgPin:    l.cfg.ProgPin,
		MapPin:     l.cfg.MapPin,
		LinkPin:    l.cfg.LinkPin,
		Tracepoint: tp,
	}, nil
}

// resolveEntities locates the handler program and the stats map inside the
// opened object. Failing here catches a stale or mismatched compiled
// artifact before anything touches the kernel.
func resolveEntities(
	spec *ebpf.CollectionSpec,
	cfg *Config,
) (*ebpf.ProgramSpec, *ebpf.MapSpec, error) {
	progSpec, ok := spec.Programs[cfg.ProgramName]
	if !ok {
		return nil, nil, &EntityNotFoundError{
			Kind: "program",
			Name: cfg.ProgramName,
			Path: cfg.ObjectPath,
		}
	}

	mapSpec, ok := spec.Maps[cfg.MapName]
	if !ok {
		return nil, nil, &EntityNotFoundError{
			Kind: "map",
			Name: cfg.MapName,
			Path: cfg.ObjectPath,
		}
	}

	return progSpec, mapSpec, nil
}

func raiseMemlock() error {
	rl := unix.Rlimit{
		Cur: unix.RLIM_INFINITY,
		Max: unix.RLIM_INFINITY,
	}

	if err := unix.Setrlimit(unix.RLIMIT_MEMLOCK, &rl); err != nil {
		return &ResourceLimitError{Err: err}
	}

	return nil
}

// repinMap pins the stats map, replacing any stale pin, then widens
// permissions so unprivileged readers can open it. Widening happens only
// after the pin exists, so readers never race a not-yet-created path.
func (l *loader) repinMap(m *ebpf.Map) error {
	path := l.cfg.MapPin

	if err := pinfs.EnsureParent(path); err != nil {
		return &PinError{Object: "map", Path: path, Err: err}
	}

	if err := pinfs.RemoveStale(path); err != nil {
		return &PinError{Object: "map", Path: path, Err: err}
	}

	if err := m.Pin(path); err != nil {
		return &PinError{Object: "map", Path: path, Err: err}
	}

	if err := pinfs.RelaxMap(path); err != nil {
		return &PinError{Object: "map", Path: path, Err: err}
	}

	if err := pinfs.RelaxParent(path); err != nil {
		return &PinError{Object: "map", Path: path, Err: err}
	}

	l.log.WithField("path", path).Debug("Pinned stats map")

	return nil
}

func (l *loader) repinProgram(prog *ebpf.Program) error {
	path := l.cfg.ProgPin

	if err := pinfs.EnsureParent(path); err != nil {
		return &PinError{Object: "program", Path: path, Err: err}
	}

	if err := pinfs.RemoveStale(path); err != nil {
		return &PinError{Object: "program", Path: path, Err: err}
	}

	if err := prog.Pin(path); err != nil {
		return &PinError{Object: "program", Path: path, Err: err}
	}

	l.log.WithField("path", path).Debug("Pinned program")

	return nil
}

// attach connects the handler to its tracepoint and pins the link. If the
// link pin fails, the in-process link is closed before returning so a
// failed attach never leaves a kernel-side attachment referenced only by
// this process.
func (l *loader) attach(prog *ebpf.Program) (Tracepoint, error) {
	tp, err := ParseTracepoint(l.cfg.Trace)
	if err != nil {
		return Tracepoint{}, err
	}

	lnk, err := link.Tracepoint(tp.Category, tp.Name, prog, nil)
	if err != nil {
		return Tracepoint{}, &AttachError{Tracepoint: tp.String(), Err: err}
	}

	path := l.cfg.LinkPin

	if err := pinfs.EnsureParent(path); err != nil {
		lnk.Close()

		return Tracepoint{}, &PinError{Object: "link", Path: path, Err: err}
	}

	if err := pinfs.RemoveStale(path); err != nil {
		lnk.Close()

		return Tracepoint{}, &PinError{Object: "link", Path: path, Err: err}
	}

	if err := lnk.Pin(path); err != nil {
		lnk.Close()

		return Tracepoint{}, &PinError{Object: "link", Path: path, Err: err}
	}

	// The pin now keeps the attachment alive; drop the process handle.
	lnk.Close()

	l.log.WithFields(logrus.Fields{
		"tracepoint": tp.String(),
		"path":       path,
	}).Debug("Attached and pinned link")

	return tp, nil
}

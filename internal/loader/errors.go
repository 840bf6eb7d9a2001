package loader

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Every lifecycle stage maps to one error type so a failing run reports
// exactly which stage gave up. All of them are fatal; nothing is retried.

// OpenError reports a missing or malformed BPF object file.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("opening object %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// EntityNotFoundError reports that the expected program or map name is
// absent from an otherwise well-formed object, which means the object and
// the loader have skewed.
type EntityNotFoundError struct {
	Kind string // "program" or "map"
	Name string
	Path string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in %s", e.Kind, e.Name, e.Path)
}

// ResourceLimitError reports a failure to raise RLIMIT_MEMLOCK before load.
type ResourceLimitError struct {
	Err error
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("raising memlock rlimit: %v", e.Err)
}

func (e *ResourceLimitError) Unwrap() error { return e.Err }

// LoadError reports a BTF parse, CO-RE relocation, or verifier failure.
// This is the dominant real-world failure: the target BTF must actually
// describe the running kernel's layout.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading object: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Errno returns the underlying kernel error code, when one exists.
func (e *LoadError) Errno() (unix.Errno, bool) {
	var errno unix.Errno
	if errors.As(e.Err, &errno) {
		return errno, true
	}

	return 0, false
}

// PinError reports a pin or unpin failure on the BPF filesystem.
type PinError struct {
	Object string // "map", "program", or "link"
	Path   string
	Err    error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("pinning %s at %s: %v", e.Object, e.Path, e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }

// InvalidSpecError reports a malformed tracepoint specifier.
type InvalidSpecError struct {
	Spec string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf(
		"invalid tracepoint spec %q: want category:name", e.Spec,
	)
}

// AttachError reports a failure to attach the handler to its tracepoint.
type AttachError struct {
	Tracepoint string
	Err        error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("attaching %s: %v", e.Tracepoint, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

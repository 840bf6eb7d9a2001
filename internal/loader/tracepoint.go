package loader

import "strings"

// Tracepoint identifies a kernel tracepoint by its two-part specifier.
type Tracepoint struct {
	Category string
	Name     string
}

// ParseTracepoint splits a "category:name" specifier. A missing separator
// or an empty half is an *InvalidSpecError.
func ParseTracepoint(spec string) (Tracepoint, error) {
	category, name, ok := strings.Cut(spec, ":")
	if !ok || category == "" || name == "" {
		return Tracepoint{}, &InvalidSpecError{Spec: spec}
	}

	return Tracepoint{Category: category, Name: name}, nil
}

func (t Tracepoint) String() string {
	return t.Category + ":" + t.Name
}

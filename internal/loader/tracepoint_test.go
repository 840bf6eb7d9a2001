package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTracepoint(t *testing.T) {
	tp, err := ParseTracepoint("sched:sched_switch")
	require.NoError(t, err)
	assert.Equal(t, "sched", tp.Category)
	assert.Equal(t, "sched_switch", tp.Name)
	assert.Equal(t, "sched:sched_switch", tp.String())
}

func TestParseTracepoint_Invalid(t *testing.T) {
	for _, spec := range []string{"", "sched", ":sched_switch", "sched:"} {
		_, err := ParseTracepoint(spec)

		var invalid *InvalidSpecError
		require.ErrorAs(t, err, &invalid, "spec %q", spec)
		assert.Equal(t, spec, invalid.Spec)
	}
}

func TestParseTracepoint_ExtraSeparatorKeptInName(t *testing.T) {
	// Only the first separator splits; tracepoint names never contain one,
	// but the spec format itself does not forbid it.
	tp, err := ParseTracepoint("sched:a:b")
	require.NoError(t, err)
	assert.Equal(t, "sched", tp.Category)
	assert.Equal(t, "a:b", tp.Name)
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("boom")

	for _, err := range []error{
		&OpenError{Path: "x.o", Err: cause},
		&ResourceLimitError{Err: cause},
		&LoadError{Err: cause},
		&PinError{Object: "map", Path: "/sys/fs/bpf/m", Err: cause},
		&AttachError{Tracepoint: "sched:sched_switch", Err: cause},
	} {
		assert.ErrorIs(t, err, cause)
	}
}

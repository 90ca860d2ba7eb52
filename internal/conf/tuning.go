package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/takoyaki65/dsa-watchdog/internal/constants"
)

// Tuning holds the ambient timing and sizing constants a caller may want to
// adjust for a slower or more constrained host: none of these fields carry
// per-invocation semantics, which always live on model.Request.
type Tuning struct {
	MemorySampleInterval  time.Duration
	DeadlineCheckInterval time.Duration
	PumpBufferSize        int
	StdoutCapBytes        int
	StderrCapBytes        int
}

// DefaultTuning matches the constants this repo ships with when no tuning
// file is given.
func DefaultTuning() Tuning {
	return Tuning{
		MemorySampleInterval:  constants.MemorySampleInterval,
		DeadlineCheckInterval: constants.DeadlineCheckInterval,
		PumpBufferSize:        constants.PumpBufferSize,
		StdoutCapBytes:        constants.StdoutCapBytes,
		StderrCapBytes:        constants.StderrCapBytes,
	}
}

// FromViper builds a Tuning from v, falling back to DefaultTuning for any
// key that is absent. A nil v (no tuning file given) returns the defaults
// unchanged.
func FromViper(v *viper.Viper) Tuning {
	t := DefaultTuning()
	if v == nil {
		return t
	}

	if v.IsSet("memorySampleIntervalMS") {
		t.MemorySampleInterval = time.Duration(v.GetInt64("memorySampleIntervalMS")) * time.Millisecond
	}
	if v.IsSet("deadlineCheckIntervalMS") {
		t.DeadlineCheckInterval = time.Duration(v.GetInt64("deadlineCheckIntervalMS")) * time.Millisecond
	}
	if v.IsSet("pumpBufferSize") {
		t.PumpBufferSize = v.GetInt("pumpBufferSize")
	}
	if v.IsSet("stdoutCapBytes") {
		t.StdoutCapBytes = v.GetInt("stdoutCapBytes")
	}
	if v.IsSet("stderrCapBytes") {
		t.StderrCapBytes = v.GetInt("stderrCapBytes")
	}
	return t
}

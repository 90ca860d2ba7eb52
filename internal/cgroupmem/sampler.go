// Package cgroupmem implements the memory sampler: it polls a cgroup v2
// it polls a cgroup v2 memory.current file on a fixed tick, tracks the
// running peak, and signals breach of a byte limit.
package cgroupmem

import (
	"bytes"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/takoyaki65/dsa-watchdog/internal/constants"
)

// Sampler polls constants.CgroupMemoryCurrentFile on the interval given to New
// and tracks the highest value observed. If the caller is not running under a
// cgroup v2 mount with that file present, the sampler reports zero and never
// trips the limit: memory accounting is best-effort, not a hard requirement
// for every invocation.
type Sampler struct {
	limitBytes int64
	path       string
	interval   time.Duration
	peak       atomic.Int64
}

// New creates a Sampler for the given limit in megabytes, polling every
// interval. A memoryLimitMB of zero means "no memory cap": the sampler still
// tracks the peak for reporting but never trips.
func New(memoryLimitMB int64, interval time.Duration) *Sampler {
	s := &Sampler{path: constants.CgroupMemoryCurrentFile, interval: interval}
	if memoryLimitMB > 0 {
		s.limitBytes = memoryLimitMB * 1024 * 1024
	}
	return s
}

// PeakBytes returns the highest memory.current value observed so far.
func (s *Sampler) PeakBytes() int64 {
	return s.peak.Load()
}

// Run polls until finished reports true or stop is closed, setting finished
// as soon as the configured byte limit is exceeded. It is meant to run in
// its own goroutine alongside the Deadline Timer; both share the same
// finished flag so either can cut the run short.
func (s *Sampler) Run(stop <-chan struct{}, finished *atomic.Bool) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if finished.Load() {
				return
			}
			current, ok := s.readCurrent()
			if !ok {
				continue
			}
			if current > s.peak.Load() {
				s.peak.Store(current)
			}
			if s.limitBytes > 0 && current > s.limitBytes {
				finished.Store(true)
				return
			}
		}
	}
}

// readCurrent re-opens and reads constants.CgroupMemoryCurrentFile from the
// start on every call, mirroring the original watchdog's seekg(0) pattern:
// the file's contents are a single integer that changes in place rather
// than being appended to, so a fresh read is the only way to see the
// current value.
func (s *Sampler) readCurrent() (int64, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		zap.L().Debug("cgroupmem: memory.current unavailable", zap.Error(err))
		return 0, false
	}

	value, err := strconv.ParseInt(string(bytes.TrimSpace(data)), 10, 64)
	if err != nil {
		zap.L().Warn("cgroupmem: unexpected memory.current contents", zap.ByteString("data", data))
		return 0, false
	}
	return value, true
}

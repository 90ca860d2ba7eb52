package supervisor

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/takoyaki65/dsa-watchdog/internal/proctree"
)

// deadline is the sole guaranteed terminator: it ticks until either
// it notices the elapsed time has crossed timeoutMS, or finished has
// already been flipped by some other monitor (memory breach, OLE), or reaped
// fires because the main flow's Wait already collected the child. Only in
// the first two cases does it check aliveness and kill: once reaped fires
// the pid has already been waited on, and probing or signaling it further
// would risk hitting a since-recycled pid. A timeoutMS of zero means no
// deadline; the loop then runs purely as the fallback terminator for the
// other monitors.
func runDeadline(pid int, timeoutMS int64, start time.Time, checkInterval time.Duration, finished *atomic.Bool, reaped <-chan struct{}) {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for !finished.Load() {
		if timeoutMS > 0 && time.Since(start).Milliseconds() >= timeoutMS {
			finished.Store(true)
			break
		}
		select {
		case <-reaped:
			return
		case <-ticker.C:
		}
	}

	select {
	case <-reaped:
		return
	default:
	}

	if proctree.Alive(pid) {
		zap.L().Debug("deadline: terminating process tree", zap.Int("pid", pid))
		proctree.Kill(pid)
	}
}

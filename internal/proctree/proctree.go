// Package proctree implements the Process-Tree Terminator. Given a root
// pid, it recursively enumerates and kills every
// descendant before killing the root itself, by reading /proc directly
// instead of shelling out to pgrep.
package proctree

import (
	"syscall"

	"github.com/prometheus/procfs"
	"go.uber.org/zap"
)

// Kill terminates pid and every one of its descendants with SIGKILL,
// post-order (children before parent), matching the original watchdog's
// kill_recursive. Per-process kill failures are swallowed: a process that
// has already exited between enumeration and kill is not an error.
func Kill(pid int) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		zap.L().Warn("proctree: cannot open /proc, killing root only", zap.Error(err), zap.Int("pid", pid))
		killOne(pid)
		return
	}

	for _, child := range children(fs, pid) {
		Kill(child)
	}
	killOne(pid)
}

// children returns the pids whose parent is pid, discovered by scanning
// every process in /proc and filtering on its reported PPID. This is the
// procfs equivalent of `pgrep -P pid`.
func children(fs procfs.FS, pid int) []int {
	procs, err := fs.AllProcs()
	if err != nil {
		zap.L().Warn("proctree: AllProcs failed", zap.Error(err))
		return nil
	}

	var out []int
	for _, p := range procs {
		stat, err := p.Stat()
		if err != nil {
			// Process likely exited mid-scan; not fatal to the traversal.
			continue
		}
		if stat.PPID == pid {
			out = append(out, p.PID)
		}
	}
	return out
}

func killOne(pid int) {
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
		zap.L().Debug("proctree: kill failed, process likely already exited", zap.Int("pid", pid), zap.Error(err))
	}
}

// Alive reports whether pid still exists, per the kill(pid, 0) probe the
// original watchdog uses (is_process_alive).
func Alive(pid int) bool {
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return err != syscall.ESRCH
}

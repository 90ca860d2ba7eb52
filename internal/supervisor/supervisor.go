// Package supervisor fuses the four concurrent concerns of a sandboxed run
// (fork/exec under a dropped-privilege credential, bounded stream capture,
// memory sampling, and deadline enforcement) into a single Run call that
// produces a model.Verdict.
package supervisor

import (
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/takoyaki65/dsa-watchdog/internal/cgroupmem"
	"github.com/takoyaki65/dsa-watchdog/internal/conf"
	"github.com/takoyaki65/dsa-watchdog/internal/constants"
	"github.com/takoyaki65/dsa-watchdog/internal/iosink"
	"github.com/takoyaki65/dsa-watchdog/internal/model"
	wderrors "github.com/takoyaki65/dsa-watchdog/pkg/errors"
)

// Run executes req.Command under /bin/sh -c as req.UID/req.GID, feeding it
// req.Stdin, and returns the resulting verdict. It never returns an error
// for a misbehaving child (TLE/MLE/OLE/non-zero exit are all carried inside
// the Verdict); it returns an error only when the supervisor itself could
// not stand up the child process (pipe, fork, or credential failure),
// matching the source's distinction between "request was rejected" and
// "request ran and the sandboxed program misbehaved".
//
// tuning supplies the ambient timing/sizing constants; pass conf.DefaultTuning()
// when the caller has no tuning file.
func Run(req *model.Request, tuning conf.Tuning) (*model.Verdict, error) {
	cmd := exec.Command(constants.ShellPath, "-c", req.Command)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{
			Gid: req.GID,
			Uid: req.UID,
		},
	}

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, wderrors.Wrap(wderrors.ErrCodePipeCreate, "create stdin pipe", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, wderrors.Wrap(wderrors.ErrCodePipeCreate, "create stdout pipe", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, wderrors.Wrap(wderrors.ErrCodePipeCreate, "create stderr pipe", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		zap.L().Error("supervisor: failed to start child", zap.Error(err))
		return nil, wderrors.Wrap(wderrors.ErrCodeFork, "start child process", err)
	}
	pid := cmd.Process.Pid
	zap.L().Info("supervisor: child started", zap.Int("pid", pid), zap.Uint32("uid", req.UID), zap.Uint32("gid", req.GID))

	var finished atomic.Bool
	var ole atomic.Bool
	stdoutSink := iosink.New(tuning.StdoutCapBytes)
	stderrSink := iosink.New(tuning.StderrCapBytes)
	sampler := cgroupmem.New(req.MemoryLimitMB, tuning.MemorySampleInterval)

	reaped := make(chan struct{})

	var monitors sync.WaitGroup
	monitors.Add(2)
	go func() {
		defer monitors.Done()
		runDeadline(pid, req.TimeoutMS, start, tuning.DeadlineCheckInterval, &finished, reaped)
	}()
	go func() {
		defer monitors.Done()
		stop := make(chan struct{})
		defer close(stop)
		sampler.Run(stop, &finished)
	}()

	var pumps sync.WaitGroup
	pumps.Add(2)
	go func() {
		defer pumps.Done()
		pump(stdoutPipe, stdoutSink, tuning.PumpBufferSize, &finished, true, &ole)
	}()
	go func() {
		defer pumps.Done()
		pump(stderrPipe, stderrSink, tuning.PumpBufferSize, &finished, false, &ole)
	}()

	writeStdin(stdinPipe, req.Stdin)

	// Drain must complete before Wait: os/exec closes the pipes once it
	// observes the child has exited, and reading from an already-closed
	// pipe after that race is undefined by the exec.Cmd contract.
	pumps.Wait()

	waitErr := cmd.Wait()
	elapsed := time.Since(start)
	close(reaped)
	finished.Store(true)
	monitors.Wait()

	verdict := &model.Verdict{
		ExitCode: exitCode(waitErr, cmd),
		Stdout:   string(stdoutSink.Snapshot()),
		Stderr:   string(stderrSink.Snapshot()),
		TimeMS:   elapsed.Milliseconds(),
		MemoryKB: sampler.PeakBytes() / 1024,
		OLE:      ole.Load(),
	}
	verdict.TLE = req.TimeoutMS > 0 && verdict.TimeMS >= req.TimeoutMS
	verdict.MLE = req.MemoryLimitMB > 0 && verdict.MemoryKB/1024 >= req.MemoryLimitMB

	zap.L().Debug("supervisor: run complete",
		zap.Int64("exitCode", verdict.ExitCode),
		zap.Int64("timeMS", verdict.TimeMS),
		zap.Int64("memoryKB", verdict.MemoryKB),
		zap.Bool("TLE", verdict.TLE),
		zap.Bool("MLE", verdict.MLE),
		zap.Bool("OLE", verdict.OLE),
	)
	return verdict, nil
}

// writeStdin feeds data to the child, tolerating short writes, and then
// closes the pipe so the child observes EOF. A write failure (the common
// case being the child exiting before reading all of it, giving EPIPE) is
// logged but not fatal to the run.
func writeStdin(w io.WriteCloser, data string) {
	defer w.Close()
	remaining := []byte(data)
	for len(remaining) > 0 {
		n, err := w.Write(remaining)
		if err != nil {
			zap.L().Debug("supervisor: stdin write stopped early", zap.Error(err))
			return
		}
		remaining = remaining[n:]
	}
}

// exitCode maps the process's termination into the exit_code convention of
// the kernel's exit value when it exited normally, or 128+signal when
// killed by a signal (SIGKILL from the Process-Tree Terminator yields the
// expected 137).
func exitCode(waitErr error, cmd *exec.Cmd) int64 {
	state := cmd.ProcessState
	if state == nil {
		return -1
	}
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		if waitErr == nil {
			return 0
		}
		return -1
	}
	switch {
	case status.Exited():
		return int64(status.ExitStatus())
	case status.Signaled():
		return int64(128 + int(status.Signal()))
	default:
		return -1
	}
}


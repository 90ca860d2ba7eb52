package supervisor

import (
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/takoyaki65/dsa-watchdog/internal/conf"
	"github.com/takoyaki65/dsa-watchdog/internal/model"
)

var testTuning = conf.DefaultTuning()

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("/bin/sh not found, skipping")
	}
}

func baseRequest(command, stdin string) *model.Request {
	return &model.Request{
		Command:       command,
		Stdin:         stdin,
		TimeoutMS:     2000,
		MemoryLimitMB: 256,
		UID:           uint32(os.Getuid()),
		GID:           uint32(os.Getgid()),
	}
}

func TestRunEchoRoundTrip(t *testing.T) {
	requireShell(t)

	req := baseRequest("cat", "hello")
	verdict, err := Run(req, testTuning)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if verdict.ExitCode != 0 {
		t.Fatalf("exit_code = %d, want 0", verdict.ExitCode)
	}
	if verdict.Stdout != "hello" {
		t.Fatalf("stdout = %q, want %q", verdict.Stdout, "hello")
	}
	if verdict.Stderr != "" {
		t.Fatalf("stderr = %q, want empty", verdict.Stderr)
	}
	if verdict.TLE || verdict.MLE || verdict.OLE {
		t.Fatalf("unexpected limit flags: %+v", verdict)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	requireShell(t)

	req := baseRequest("exit 7", "")
	verdict, err := Run(req, testTuning)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if verdict.ExitCode != 7 {
		t.Fatalf("exit_code = %d, want 7", verdict.ExitCode)
	}
}

func TestRunTimeoutTerminatesChild(t *testing.T) {
	requireShell(t)

	req := baseRequest("sleep 30", "")
	req.TimeoutMS = 200

	start := time.Now()
	verdict, err := Run(req, testTuning)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !verdict.TLE {
		t.Fatalf("expected TLE, got %+v", verdict)
	}
	if verdict.ExitCode != 137 {
		t.Fatalf("exit_code = %d, want 137 (SIGKILL)", verdict.ExitCode)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("timeout enforcement took too long: %v", elapsed)
	}
}

func TestRunSignaledExit(t *testing.T) {
	requireShell(t)

	req := baseRequest("kill -TERM $$", "")
	verdict, err := Run(req, testTuning)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if verdict.ExitCode != 128+15 {
		t.Fatalf("exit_code = %d, want %d (SIGTERM)", verdict.ExitCode, 128+15)
	}
}

func TestRunOutputFloodSetsOLE(t *testing.T) {
	requireShell(t)

	req := baseRequest("yes", "")
	req.TimeoutMS = 2000
	verdict, err := Run(req, testTuning)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !verdict.OLE {
		t.Fatalf("expected OLE, got %+v", verdict)
	}
	if !strings.Contains(verdict.Stdout, "truncated") {
		t.Fatalf("stdout does not carry the overflow marker: %q", verdict.Stdout[:min(80, len(verdict.Stdout))])
	}
	if len(verdict.Stdout) > 4*1024+100 {
		t.Fatalf("stdout exceeds capture cap: %d bytes", len(verdict.Stdout))
	}
}

func TestRunStderrOverflowDoesNotSetOLE(t *testing.T) {
	requireShell(t)

	// Flood stderr only; only a stdout overflow flips OLE.
	req := baseRequest("yes >&2", "")
	req.TimeoutMS = 2000
	verdict, err := Run(req, testTuning)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if verdict.OLE {
		t.Fatalf("stderr overflow must not set OLE, got %+v", verdict)
	}
}

func TestRunForkBombContained(t *testing.T) {
	requireShell(t)
	if testing.Short() {
		t.Skip("skipping fork-bomb containment test in -short mode")
	}

	req := baseRequest("sh -c 'while true; do sh -c \"sleep 30\" & done'", "")
	req.TimeoutMS = 300

	done := make(chan struct{})
	go func() {
		Run(req, testTuning)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return; the process tree was likely not fully contained")
	}
}

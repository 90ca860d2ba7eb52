package cgroupmem

import (
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func writeMem(t *testing.T, path string, bytesUsed int64) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strconv.FormatInt(bytesUsed, 10)), 0644); err != nil {
		t.Fatalf("write fake memory.current: %v", err)
	}
}

func TestSamplerTracksPeak(t *testing.T) {
	memFile := filepath.Join(t.TempDir(), "memory.current")
	writeMem(t, memFile, 1000)

	s := New(0, 5*time.Millisecond)
	s.path = memFile

	var finished atomic.Bool
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		s.Run(stop, &finished)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	writeMem(t, memFile, 5000)
	time.Sleep(30 * time.Millisecond)
	writeMem(t, memFile, 2000)
	time.Sleep(30 * time.Millisecond)

	close(stop)
	<-done

	if peak := s.PeakBytes(); peak != 5000 {
		t.Fatalf("peak = %d, want 5000", peak)
	}
	if finished.Load() {
		t.Fatal("finished should not be set: no limit was configured")
	}
}

func TestSamplerTripsOnLimitBreach(t *testing.T) {
	memFile := filepath.Join(t.TempDir(), "memory.current")
	writeMem(t, memFile, 1024*1024) // 1 MiB, within a 2 MiB limit

	s := New(2, 5*time.Millisecond) // 2 MiB limit
	s.path = memFile

	var finished atomic.Bool
	stop := make(chan struct{})
	defer close(stop)

	done := make(chan struct{})
	go func() {
		s.Run(stop, &finished)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	writeMem(t, memFile, 3*1024*1024) // breach

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sampler did not stop after breaching the limit")
	}

	if !finished.Load() {
		t.Fatal("finished flag should be set after breach")
	}
}

func TestSamplerMissingFileReportsZero(t *testing.T) {
	s := New(0, 5*time.Millisecond)
	s.path = filepath.Join(t.TempDir(), "does-not-exist")

	var finished atomic.Bool
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		s.Run(stop, &finished)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)
	<-done

	if s.PeakBytes() != 0 {
		t.Fatalf("peak = %d, want 0 when the cgroup file never existed", s.PeakBytes())
	}
	if finished.Load() {
		t.Fatal("finished must not be set just because the file is missing")
	}
}

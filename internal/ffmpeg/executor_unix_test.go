//go:build unix

package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	merrors "github.com/five82/montage/internal/errors"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// running reports whether pid exists and is not a zombie waiting for a
// reaper.
func running(pid int) bool {
	if unix.Kill(pid, 0) != nil {
		return false
	}
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return true
	}
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) == 0 || fields[0] != "Z"
}

func TestRun_NonzeroExitCarriesStderr(t *testing.T) {
	requireShell(t)

	err := Run(context.Background(), "sh", []string{"-c", "echo 'Unknown encoder' >&2; exit 3"}, Options{})

	var cmdErr *merrors.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() = %v, want CommandError", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if !strings.Contains(cmdErr.Stderr, "Unknown encoder") {
		t.Errorf("Stderr = %q, want encoder message", cmdErr.Stderr)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	err := Run(context.Background(), "/nonexistent/ffmpeg", nil, Options{})
	if !merrors.IsKind(err, merrors.KindCommand) {
		t.Errorf("Run() = %v, want command error", err)
	}
}

func TestStart_StdinPipe(t *testing.T) {
	requireShell(t)

	p, err := Start(context.Background(), "sh", []string{"-c", "wc -c >&2"}, Options{Stdin: true})
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if _, err := p.Stdin().Write(make([]byte, 1000)); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	if got := strings.TrimSpace(p.Stderr()); got != "1000" {
		t.Errorf("bytes received = %q, want 1000", got)
	}
}

func TestStart_CancelKillsProcessGroup(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	// The child sleep inherits the group; both must die.
	p, err := Start(ctx, "sh", []string{"-c", "sleep 30 & echo $! ready >&2; wait"}, Options{Stdin: true})
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}

	var child int
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if out := p.Stderr(); strings.HasSuffix(out, "ready") {
			_, _ = fmt.Sscan(out, &child)
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if child == 0 {
		t.Fatal("child pid not reported")
	}

	cancel()
	done := make(chan error, 1)
	go func() { done <- p.Wait() }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Wait() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}

	for time.Now().Before(deadline) {
		if !running(child) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("child process %d still running", child)
}

func TestProcess_Kill(t *testing.T) {
	requireShell(t)

	p, err := Start(context.Background(), "sh", []string{"-c", "sleep 30"}, Options{})
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if pid := p.Pid(); pid <= 0 || !running(pid) {
		t.Fatalf("Pid() = %d, want a running process", pid)
	}
	start := time.Now()
	p.Kill()
	if time.Since(start) > 5*time.Second {
		t.Error("Kill took too long")
	}
	if err := p.Wait(); err == nil {
		t.Error("Wait() after Kill = nil, want error")
	}
}

//go:build !windows

package process

import (
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func startGroupLeader(t *testing.T, script string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command("sh", "-c", script)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start process: %v", err)
	}
	// Give the process group time to be established
	time.Sleep(20 * time.Millisecond)
	return cmd
}

func TestKillProcessGroup_BasicTermination(t *testing.T) {
	cmd := startGroupLeader(t, "sleep 60")
	pid := cmd.Process.Pid

	err := KillProcessGroup(pid, KillOptions{GracePeriod: 100 * time.Millisecond})
	if err != nil {
		if err == syscall.EPERM {
			t.Skip("signal permissions restricted in this environment")
		}
		t.Errorf("KillProcessGroup returned error: %v", err)
	}

	_ = cmd.Wait()
	if err := syscall.Kill(pid, 0); err != syscall.ESRCH {
		t.Errorf("process still running after kill")
	}
}

func TestKillProcessGroup_EscalationToSIGKILL(t *testing.T) {
	cmd := startGroupLeader(t, "trap '' TERM; sleep 60")
	pid := cmd.Process.Pid

	start := time.Now()
	err := KillProcessGroup(pid, KillOptions{GracePeriod: 50 * time.Millisecond})
	elapsed := time.Since(start)
	if err != nil {
		if err == syscall.EPERM {
			t.Skip("signal permissions restricted in this environment")
		}
		t.Errorf("KillProcessGroup returned error: %v", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("returned too quickly: %v", elapsed)
	}

	_ = cmd.Wait()
	if err := syscall.Kill(pid, 0); err != syscall.ESRCH {
		t.Errorf("process still running after escalation")
	}
}

func TestSignalGroup_DeliversSignal(t *testing.T) {
	cmd := startGroupLeader(t, "sleep 60")
	pid := cmd.Process.Pid

	if !GroupAlive(pid) {
		t.Fatalf("expected group %d to be alive", pid)
	}
	if err := SignalGroup(pid, syscall.SIGTERM); err != nil {
		t.Fatalf("SignalGroup: %v", err)
	}

	err := cmd.Wait()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected ExitError, got %v", err)
	}
	ws := exitErr.Sys().(syscall.WaitStatus)
	if !ws.Signaled() || ws.Signal() != syscall.SIGTERM {
		t.Fatalf("expected SIGTERM exit, got %v", ws)
	}
}

func TestSignalGroup_GoneProcessIsNotAnError(t *testing.T) {
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run true: %v", err)
	}
	if err := SignalGroup(cmd.Process.Pid, syscall.SIGTERM); err != nil {
		t.Fatalf("expected nil for reaped process, got %v", err)
	}
	if GroupAlive(cmd.Process.Pid) {
		t.Fatalf("reaped process should not be alive")
	}
	if err := SignalGroup(0, syscall.SIGTERM); err != nil {
		t.Fatalf("pid 0 should be ignored, got %v", err)
	}
}

func TestIsProcessGone(t *testing.T) {
	if !IsProcessGone(syscall.ESRCH) || !IsProcessGone(syscall.ECHILD) {
		t.Fatal("ESRCH and ECHILD should mean gone")
	}
	if IsProcessGone(syscall.EPERM) {
		t.Fatal("EPERM is not gone")
	}
}

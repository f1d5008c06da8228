package nsnet

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// ReexecArg is the hidden argv[1] the container primitive passes to its own
// binary to become a pause-container's PID 1. cmd/skyctl checks for it before
// handing off to cobra.
const ReexecArg = "__pause_container__"

// Spawn forks a child that enters fresh mount/uts/ipc/pid/net namespaces,
// mounts an overlay rooted at rootfsDir over baseImage, sets its hostname to
// name, and blocks indefinitely. It returns the child's PID once the overlay
// mount has succeeded, and symlinks the child's network namespace to
// /run/netns/<name> so it can be entered by name.
func Spawn(rootfsDir, baseImage, name string) (int, error) {
	self, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("nsnet: resolve self binary: %w", err)
	}

	readyR, readyW, err := os.Pipe()
	if err != nil {
		return 0, fmt.Errorf("nsnet: create readiness pipe: %w", err)
	}
	defer readyR.Close()

	cmd := exec.Command(self, ReexecArg, rootfsDir, baseImage, name)
	cmd.ExtraFiles = []*os.File{readyW}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Cloneflags: syscall.CLONE_NEWNS |
			syscall.CLONE_NEWUTS |
			syscall.CLONE_NEWIPC |
			syscall.CLONE_NEWPID |
			syscall.CLONE_NEWNET,
	}

	logPath := filepath.Join(rootfsDir, "console.log")
	logFile, err := os.Create(logPath)
	if err != nil {
		readyW.Close()
		return 0, fmt.Errorf("nsnet: create console log %s: %w", logPath, err)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		readyW.Close()
		logFile.Close()
		return 0, fmt.Errorf("nsnet: spawn container %s: %w", name, err)
	}
	readyW.Close()
	pid := cmd.Process.Pid

	go func() {
		cmd.Wait()
		logFile.Close()
	}()

	if err := waitReady(readyR, 5*time.Second); err != nil {
		cmd.Process.Kill()
		return 0, fmt.Errorf("nsnet: container %s did not become ready: %w", name, err)
	}

	if err := linkNetns(pid, name); err != nil {
		cmd.Process.Kill()
		return 0, err
	}

	return pid, nil
}

// waitReady blocks until the reexec child closes its end of the readiness
// pipe (signaling the overlay mount and hostname have been set) or the
// deadline passes.
func waitReady(r *os.File, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		_, err := r.Read(buf)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil && err.Error() != "EOF" {
			return err
		}
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out waiting for readiness signal")
	}
}

// linkNetns symlinks a running container's network namespace so standard
// tooling (and nsnet.Guard.Enter) can reach it by name.
func linkNetns(pid int, name string) error {
	if err := os.MkdirAll("/run/netns", 0o755); err != nil {
		return fmt.Errorf("nsnet: create /run/netns: %w", err)
	}
	target := nsPath(name)
	os.Remove(target)
	src := fmt.Sprintf("/proc/%d/ns/net", pid)
	if err := os.Symlink(src, target); err != nil {
		return fmt.Errorf("nsnet: symlink netns %s: %w", name, err)
	}
	return nil
}

// Stop sends SIGKILL to a container's PID 1 and removes its netns symlink.
// Pause containers are never expected to shut down gracefully — clean is the
// only path that tears them down, so there is no SIGTERM grace period.
func Stop(pid int, name string) error {
	process, err := os.FindProcess(pid)
	if err == nil {
		process.Signal(syscall.SIGKILL)
	}
	os.Remove(nsPath(name))
	return nil
}

// IsRunning reports whether pid is alive via a signal-0 probe.
func IsRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

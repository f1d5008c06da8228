// Package nsnet implements the container and link primitives: spawning pause
// containers pinned to a namespace set, and shaping veth/vxlan links between them.
package nsnet

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// Guard holds the host network namespace open so a link op can enter a node's
// namespace and restore the host one afterward. One Guard is created at process
// startup and reused for every scoped entry.
//
// The host namespace handle is kept as the *os.File itself, not just its fd
// number: a bare int would leave the os.File unreferenced and eligible for
// GC, and os.File's finalizer closes the underlying fd when that happens —
// silently invalidating hostFd out from under every later Enter call.
type Guard struct {
	hostFile *os.File
}

// NewGuard opens and pins the calling process's current network namespace.
func NewGuard() (*Guard, error) {
	f, err := os.Open("/proc/self/ns/net")
	if err != nil {
		return nil, fmt.Errorf("nsnet: open host netns: %w", err)
	}
	return &Guard{hostFile: f}, nil
}

// Enter joins the network namespace named in /run/netns/<name>, runs fn, and
// restores the host namespace before returning, regardless of fn's outcome.
//
// Namespace entry is per-OS-thread on Linux, so the calling goroutine is locked
// to its current thread for the duration of the scope.
func (g *Guard) Enter(name string, fn func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	targetFd, err := os.Open(nsPath(name))
	if err != nil {
		return fmt.Errorf("nsnet: open netns %s: %w", name, err)
	}
	defer targetFd.Close()

	if err := unix.Setns(int(targetFd.Fd()), unix.CLONE_NEWNET); err != nil {
		return fmt.Errorf("nsnet: enter netns %s: %w", name, err)
	}

	restore := func() error {
		if err := unix.Setns(int(g.hostFile.Fd()), unix.CLONE_NEWNET); err != nil {
			return fmt.Errorf("nsnet: restore host netns: %w", err)
		}
		return nil
	}

	workErr := fn()
	restoreErr := restore()
	if workErr != nil {
		return workErr
	}
	return restoreErr
}

func nsPath(name string) string {
	return "/run/netns/" + name
}

package nsnet

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// PauseMain is the pause-container entrypoint: cmd/skyctl calls this directly
// when its own argv[1] is ReexecArg, before cobra ever sees the arguments.
// It never returns under normal operation — clean tears the container down
// with SIGKILL from the outside.
func PauseMain(rootfsDir, baseImage, name string) {
	readyFd := os.NewFile(3, "ready")

	if err := unix.Sethostname([]byte(name)); err != nil {
		fail(readyFd, fmt.Errorf("sethostname %s: %w", name, err))
	}

	dirs := NewOverlayDirs(rootfsDir, baseImage)
	if err := CreateOverlay(dirs); err != nil {
		fail(readyFd, err)
	}

	if readyFd != nil {
		readyFd.Close()
	}

	// Pause forever; the only way out is SIGKILL from clean.
	select {}
}

func fail(readyFd *os.File, err error) {
	fmt.Fprintln(os.Stderr, "nsnet: pause container setup:", err)
	if readyFd != nil {
		readyFd.Close()
	}
	os.Exit(1)
}

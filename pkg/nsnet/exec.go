package nsnet

import (
	"fmt"
	"os/exec"
)

// RunIn executes argv inside a node's full namespace set (mount, uts, ipc,
// pid, net) via nsenter, and returns its combined stdout+stderr.
func RunIn(pid int, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("nsnet: RunIn: empty argv")
	}
	nsenterArgs := append([]string{
		"-t", fmt.Sprintf("%d", pid),
		"-m", "-u", "-i", "-n", "-p",
		"--",
	}, argv...)

	cmd := exec.Command("nsenter", nsenterArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("nsnet: exec %v in pid %d: %w", argv, pid, err)
	}
	return string(out), nil
}

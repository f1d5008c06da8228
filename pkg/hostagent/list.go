package hostagent

import (
	"path/filepath"

	"github.com/starmesh-systems/starmesh/pkg/nsnet"
)

// NodeStatus is one row of `list` output.
type NodeStatus struct {
	Name    string
	Home    int
	Owned   bool
	PID     int
	Running bool
}

// List reports every node's home machine and, for owned nodes, its container
// PID and liveness.
func (a *Agent) List() ([]NodeStatus, error) {
	idx, err := LoadPIDIndex(a.pidIndexPath())
	if err != nil {
		return nil, err
	}

	var rows []NodeStatus
	for _, name := range a.Assignment.Names() {
		home, _ := a.Assignment.HomeOf(name)
		row := NodeStatus{Name: name, Home: home, Owned: a.owns(name)}
		if pid, ok := idx.PID(name); ok {
			row.PID = pid
			row.Running = nsnet.IsRunning(pid)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Routed returns the owned node names matching a shell-style glob selector,
// e.g. "SAT*" or "GS0".
func (a *Agent) Routed(selector string) ([]string, error) {
	var matched []string
	for _, name := range a.Assignment.Names() {
		if !a.owns(name) {
			continue
		}
		ok, err := filepath.Match(selector, name)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

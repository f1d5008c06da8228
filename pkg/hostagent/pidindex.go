package hostagent

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// unassignedToken marks a node this host does not own in the PID index file.
const unassignedToken = "NA"

// PIDIndex is the per-host mapping from node name to container PID, grouped
// into lines, one per `nodes` invocation, each holding that invocation's
// nodes in assignment order. Grouping carries no semantics beyond
// readability; every lookup is by name regardless of which line it's on.
type PIDIndex struct {
	path   string
	groups [][]string // raw "name:pid" / "NA" tokens, one slice per line
	pids   map[string]int
}

// NewPIDIndex creates an empty index rooted at path.
func NewPIDIndex(path string) *PIDIndex {
	return &PIDIndex{path: path, pids: make(map[string]int)}
}

// LoadPIDIndex reads an existing index file, or returns an empty one if it
// does not exist yet.
func LoadPIDIndex(path string) (*PIDIndex, error) {
	idx := NewPIDIndex(path)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hostagent: open pid index %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		idx.groups = append(idx.groups, tokens)
		for _, tok := range tokens {
			if tok == unassignedToken {
				continue
			}
			name, pidStr, ok := strings.Cut(tok, ":")
			if !ok {
				continue
			}
			pid, err := strconv.Atoi(pidStr)
			if err != nil {
				continue
			}
			idx.pids[name] = pid
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hostagent: scan pid index %s: %w", path, err)
	}
	return idx, nil
}

// StartGroup opens a new line in the index, e.g. one per orbital shell, with
// the final group reserved for ground stations.
func (idx *PIDIndex) StartGroup() {
	idx.groups = append(idx.groups, nil)
}

// AppendOwned records name's container PID in the current group.
func (idx *PIDIndex) AppendOwned(name string, pid int) {
	idx.ensureGroup()
	last := len(idx.groups) - 1
	idx.groups[last] = append(idx.groups[last], fmt.Sprintf("%s:%d", name, pid))
	idx.pids[name] = pid
}

// AppendUnassigned records that a node is not owned by this host.
func (idx *PIDIndex) AppendUnassigned() {
	idx.ensureGroup()
	last := len(idx.groups) - 1
	idx.groups[last] = append(idx.groups[last], unassignedToken)
}

func (idx *PIDIndex) ensureGroup() {
	if len(idx.groups) == 0 {
		idx.StartGroup()
	}
}

// PID returns the container PID for an owned node.
func (idx *PIDIndex) PID(name string) (int, bool) {
	pid, ok := idx.pids[name]
	return pid, ok
}

// Owned returns every node name this host has a recorded PID for.
func (idx *PIDIndex) Owned() []string {
	names := make([]string, 0, len(idx.pids))
	for name := range idx.pids {
		names = append(names, name)
	}
	return names
}

// Save persists the index to its path, one group per line.
func (idx *PIDIndex) Save() error {
	var b strings.Builder
	for _, group := range idx.groups {
		b.WriteString(strings.Join(group, " "))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(idx.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("hostagent: write pid index %s: %w", idx.path, err)
	}
	return nil
}

// Remove deletes the index file, part of clean.
func (idx *PIDIndex) Remove() error {
	if err := os.Remove(idx.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("hostagent: remove pid index %s: %w", idx.path, err)
	}
	return nil
}

package topo

import (
	"encoding/json"
	"fmt"
	"os"
)

// changeSetFile is the on-disk JSON shape the controller writes and every
// worker reads: each entry is a flat tuple rather than Go's canonicalized
// Edge/AddEntry/UpdateEntry structs, matching the wire shapes documented for
// the change-set file.
type changeSetFile struct {
	DelLinks    [][2]string   `json:"del_links"`
	UpdateLinks []updateTuple `json:"update_links"`
	AddLinks    []addTuple    `json:"add_links"`
}

type updateTuple struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	DelayMs float64 `json:"delay_ms"`
}

type addTuple struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	DelayMs float64 `json:"delay_ms"`
	Idx     int     `json:"idx"`
}

// SaveChangeSet writes cs to path in the wire shape.
func SaveChangeSet(cs ChangeSet, path string) error {
	var f changeSetFile
	for _, e := range cs.Del {
		f.DelLinks = append(f.DelLinks, [2]string{e.A, e.B})
	}
	for _, u := range cs.Update {
		f.UpdateLinks = append(f.UpdateLinks, updateTuple{A: u.A, B: u.B, DelayMs: u.DelayMs})
	}
	for _, a := range cs.Add {
		f.AddLinks = append(f.AddLinks, addTuple{A: a.A, B: a.B, DelayMs: a.DelayMs, Idx: a.Idx})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("topo: marshal change-set: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("topo: write change-set %s: %w", path, err)
	}
	return nil
}

// LoadChangeSet reads a change-set file from path.
func LoadChangeSet(path string) (ChangeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("topo: read change-set %s: %w", path, err)
	}

	var f changeSetFile
	if err := json.Unmarshal(data, &f); err != nil {
		return ChangeSet{}, fmt.Errorf("topo: parse change-set %s: %w", path, err)
	}

	var cs ChangeSet
	for _, d := range f.DelLinks {
		cs.Del = append(cs.Del, NewEdge(d[0], d[1]))
	}
	for _, u := range f.UpdateLinks {
		cs.Update = append(cs.Update, UpdateEntry{A: u.A, B: u.B, DelayMs: u.DelayMs})
	}
	for _, a := range f.AddLinks {
		cs.Add = append(cs.Add, AddEntry{A: a.A, B: a.B, DelayMs: a.DelayMs, Idx: a.Idx})
	}
	return cs, nil
}

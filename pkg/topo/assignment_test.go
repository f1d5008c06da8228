package topo

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleAssignment() *Assignment {
	return &Assignment{
		NodeName: []string{"SAT0", "SAT1", "GS0"},
		NodeMID:  []int{0, 1, 0},
		IP:       []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"},
	}
}

func TestAssignment_HomeOf(t *testing.T) {
	a := sampleAssignment()

	mid, ok := a.HomeOf("SAT1")
	if !ok || mid != 1 {
		t.Errorf("HomeOf(SAT1) = (%d, %v), want (1, true)", mid, ok)
	}

	if _, ok := a.HomeOf("SAT9"); ok {
		t.Error("HomeOf should report not-found for an unknown node")
	}
}

func TestAssignment_Owned(t *testing.T) {
	a := sampleAssignment()
	owned := a.Owned(0)
	if len(owned) != 2 {
		t.Fatalf("Owned(0) = %v, want 2 entries", owned)
	}
}

func TestAssignment_SaveAndLoad(t *testing.T) {
	a := sampleAssignment()
	path := filepath.Join(t.TempDir(), "assignment.json")

	if err := a.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadAssignment(path)
	if err != nil {
		t.Fatalf("LoadAssignment: %v", err)
	}
	if len(loaded.NodeName) != 3 {
		t.Errorf("loaded NodeName = %v", loaded.NodeName)
	}
}

func TestLoadAssignment_MismatchedLengths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	bad := []byte(`{"node_name":["SAT0"],"node_mid":[0,1],"ip":["10.0.0.1"]}`)
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadAssignment(path); err == nil {
		t.Error("expected error for mismatched node_name/node_mid lengths")
	}
}

func TestLoadAssignment_MissingFile(t *testing.T) {
	if _, err := LoadAssignment("/nonexistent/path.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

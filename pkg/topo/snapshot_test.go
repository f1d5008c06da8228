package topo

import "testing"

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Sat: []SatEntry{
			{ID: 0, Lat: 0, Lon: 0, Alt: 550},
			{ID: 1, Lat: 1, Lon: 1, Alt: 550},
		},
		Ground: []GroundEntry{
			{ID: 0, Lat: 40, Lon: -74, Alt: 0},
		},
		LinkISL: []LinkEntry{
			{Src: 0, Dst: 1},
			{Src: 1, Dst: 1}, // self-loop, must be dropped
		},
		LinkGSLUp: []LinkEntry{
			{Src: 0, Dst: 0},
		},
	}
}

func TestSnapshot_Validate(t *testing.T) {
	s := sampleSnapshot()
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	bad := sampleSnapshot()
	bad.Sat[1].ID = 7
	if err := bad.Validate(); err == nil {
		t.Error("expected validation error for mismatched sat id")
	}
}

func TestSnapshot_Edges_DropsSelfLoops(t *testing.T) {
	s := sampleSnapshot()
	edges := s.Edges()

	for _, e := range edges {
		if e.A == e.B {
			t.Errorf("self-loop edge not dropped: %+v", e)
		}
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges (1 ISL + 1 GSL), got %d: %+v", len(edges), edges)
	}
}

func TestSnapshot_Edges_GSLCanonicalized(t *testing.T) {
	s := sampleSnapshot()
	edges := s.Edges()

	found := false
	for _, e := range edges {
		if e.A == "GS0" && e.B == "SAT0" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected GS0-SAT0 GSL edge canonicalized with GS first, got %+v", edges)
	}
}

func TestSnapshot_NodeKinds(t *testing.T) {
	s := sampleSnapshot()
	kinds := s.NodeKinds()

	if kinds["SAT0"] != KindSatellite {
		t.Error("SAT0 should be KindSatellite")
	}
	if kinds["GS0"] != KindGround {
		t.Error("GS0 should be KindGround")
	}
}

func TestSnapshot_Positions(t *testing.T) {
	s := sampleSnapshot()
	pos := s.Positions()

	if pos["SAT1"].LonDeg != 1 {
		t.Errorf("SAT1 lon = %f, want 1", pos["SAT1"].LonDeg)
	}
	if pos["GS0"].LatDeg != 40 {
		t.Errorf("GS0 lat = %f, want 40", pos["GS0"].LatDeg)
	}
}

func TestEdge_IsGSL(t *testing.T) {
	s := sampleSnapshot()
	kindOf := func(name string) Kind { return s.NodeKinds()[name] }

	isl := NewEdge("SAT0", "SAT1")
	if isl.IsGSL(kindOf) {
		t.Error("SAT-SAT edge should not be IsGSL")
	}

	gsl := NewEdge("GS0", "SAT0")
	if !gsl.IsGSL(kindOf) {
		t.Error("GS-SAT edge should be IsGSL")
	}
}

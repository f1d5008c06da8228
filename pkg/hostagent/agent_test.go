package hostagent

import (
	"testing"

	"github.com/starmesh-systems/starmesh/pkg/topo"
)

func testAgent(machineID int) *Agent {
	assignment := &topo.Assignment{
		NodeName: []string{"SAT0", "SAT1", "GS0"},
		NodeMID:  []int{0, 1, 0},
		IP:       []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"},
	}
	return &Agent{
		MachineID:  machineID,
		WorkDir:    "/tmp/starmesh-test",
		Assignment: assignment,
		NodeKinds:  kindsFromNames(assignment.Names()),
	}
}

func TestKindsFromNames(t *testing.T) {
	kinds := kindsFromNames([]string{"SAT0", "GS3"})
	if kinds["SAT0"] != topo.KindSatellite {
		t.Error("SAT0 should be KindSatellite")
	}
	if kinds["GS3"] != topo.KindGround {
		t.Error("GS3 should be KindGround")
	}
}

func TestAgent_Owns(t *testing.T) {
	a := testAgent(0)
	if !a.owns("SAT0") {
		t.Error("SAT0 is home(0), agent is machine 0: should own it")
	}
	if a.owns("SAT1") {
		t.Error("SAT1 is home(1), agent is machine 0: should not own it")
	}
	if a.owns("SAT9") {
		t.Error("unknown node should not be owned")
	}
}

func TestAgent_OwnershipOf(t *testing.T) {
	a := testAgent(0)

	if got := a.ownershipOf("SAT0", "GS0"); got != ownBoth {
		t.Errorf("ownershipOf(SAT0, GS0) = %v, want ownBoth (both home 0)", got)
	}
	if got := a.ownershipOf("SAT0", "SAT1"); got != ownA {
		t.Errorf("ownershipOf(SAT0, SAT1) = %v, want ownA", got)
	}
	if got := a.ownershipOf("SAT1", "SAT0"); got != ownB {
		t.Errorf("ownershipOf(SAT1, SAT0) = %v, want ownB", got)
	}
}

func TestAgent_OwnershipOf_MachineOne(t *testing.T) {
	a := testAgent(1)
	if got := a.ownershipOf("SAT0", "GS0"); got != ownNeither {
		t.Errorf("ownershipOf(SAT0, GS0) on machine 1 = %v, want ownNeither", got)
	}
	if got := a.ownershipOf("SAT0", "SAT1"); got != ownB {
		t.Errorf("ownershipOf(SAT0, SAT1) on machine 1 = %v, want ownB", got)
	}
}

func TestAgent_Routed(t *testing.T) {
	a := testAgent(0)
	matched, err := a.Routed("SAT*")
	if err != nil {
		t.Fatalf("Routed: %v", err)
	}
	if len(matched) != 1 || matched[0] != "SAT0" {
		t.Errorf("Routed(SAT*) on machine 0 = %v, want [SAT0]", matched)
	}

	matched, err = a.Routed("GS*")
	if err != nil {
		t.Fatalf("Routed: %v", err)
	}
	if len(matched) != 1 || matched[0] != "GS0" {
		t.Errorf("Routed(GS*) on machine 0 = %v, want [GS0]", matched)
	}
}

func TestAgent_PeerIP(t *testing.T) {
	a := testAgent(0)
	ip, err := a.peerIP("SAT1")
	if err != nil {
		t.Fatalf("peerIP: %v", err)
	}
	if ip != "10.0.0.2" {
		t.Errorf("peerIP(SAT1) = %q, want 10.0.0.2", ip)
	}

	if _, err := a.peerIP("SAT9"); err == nil {
		t.Error("expected error for unknown peer")
	}
}

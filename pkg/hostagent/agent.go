// Package hostagent implements the Host Agent: the verb-dispatched worker
// process the Topology Controller invokes on every machine to converge that
// machine's slice of node containers and links to the latest change-set.
package hostagent

import (
	"path/filepath"

	"github.com/starmesh-systems/starmesh/pkg/nsnet"
	"github.com/starmesh-systems/starmesh/pkg/topo"
)

// Agent holds everything a verb invocation needs: this host's identity, its
// working directory, the fixed placement, and the namespace-entry guard.
type Agent struct {
	MachineID  int
	WorkDir    string
	BaseImage  string
	Assignment *topo.Assignment
	NodeKinds  map[string]topo.Kind
	Guard      *nsnet.Guard
}

// New constructs an Agent for one verb invocation, loading the assignment
// file from workDir.
func New(machineID int, workDir, baseImage string) (*Agent, error) {
	assignment, err := topo.LoadAssignment(filepath.Join(workDir, "assignment.json"))
	if err != nil {
		return nil, err
	}
	guard, err := nsnet.NewGuard()
	if err != nil {
		return nil, err
	}
	return &Agent{
		MachineID:  machineID,
		WorkDir:    workDir,
		BaseImage:  baseImage,
		Assignment: assignment,
		NodeKinds:  kindsFromNames(assignment.Names()),
		Guard:      guard,
	}, nil
}

// kindsFromNames infers Kind from the naming convention ("SAT*" vs "GS*"),
// since the assignment file carries only names, machine ids, and addresses.
func kindsFromNames(names []string) map[string]topo.Kind {
	kinds := make(map[string]topo.Kind, len(names))
	for _, n := range names {
		if len(n) >= 2 && n[:2] == "GS" {
			kinds[n] = topo.KindGround
		} else {
			kinds[n] = topo.KindSatellite
		}
	}
	return kinds
}

func (a *Agent) owns(name string) bool {
	mid, ok := a.Assignment.HomeOf(name)
	return ok && mid == a.MachineID
}

// ownership applies the rule from §4.3: exactly one endpoint owned means a
// single-sided op from that endpoint; both owned means a two-sided intra-host
// op; neither owned means a no-op.
type ownership int

const (
	ownNeither ownership = iota
	ownA
	ownB
	ownBoth
)

func (a *Agent) ownershipOf(nameA, nameB string) ownership {
	oa, ob := a.owns(nameA), a.owns(nameB)
	switch {
	case oa && ob:
		return ownBoth
	case oa:
		return ownA
	case ob:
		return ownB
	default:
		return ownNeither
	}
}

func (a *Agent) nodeDir(name string) string {
	return filepath.Join(a.WorkDir, "nodes", name)
}

func (a *Agent) pidIndexPath() string {
	return filepath.Join(a.WorkDir, "pidindex")
}

func (a *Agent) damageFilePath() string {
	return filepath.Join(a.WorkDir, "damage")
}

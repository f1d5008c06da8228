// Package topo implements the constellation data model and the topology diff engine:
// turning a raw snapshot from the constellation service into the del/update/add
// change-set a Host Agent applies.
package topo

import "fmt"

// Kind distinguishes a satellite node from a ground station.
type Kind int

const (
	KindSatellite Kind = iota
	KindGround
)

// Node is a stable network participant. Immutable after construction.
type Node struct {
	Name  string // "SAT0", "GS3"
	Kind  Kind
	Shell int // orbital shell id, satellites only
	Home  int // machine id hosting this node's container, fixed for the run
}

// Machine is a worker host in the fleet.
type Machine struct {
	ID   int
	Addr string // reachable address (host or host:port)
	Dir  string // working directory on the host
}

// Position is a node's instantaneous geodetic position.
type Position struct {
	LatDeg float64
	LonDeg float64
	AltKm  float64
}

// Edge is an undirected link between two node names, canonicalized so the
// lexicographically smaller name is always A.
type Edge struct {
	A, B string
}

// NewEdge canonicalizes (n1, n2) into an Edge. Panics on a self-loop — the caller
// is expected to have already filtered those out, as the constellation feed does.
func NewEdge(n1, n2 string) Edge {
	if n1 == n2 {
		panic(fmt.Sprintf("topo: self-loop edge %q", n1))
	}
	if n1 < n2 {
		return Edge{A: n1, B: n2}
	}
	return Edge{A: n2, B: n1}
}

// IsGSL reports whether an edge connects a satellite and a ground station, given
// a name→Kind lookup. ISLs are satellite-to-satellite.
func (e Edge) IsGSL(kindOf func(name string) Kind) bool {
	return kindOf(e.A) != kindOf(e.B)
}

// LinkState is what the diff engine remembers about a live link between ticks.
type LinkState struct {
	Idx         int
	LastDelayMs float64
}

// AddEntry is one element of a change-set's add list.
type AddEntry struct {
	A, B    string
	DelayMs float64
	Idx     int
}

// UpdateEntry is one element of a change-set's update list.
type UpdateEntry struct {
	A, B    string
	DelayMs float64
}

// ChangeSet is what the Topology Controller produces each tick and every Host
// Agent consumes.
type ChangeSet struct {
	Del    []Edge
	Update []UpdateEntry
	Add    []AddEntry
}

func (c ChangeSet) String() string {
	return fmt.Sprintf("ChangeSet{del=%d, update=%d, add=%d}", len(c.Del), len(c.Update), len(c.Add))
}

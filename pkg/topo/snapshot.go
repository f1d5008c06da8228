package topo

import (
	"fmt"
)

// SatEntry and GroundEntry mirror the constellation service's per-node JSON shape.
type SatEntry struct {
	ID  int     `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

type GroundEntry struct {
	ID  int     `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// LinkEntry is a raw {src,dst} pair as reported by the constellation service,
// both for ISLs (src/dst are satellite ids) and GSLs (src is a ground id, dst is
// a satellite id).
type LinkEntry struct {
	Src int `json:"src"`
	Dst int `json:"dst"`
}

// Snapshot is the raw constellation feed for one tick.
type Snapshot struct {
	Sat       []SatEntry    `json:"sat"`
	Ground    []GroundEntry `json:"ground"`
	LinkISL   []LinkEntry   `json:"link_ISL"`
	LinkGSLUp []LinkEntry   `json:"link_GSL_Up"`
}

// Validate checks the invariants the rest of the system relies on:
// sat[i].id == i and ground[i].id == i.
func (s *Snapshot) Validate() error {
	for i, sat := range s.Sat {
		if sat.ID != i {
			return fmt.Errorf("sat[%d].id == %d, expected %d", i, sat.ID, i)
		}
	}
	for i, gs := range s.Ground {
		if gs.ID != i {
			return fmt.Errorf("ground[%d].id == %d, expected %d", i, gs.ID, i)
		}
	}
	return nil
}

// SatName and GroundName produce the stable textual node name for a given index.
func SatName(id int) string    { return fmt.Sprintf("SAT%d", id) }
func GroundName(id int) string { return fmt.Sprintf("GS%d", id) }

// NodeKinds returns a name→Kind lookup covering every node in the snapshot.
func (s *Snapshot) NodeKinds() map[string]Kind {
	kinds := make(map[string]Kind, len(s.Sat)+len(s.Ground))
	for i := range s.Sat {
		kinds[SatName(i)] = KindSatellite
	}
	for i := range s.Ground {
		kinds[GroundName(i)] = KindGround
	}
	return kinds
}

// Positions returns a name→Position lookup covering every node in the snapshot.
func (s *Snapshot) Positions() map[string]Position {
	pos := make(map[string]Position, len(s.Sat)+len(s.Ground))
	for i, sat := range s.Sat {
		pos[SatName(i)] = Position{LatDeg: sat.Lat, LonDeg: sat.Lon, AltKm: sat.Alt}
	}
	for i, gs := range s.Ground {
		pos[GroundName(i)] = Position{LatDeg: gs.Lat, LonDeg: gs.Lon, AltKm: gs.Alt}
	}
	return pos
}

// Edges builds the canonical edge set for this snapshot: ISLs from link_ISL
// (self-loops dropped) plus GSLs from link_GSL_Up.
func (s *Snapshot) Edges() []Edge {
	edges := make([]Edge, 0, len(s.LinkISL)+len(s.LinkGSLUp))
	for _, isl := range s.LinkISL {
		if isl.Src == isl.Dst {
			continue
		}
		edges = append(edges, NewEdge(SatName(isl.Src), SatName(isl.Dst)))
	}
	for _, gsl := range s.LinkGSLUp {
		edges = append(edges, NewEdge(GroundName(gsl.Src), SatName(gsl.Dst)))
	}
	return edges
}

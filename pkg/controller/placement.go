package controller

import (
	"fmt"
	"math/rand"

	"github.com/starmesh-systems/starmesh/pkg/settings"
	"github.com/starmesh-systems/starmesh/pkg/topo"
)

// InitialPlacement computes the fixed-for-the-run node→machine assignment
// from the first snapshot. Every satellite is assigned a machine uniformly
// at random; every ground station inherits the machine of a satellite it
// uplinks to in this snapshot, falling back to uniform-random if it has no
// uplink yet.
func InitialPlacement(snap *topo.Snapshot, machines []settings.MachineConfig, r *rand.Rand) (*topo.Assignment, error) {
	if len(machines) == 0 {
		return nil, fmt.Errorf("controller: placement requires at least one machine")
	}

	satHome := make([]int, len(snap.Sat))
	for i := range snap.Sat {
		satHome[i] = r.Intn(len(machines))
	}

	groundHome := make([]int, len(snap.Ground))
	groundAssigned := make([]bool, len(snap.Ground))
	for _, gsl := range snap.LinkGSLUp {
		if gsl.Src < 0 || gsl.Src >= len(snap.Ground) {
			continue
		}
		if gsl.Dst < 0 || gsl.Dst >= len(snap.Sat) {
			continue
		}
		if groundAssigned[gsl.Src] {
			continue
		}
		groundHome[gsl.Src] = satHome[gsl.Dst]
		groundAssigned[gsl.Src] = true
	}
	for i := range snap.Ground {
		if !groundAssigned[i] {
			groundHome[i] = r.Intn(len(machines))
		}
	}

	a := &topo.Assignment{}
	// Satellites first, then ground stations, both in index order: a
	// deterministic, reviewable layout even though the homes themselves are
	// randomized.
	for i := range snap.Sat {
		a.NodeName = append(a.NodeName, topo.SatName(i))
		a.NodeMID = append(a.NodeMID, satHome[i])
		a.IP = append(a.IP, machines[satHome[i]].Host)
	}
	for i := range snap.Ground {
		a.NodeName = append(a.NodeName, topo.GroundName(i))
		a.NodeMID = append(a.NodeMID, groundHome[i])
		a.IP = append(a.IP, machines[groundHome[i]].Host)
	}
	return a, nil
}

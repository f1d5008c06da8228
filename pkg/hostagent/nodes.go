package hostagent

import (
	"github.com/starmesh-systems/starmesh/pkg/nsnet"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

// gcThresh1/2/3 are the raised neighbor-table limits applied before spawning
// any container, so dense constellations don't silently drop ARP/NDP entries.
const (
	gcThresh1 = 4096
	gcThresh2 = 8192
	gcThresh3 = 16384
)

// Nodes idempotently ensures every node this host owns has a running
// container, and records NA placeholders for the rest so the PID index stays
// aligned with the full node list across hosts.
func (a *Agent) Nodes() error {
	log := util.WithHost(a.MachineID)

	if err := nsnet.RaiseARPThresholds(gcThresh1, gcThresh2, gcThresh3); err != nil {
		log.WithError(err).Warn("could not raise ARP thresholds")
	}

	idx, err := LoadPIDIndex(a.pidIndexPath())
	if err != nil {
		return err
	}
	idx.StartGroup()

	spawned := 0
	for _, name := range a.Assignment.Names() {
		if !a.owns(name) {
			idx.AppendUnassigned()
			continue
		}
		if _, already := idx.PID(name); already {
			continue
		}

		pid, err := nsnet.Spawn(a.nodeDir(name), a.BaseImage, name)
		if err != nil {
			return util.NewSpawnError(name, err)
		}
		idx.AppendOwned(name, pid)
		spawned++

		if err := a.Guard.Enter(name, func() error {
			return nsnet.EnableForwarding()
		}); err != nil {
			return util.NewSpawnError(name, err)
		}
	}

	if err := idx.Save(); err != nil {
		return err
	}
	log.WithField("spawned", spawned).Info("nodes converged")
	return nil
}

package hostagent

import (
	"time"

	"github.com/starmesh-systems/starmesh/pkg/audit"
	"github.com/starmesh-systems/starmesh/pkg/nsnet"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

// declaredLoss is the loss restored by recovery. The topology feed carries no
// per-link loss figure, so the only well-grounded default is zero — the
// system otherwise never declares lossy links outside a damage episode.
const declaredLoss = 0

// Damage appends names to the persistent damage file and forces 100% loss
// on every netem qdisc inside each node's namespace, preserving delay.
func (a *Agent) Damage(names []string) error {
	start := time.Now()
	event := audit.NewEvent(0, a.MachineID, "damage")

	df, err := LoadDamageFile(a.damageFilePath())
	if err != nil {
		audit.Log(event.WithDuration(time.Since(start)).WithError(err))
		return err
	}
	if err := df.Add(names...); err != nil {
		audit.Log(event.WithDuration(time.Since(start)).WithError(err))
		return err
	}

	var lastErr error
	for _, name := range names {
		if !a.owns(name) {
			continue
		}
		if err := a.forceLoss(name, 100); err != nil {
			lastErr = err
			util.WithNode(name).WithError(err).Error("damage: force loss failed")
		}
	}

	event.WithDuration(time.Since(start))
	if lastErr != nil {
		audit.Log(event.WithError(lastErr))
	} else {
		audit.Log(event.WithSuccess())
	}
	return nil
}

// Recovery restores the declared loss on every node in the damage file and
// deletes the file.
func (a *Agent) Recovery() error {
	start := time.Now()
	event := audit.NewEvent(0, a.MachineID, "recovery")

	df, err := LoadDamageFile(a.damageFilePath())
	if err != nil {
		audit.Log(event.WithDuration(time.Since(start)).WithError(err))
		return err
	}

	var lastErr error
	for _, name := range df.Names() {
		if !a.owns(name) {
			continue
		}
		if err := a.forceLoss(name, declaredLoss); err != nil {
			lastErr = err
			util.WithNode(name).WithError(err).Error("recovery: restore loss failed")
		}
	}

	clearErr := df.Clear()
	event.WithDuration(time.Since(start))
	switch {
	case clearErr != nil:
		audit.Log(event.WithError(clearErr))
	case lastErr != nil:
		audit.Log(event.WithError(lastErr))
	default:
		audit.Log(event.WithSuccess())
	}
	return clearErr
}

func (a *Agent) forceLoss(name string, lossPct float64) error {
	return a.Guard.Enter(name, func() error {
		ifaces, err := nsnet.ListPeerInterfaces()
		if err != nil {
			return err
		}
		for _, ifName := range ifaces {
			delay, err := nsnet.QdiscDelay(ifName)
			if err != nil {
				return err
			}
			if err := nsnet.SetLossPreservingDelay(ifName, delay, lossPct); err != nil {
				return err
			}
		}
		return nil
	})
}

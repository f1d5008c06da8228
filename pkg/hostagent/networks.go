package hostagent

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/starmesh-systems/starmesh/pkg/audit"
	"github.com/starmesh-systems/starmesh/pkg/nsnet"
	"github.com/starmesh-systems/starmesh/pkg/topo"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

// Networks applies the change-set for one tick, in del → update → add order
// so a deleted link never blocks an add reusing its idx, and an update never
// fires on an interface about to be deleted.
func (a *Agent) Networks(tick int64) error {
	start := time.Now()
	log := util.WithTick(tick).WithField("machine", a.MachineID)

	cs, err := topo.LoadChangeSet(a.changeSetPath(tick))
	if err != nil {
		audit.Log(audit.NewEvent(tick, a.MachineID, "networks").WithDuration(time.Since(start)).WithError(err))
		return err
	}

	damage, err := LoadDamageFile(a.damageFilePath())
	if err != nil {
		audit.Log(audit.NewEvent(tick, a.MachineID, "networks").WithDuration(time.Since(start)).WithError(err))
		return err
	}

	var dels, updates, adds int
	var lastErr error

	for _, e := range cs.Del {
		switch {
		case a.owns(e.A):
			if err := nsnet.Del(a.Guard, e.A, e.B); err != nil {
				lastErr = util.NewLinkOpError("del", e.A, e.B, err)
				log.WithError(lastErr).Error("del failed")
				continue
			}
		case a.owns(e.B):
			if err := nsnet.Del(a.Guard, e.B, e.A); err != nil {
				lastErr = util.NewLinkOpError("del", e.B, e.A, err)
				log.WithError(lastErr).Error("del failed")
				continue
			}
		default:
			continue
		}
		dels++
	}

	for _, u := range cs.Update {
		p := nsnet.LinkParams{DelayMs: u.DelayMs}
		if a.owns(u.A) {
			if err := nsnet.Update(a.Guard, u.A, u.B, p, damage.Contains(u.A)); err != nil {
				lastErr = util.NewLinkOpError("update", u.A, u.B, err)
				log.WithError(lastErr).Error("update failed")
			} else {
				updates++
			}
		}
		if a.owns(u.B) {
			if err := nsnet.Update(a.Guard, u.B, u.A, p, damage.Contains(u.B)); err != nil {
				lastErr = util.NewLinkOpError("update", u.B, u.A, err)
				log.WithError(lastErr).Error("update failed")
			} else {
				updates++
			}
		}
	}

	for _, ad := range cs.Add {
		p := nsnet.LinkParams{DelayMs: ad.DelayMs}
		edge := topo.NewEdge(ad.A, ad.B)
		isGSL := edge.IsGSL(func(name string) topo.Kind { return a.NodeKinds[name] })

		switch a.ownershipOf(ad.A, ad.B) {
		case ownBoth:
			if err := nsnet.AddIntra(a.Guard, ad.A, ad.B, ad.Idx, isGSL, p); err != nil {
				lastErr = util.NewLinkOpError("add_intra", ad.A, ad.B, err)
				log.WithError(lastErr).Error("add_intra failed")
				continue
			}
		case ownA:
			peerIP, err := a.peerIP(ad.B)
			if err != nil {
				lastErr = util.NewLinkOpError("add_inter", ad.A, ad.B, err)
				log.WithError(lastErr).Error("add_inter failed")
				continue
			}
			if err := nsnet.AddInter(a.Guard, ad.Idx, isGSL, ad.A, ad.B, peerIP, p); err != nil {
				lastErr = util.NewLinkOpError("add_inter", ad.A, ad.B, err)
				log.WithError(lastErr).Error("add_inter failed")
				continue
			}
		case ownB:
			peerIP, err := a.peerIP(ad.A)
			if err != nil {
				lastErr = util.NewLinkOpError("add_inter", ad.B, ad.A, err)
				log.WithError(lastErr).Error("add_inter failed")
				continue
			}
			if err := nsnet.AddInter(a.Guard, ad.Idx, isGSL, ad.B, ad.A, peerIP, p); err != nil {
				lastErr = util.NewLinkOpError("add_inter", ad.B, ad.A, err)
				log.WithError(lastErr).Error("add_inter failed")
				continue
			}
		default:
			continue
		}
		adds++
	}

	log.WithFields(map[string]interface{}{
		"del": dels, "update": updates, "add": adds,
	}).Info("networks applied")

	event := audit.NewEvent(tick, a.MachineID, "networks").
		WithLinkCounts(adds, updates, dels).
		WithDuration(time.Since(start))
	if lastErr != nil {
		audit.Log(event.WithError(lastErr))
	} else {
		audit.Log(event.WithSuccess())
	}

	// A single bad interface must not strand the rest of the tick: every op
	// above logs and continues. The verb still surfaces the last failure so
	// the controller sees this worker's tick exit non-zero.
	return lastErr
}

func (a *Agent) peerIP(peerName string) (string, error) {
	mid, ok := a.Assignment.HomeOf(peerName)
	if !ok {
		return "", fmt.Errorf("hostagent: no home machine recorded for %s", peerName)
	}
	ip, ok := a.Assignment.IPOf(mid)
	if !ok {
		return "", fmt.Errorf("hostagent: no address recorded for machine %d", mid)
	}
	return ip, nil
}

func (a *Agent) changeSetPath(tick int64) string {
	return filepath.Join(a.WorkDir, "changesets", strconv.FormatInt(tick, 10)+".json")
}

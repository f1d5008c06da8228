package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/starmesh-systems/starmesh/pkg/audit"
	"github.com/starmesh-systems/starmesh/pkg/telemetry"
	"github.com/starmesh-systems/starmesh/pkg/topo"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

// tick runs one pacemaker iteration: placement (first call only), fetch,
// diff, fan-out, barrier, commit. A transient fetch failure or schema
// violation is returned to the caller for logging; last_links is only
// advanced on full success of the fetch+diff step.
func (c *Controller) tick(ctx context.Context, now time.Time) error {
	start := time.Now()
	tickID := now.UnixMilli()

	snap, err := FetchSnapshot(ctx, c.Config.APIURL, c.Config.Constellation, now)
	if err != nil {
		return err
	}

	if c.assignment == nil {
		a, err := InitialPlacement(snap, c.Config.Machines, c.Rand)
		if err != nil {
			return fmt.Errorf("controller: initial placement: %w", err)
		}
		c.assignment = a
		if err := c.assignment.Save(c.localAssignmentPath()); err != nil {
			return err
		}
		if err := c.broadcastAssignment(ctx); err != nil {
			return err
		}
		if err := c.broadcastVerb(ctx, "nodes", nil); err != nil {
			util.Logger.WithError(err).Error("nodes fan-out had failures")
		}
	}

	curr := snap.Edges()
	positions := snap.Positions()
	cs := c.Engine.Diff(c.lastLinks, curr, func(name string) topo.Position { return positions[name] })

	csPath := c.localChangeSetPath(tickID)
	if err := topo.SaveChangeSet(cs, csPath); err != nil {
		return err
	}

	okCount, failCount := c.fanOutTick(ctx, tickID, csPath)

	c.lastLinks = curr

	if c.Audit != nil {
		// MachineID is -1: this event records the controller's own commit
		// decision, distinct from each worker's own "networks" HA invocation
		// record (which that worker appends to its own audit log).
		c.Audit.Log(audit.NewEvent(tickID, -1, "tick_commit").
			WithLinkCounts(len(cs.Add), len(cs.Update), len(cs.Del)).
			WithDuration(time.Since(start)).
			WithSuccess())
	}
	c.Telem.Publish(ctx, telemetry.NewTickSummary(tickID, len(cs.Del), len(cs.Update), len(cs.Add), time.Since(start), okCount, failCount))

	return nil
}

// broadcastAssignment pushes the assignment file to every worker.
func (c *Controller) broadcastAssignment(ctx context.Context) error {
	data, err := readLocalFile(c.localAssignmentPath())
	if err != nil {
		return err
	}
	return c.forEachWorker(func(w *worker) error {
		remote := w.cfg.Dir + "/" + RemoteAssignmentFile
		return w.transport.PushFile(ctx, remote, data)
	})
}

// fanOutTick pushes tick's change-set to every worker and runs `networks
// <tick>` on each, barriering on all completions before returning.
func (c *Controller) fanOutTick(ctx context.Context, tick int64, csPath string) (ok, failed int) {
	data, err := readLocalFile(csPath)
	if err != nil {
		util.WithTick(tick).WithError(err).Error("reading local change-set")
		return 0, len(c.workers)
	}

	var mu sync.Mutex
	err = c.forEachWorker(func(w *worker) error {
		remote := w.cfg.Dir + "/" + RemoteChangeSetPath(tick)
		if err := w.transport.PushFile(ctx, remote, data); err != nil {
			return util.NewWorkerError(w.id, w.cfg.Host, err)
		}
		cmd := fmt.Sprintf("skyctl ha networks %d %s %d", w.id, w.cfg.Dir, tick)
		if out, err := w.transport.Exec(ctx, cmd); err != nil {
			return util.NewWorkerError(w.id, w.cfg.Host, fmt.Errorf("%w: %s", err, out))
		}
		mu.Lock()
		ok++
		mu.Unlock()
		return nil
	})
	failed = len(c.workers) - ok
	if err != nil {
		util.WithTick(tick).WithError(err).Warn("some workers failed this tick")
	}
	return ok, failed
}

// broadcastVerb runs verb with args on every worker, barriering on completion.
func (c *Controller) broadcastVerb(ctx context.Context, verb string, args []string) error {
	return c.forEachWorker(func(w *worker) error {
		cmd := fmt.Sprintf("skyctl ha %s %d %s", verb, w.id, w.cfg.Dir)
		for _, a := range args {
			cmd += " " + a
		}
		if out, err := w.transport.Exec(ctx, cmd); err != nil {
			return util.NewWorkerError(w.id, w.cfg.Host, fmt.Errorf("%w: %s", err, out))
		}
		return nil
	})
}

// forEachWorker runs fn against every worker in parallel and returns the
// first error encountered, mirroring the WaitGroup+mutex+firstErr fan-out
// this codebase already uses to drive a fleet of hosts. The barrier at the
// end is strict: the pacemaker never overlaps two ticks.
func (c *Controller) forEachWorker(fn func(w *worker) error) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, w := range c.workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			if err := fn(w); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return firstErr
}

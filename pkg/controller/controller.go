// Package controller implements the Topology Controller: the pacemaker loop
// that polls a constellation service, diffs the topology tick over tick, and
// fans the resulting change-set out to every worker host.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/starmesh-systems/starmesh/pkg/audit"
	"github.com/starmesh-systems/starmesh/pkg/settings"
	"github.com/starmesh-systems/starmesh/pkg/telemetry"
	"github.com/starmesh-systems/starmesh/pkg/topo"
	"github.com/starmesh-systems/starmesh/pkg/transport"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

// RemoteAssignmentFile and RemoteChangeSetPath give the paths, relative to a
// worker's configured directory, the Host Agent reads on every invocation.
// These mirror pkg/hostagent's own (unexported) path conventions — the wire
// contract both sides agree on.
const RemoteAssignmentFile = "assignment.json"

// RemoteChangeSetPath returns the path, relative to a worker's directory, of
// the change-set file for tick.
func RemoteChangeSetPath(tick int64) string {
	return filepath.Join("changesets", fmt.Sprintf("%d.json", tick))
}

// Dialer opens a Transport to one configured machine. Production code uses
// transport.Dial; tests substitute a fake.
type Dialer func(m settings.MachineConfig) (transport.Transport, error)

// Controller runs the pacemaker loop for one constellation run.
type Controller struct {
	Config  settings.RunConfig
	Engine  *topo.Engine
	Rand    *rand.Rand
	Audit   audit.Logger
	Telem   *telemetry.Publisher
	LocalDir string // local scratch directory for change-set/assignment files before upload
	Dial    Dialer

	assignment *topo.Assignment
	lastLinks  []topo.Edge
	workers    []*worker
}

type worker struct {
	id        int
	cfg       settings.MachineConfig
	transport transport.Transport
}

// DefaultDialer opens a real SSH-backed Transport, authenticating with
// whichever of password/key_path the machine config carries.
func DefaultDialer(m settings.MachineConfig) (transport.Transport, error) {
	return transport.Dial(m.Host, m.Port, m.User, m.Password, m.KeyPath)
}

// New constructs a Controller ready to run. It does not dial any worker yet;
// that happens lazily in Run so a constructed-but-unstarted Controller never
// holds live network connections.
func New(cfg settings.RunConfig, localDir string, dial Dialer) *Controller {
	return &Controller{
		Config:   cfg,
		Engine:   topo.NewEngine(),
		Rand:     rand.New(rand.NewSource(1)),
		LocalDir: localDir,
		Dial:     dial,
	}
}

func (c *Controller) localChangeSetPath(tick int64) string {
	return filepath.Join(c.LocalDir, fmt.Sprintf("changeset-%d.json", tick))
}

func (c *Controller) localAssignmentPath() string {
	return filepath.Join(c.LocalDir, "assignment.json")
}

// connect dials every configured machine once, in fleet order so worker ids
// match list position (§6: "id is implicit from list order").
func (c *Controller) connect() error {
	c.workers = make([]*worker, len(c.Config.Machines))
	for i, m := range c.Config.Machines {
		t, err := c.Dial(m)
		if err != nil {
			return util.NewWorkerError(i, m.Host, err)
		}
		c.workers[i] = &worker{id: i, cfg: m, transport: t}
	}
	return nil
}

func (c *Controller) closeAll() {
	for _, w := range c.workers {
		if w != nil && w.transport != nil {
			w.transport.Close()
		}
	}
}

// Run drives the pacemaker loop until ctx is cancelled. Every iteration
// polls, diffs, and fans out a tick; the first one also performs initial
// placement before its diff.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.connect(); err != nil {
		return err
	}
	defer c.closeAll()

	step := time.Duration(c.Config.StepSeconds) * time.Second
	scheduled := time.Now()

	for {
		wait := time.Until(scheduled)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// t is recorded fresh the instant the pacemaker wakes, not carried
		// over from before the sleep, so FetchSnapshot's "now" query always
		// reflects the actual wall-clock moment of the fetch.
		t := time.Now()
		if err := c.tick(ctx, t); err != nil {
			if errors.Is(err, util.ErrSchemaInvalid) {
				return err
			}
			util.Logger.WithError(err).Error("tick failed")
		}

		scheduled = scheduled.Add(step)
		if scheduled.Before(time.Now()) {
			// This tick's work exceeded step: start the next one immediately,
			// no catch-up and no coalescing.
			scheduled = time.Now()
		}
	}
}

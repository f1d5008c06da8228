package hostagent

import (
	"os"
	"path/filepath"
	"time"

	"github.com/starmesh-systems/starmesh/pkg/audit"
	"github.com/starmesh-systems/starmesh/pkg/nsnet"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

// Clean tears down every container this host owns: removes the damage file,
// every /run/netns/SAT* and /run/netns/GS* symlink, SIGKILLs every PID in the
// index, and deletes the PID file.
func (a *Agent) Clean() error {
	start := time.Now()
	event := audit.NewEvent(0, a.MachineID, "clean")
	log := util.WithHost(a.MachineID)

	if df, err := LoadDamageFile(a.damageFilePath()); err == nil {
		df.Clear()
	}

	idx, err := LoadPIDIndex(a.pidIndexPath())
	if err != nil {
		audit.Log(event.WithDuration(time.Since(start)).WithError(err))
		return err
	}

	for _, name := range idx.Owned() {
		pid, _ := idx.PID(name)
		if err := nsnet.Stop(pid, name); err != nil {
			log.WithField("node", name).WithError(err).Warn("clean: stop container failed")
		}
	}

	for _, pattern := range []string{"SAT*", "GS*"} {
		matches, _ := filepath.Glob(filepath.Join("/run/netns", pattern))
		for _, m := range matches {
			os.Remove(m)
		}
	}

	err = idx.Remove()
	event.WithDuration(time.Since(start))
	if err != nil {
		audit.Log(event.WithError(err))
	} else {
		audit.Log(event.WithSuccess())
	}
	return err
}

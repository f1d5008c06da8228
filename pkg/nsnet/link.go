package nsnet

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/starmesh-systems/starmesh/pkg/topo"
)

const vxlanDstPort = 4789

// LinkParams are the shaping parameters applied to a link's netem qdisc.
type LinkParams struct {
	DelayMs float64
	BWGbit  float64
	LossPct float64
}

// AddIntra wires a veth pair between two nodes that both live on this host.
// Inside name1's namespace the far end is named name2, and vice versa, per
// the naming invariant: an interface facing peer P is always named after P.
func AddIntra(g *Guard, name1, name2 string, idx int, isGSL bool, p LinkParams) error {
	prefix := topo.DerivePrefix(idx, isGSL)
	vethA := fmt.Sprintf("v%da", idx)
	vethB := fmt.Sprintf("v%db", idx)

	if _, err := runIP("link", "add", vethA, "type", "veth", "peer", "name", vethB); err != nil {
		return fmt.Errorf("nsnet: create veth pair for idx %d: %w", idx, err)
	}

	if err := moveAndRename(g, vethA, name1, name2); err != nil {
		return err
	}
	if err := moveAndRename(g, vethB, name2, name1); err != nil {
		return err
	}

	if err := g.Enter(name1, func() error {
		return configureEndpoint(name2, prefix, name1, name2, p)
	}); err != nil {
		return err
	}
	return g.Enter(name2, func() error {
		return configureEndpoint(name1, prefix, name2, name1, p)
	})
}

// AddInter wires a vxlan device in localName's namespace tunneling to
// peerHostIP, with VNI set to idx. The caller on the peer host makes the
// symmetric call with roles swapped.
func AddInter(g *Guard, idx int, isGSL bool, localName, peerName, peerHostIP string, p LinkParams) error {
	prefix := topo.DerivePrefix(idx, isGSL)

	return g.Enter(localName, func() error {
		if _, err := runIP("link", "add", peerName, "type", "vxlan",
			"id", strconv.Itoa(idx),
			"remote", peerHostIP,
			"dstport", strconv.Itoa(vxlanDstPort),
		); err != nil {
			return fmt.Errorf("nsnet: create vxlan %s (vni %d): %w", peerName, idx, err)
		}
		return configureEndpoint(peerName, prefix, localName, peerName, p)
	})
}

// Update changes an existing link's shaping parameters in place. If damaged
// is set, loss is forced to 100% regardless of p.LossPct.
func Update(g *Guard, name, peerName string, p LinkParams, damaged bool) error {
	return g.Enter(name, func() error {
		loss := p.LossPct
		if damaged {
			loss = 100
		}
		return tcChange(peerName, p.DelayMs, p.BWGbit, loss)
	})
}

// Del removes the interface facing peerName inside name's namespace. The
// kernel tears down the other half of the veth/vxlan pair automatically.
func Del(g *Guard, name, peerName string) error {
	return g.Enter(name, func() error {
		if _, err := runIP("link", "del", "dev", peerName); err != nil && !isLinkNotFound(err) {
			return fmt.Errorf("nsnet: delete link %s in %s: %w", peerName, name, err)
		}
		return nil
	})
}

// configureEndpoint assigns the derived v4/v6 addresses, installs the netem
// qdisc, and brings the interface up. Netem must be installed before the
// link is brought up so no packet traverses it unshaped.
func configureEndpoint(ifName string, prefix topo.AddrPair, self, peer string, p LinkParams) error {
	v4 := topo.EndpointV4(prefix.V4, self, peer) + "/24"
	v6 := topo.EndpointV6(prefix.V6, self, peer) + "/48"

	if _, err := runIP("addr", "add", v4, "dev", ifName); err != nil {
		return fmt.Errorf("nsnet: assign v4 %s to %s: %w", v4, ifName, err)
	}
	if _, err := runIP("-6", "addr", "add", v6, "dev", ifName); err != nil {
		return fmt.Errorf("nsnet: assign v6 %s to %s: %w", v6, ifName, err)
	}
	if err := tcAdd(ifName, p.DelayMs, p.BWGbit, p.LossPct); err != nil {
		return err
	}
	if _, err := runIP("link", "set", "dev", ifName, "up"); err != nil {
		return fmt.Errorf("nsnet: bring up %s: %w", ifName, err)
	}
	return nil
}

// moveAndRename moves link into ownerName's namespace and renames it to
// renameTo once inside — a namespace's interface names are scoped to that
// namespace, so the rename can only happen after the move, from within it.
func moveAndRename(g *Guard, link, ownerName, renameTo string) error {
	if _, err := runIP("link", "set", "dev", link, "netns", ownerName); err != nil {
		return fmt.Errorf("nsnet: move %s into %s: %w", link, ownerName, err)
	}
	return g.Enter(ownerName, func() error {
		if _, err := runIP("link", "set", "dev", link, "name", renameTo); err != nil {
			return fmt.Errorf("nsnet: rename %s to %s in %s: %w", link, renameTo, ownerName, err)
		}
		return nil
	})
}

func tcAdd(ifName string, delayMs, bwGbit, lossPct float64) error {
	args := []string{"qdisc", "add", "dev", ifName, "root", "netem"}
	args = append(args, netemArgs(delayMs, bwGbit, lossPct)...)
	if _, err := runTC(args...); err != nil {
		return fmt.Errorf("nsnet: install netem on %s: %w", ifName, err)
	}
	return nil
}

func tcChange(ifName string, delayMs, bwGbit, lossPct float64) error {
	args := []string{"qdisc", "change", "dev", ifName, "root", "netem"}
	args = append(args, netemArgs(delayMs, bwGbit, lossPct)...)
	if _, err := runTC(args...); err != nil {
		return fmt.Errorf("nsnet: change netem on %s: %w", ifName, err)
	}
	return nil
}

func netemArgs(delayMs, bwGbit, lossPct float64) []string {
	args := []string{"delay", fmt.Sprintf("%.3fms", delayMs)}
	if lossPct > 0 {
		args = append(args, "loss", fmt.Sprintf("%.2f%%", lossPct))
	}
	if bwGbit > 0 {
		args = append(args, "rate", fmt.Sprintf("%.2fGbit", bwGbit))
	}
	return args
}

// QdiscDelay parses `tc qdisc show dev <ifName>` output for the delay netem
// reports, so damage/recovery can preserve it while toggling loss.
func QdiscDelay(ifName string) (string, error) {
	out, err := runTC("qdisc", "show", "dev", ifName)
	if err != nil {
		return "", fmt.Errorf("nsnet: show qdisc for %s: %w", ifName, err)
	}
	for _, field := range strings.Fields(out) {
		if strings.HasSuffix(field, "ms") {
			return field, nil
		}
	}
	return "0ms", nil
}

// ListPeerInterfaces lists the non-loopback interfaces in the calling
// namespace, i.e. the peer-facing links of whatever node's namespace this
// runs inside.
func ListPeerInterfaces() ([]string, error) {
	out, err := runIP("-o", "link", "show")
	if err != nil {
		return nil, fmt.Errorf("nsnet: list interfaces: %w", err)
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimSuffix(fields[1], ":")
		if name == "lo" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// SetLossPreservingDelay changes an interface's netem loss parameter while
// keeping delay exactly as reported by QdiscDelay, for damage/recovery.
func SetLossPreservingDelay(ifName, delay string, lossPct float64) error {
	args := []string{"qdisc", "change", "dev", ifName, "root", "netem", "delay", delay}
	if lossPct > 0 {
		args = append(args, "loss", fmt.Sprintf("%.2f%%", lossPct))
	}
	if _, err := runTC(args...); err != nil {
		return fmt.Errorf("nsnet: set loss on %s: %w", ifName, err)
	}
	return nil
}

func runIP(args ...string) (string, error) {
	return runCmd("ip", args...)
}

func runTC(args ...string) (string, error) {
	return runCmd("tc", args...)
}

func runCmd(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		if output == "" {
			output = err.Error()
		}
		return "", fmt.Errorf("%s (%s %s)", output, name, strings.Join(args, " "))
	}
	return output, nil
}

func isLinkNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "Cannot find device") ||
		strings.Contains(err.Error(), "does not exist")
}

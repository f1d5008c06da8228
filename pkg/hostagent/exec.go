package hostagent

import (
	"fmt"

	"github.com/starmesh-systems/starmesh/pkg/nsnet"
)

// Exec runs argv inside node's full namespace set and returns its combined
// output.
func (a *Agent) Exec(node string, argv []string) (string, error) {
	idx, err := LoadPIDIndex(a.pidIndexPath())
	if err != nil {
		return "", err
	}
	pid, ok := idx.PID(node)
	if !ok {
		return "", fmt.Errorf("hostagent: node %s has no running container on this host", node)
	}
	return nsnet.RunIn(pid, argv)
}

// IP returns node's interface addresses (`ip addr show`).
func (a *Agent) IP(node string) (string, error) {
	return a.Exec(node, []string{"ip", "addr", "show"})
}

// Ping runs a ping from srcNode to dstAddr.
func (a *Agent) Ping(srcNode, dstAddr string, count int) (string, error) {
	if count <= 0 {
		count = 4
	}
	return a.Exec(srcNode, []string{"ping", "-c", fmt.Sprintf("%d", count), dstAddr})
}

// Iperf runs an iperf3 client from srcNode against dstAddr.
func (a *Agent) Iperf(srcNode, dstAddr string) (string, error) {
	return a.Exec(srcNode, []string{"iperf3", "-c", dstAddr})
}

// StaticRoute adds a static route inside node's namespace.
func (a *Agent) StaticRoute(node, destCIDR, via string) (string, error) {
	return a.Exec(node, []string{"ip", "route", "add", destCIDR, "via", via})
}

// RouteTable dumps node's routing table.
func (a *Agent) RouteTable(node string) (string, error) {
	return a.Exec(node, []string{"ip", "route", "show"})
}

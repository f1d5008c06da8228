package hostagent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starmesh-systems/starmesh/pkg/util"
)

// Dispatch runs one Host Agent verb invocation against args, mirroring the
// `ha <verb> <machine_id> <workdir> [args…]` CLI shape.
func (a *Agent) Dispatch(verb string, args []string) (string, error) {
	log := util.WithVerb(verb)

	switch verb {
	case "nodes":
		return "", a.Nodes()

	case "networks":
		if len(args) != 1 {
			return "", fmt.Errorf("hostagent: networks requires <tick>")
		}
		tick, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return "", fmt.Errorf("hostagent: invalid tick %q: %w", args[0], err)
		}
		return "", a.Networks(tick)

	case "damage":
		if len(args) != 1 {
			return "", fmt.Errorf("hostagent: damage requires <csv>")
		}
		return "", a.Damage(util.SplitCommaSeparated(args[0]))

	case "recovery":
		return "", a.Recovery()

	case "clean":
		return "", a.Clean()

	case "list":
		rows, err := a.List()
		if err != nil {
			return "", err
		}
		return formatList(rows), nil

	case "routed":
		if len(args) != 1 {
			return "", fmt.Errorf("hostagent: routed requires <selector>")
		}
		names, err := a.Routed(args[0])
		if err != nil {
			return "", err
		}
		return strings.Join(names, "\n"), nil

	case "exec":
		if len(args) < 2 {
			return "", fmt.Errorf("hostagent: exec requires <node> <argv…>")
		}
		return a.Exec(args[0], args[1:])

	case "IP":
		if len(args) != 1 {
			return "", fmt.Errorf("hostagent: IP requires <node>")
		}
		return a.IP(args[0])

	case "ping":
		if len(args) < 2 {
			return "", fmt.Errorf("hostagent: ping requires <node> <dst>")
		}
		return a.Ping(args[0], args[1], 0)

	case "iperf":
		if len(args) != 2 {
			return "", fmt.Errorf("hostagent: iperf requires <node> <dst>")
		}
		return a.Iperf(args[0], args[1])

	case "sr":
		if len(args) != 3 {
			return "", fmt.Errorf("hostagent: sr requires <node> <dest-cidr> <via>")
		}
		return a.StaticRoute(args[0], args[1], args[2])

	case "rtable":
		if len(args) != 1 {
			return "", fmt.Errorf("hostagent: rtable requires <node>")
		}
		return a.RouteTable(args[0])

	default:
		log.Error("unknown verb")
		return "", fmt.Errorf("hostagent: unknown verb %q", verb)
	}
}

func formatList(rows []NodeStatus) string {
	var b strings.Builder
	for _, r := range rows {
		status := "unowned"
		if r.Owned {
			status = "stopped"
			if r.Running {
				status = "running"
			}
		}
		fmt.Fprintf(&b, "%s\thome=%d\tpid=%d\t%s\n", r.Name, r.Home, r.PID, status)
	}
	return b.String()
}

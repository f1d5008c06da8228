package nsnet

import (
	"fmt"
	"os"
)

// EnableForwarding turns on IPv4 and IPv6 forwarding for the calling thread's
// current namespace. Callers are expected to invoke this from inside a
// Guard.Enter scope for the target node.
func EnableForwarding() error {
	for _, path := range []string{
		"/proc/sys/net/ipv4/ip_forward",
		"/proc/sys/net/ipv6/conf/all/forwarding",
	} {
		if err := os.WriteFile(path, []byte("1\n"), 0o644); err != nil {
			return fmt.Errorf("nsnet: enable forwarding %s: %w", path, err)
		}
	}
	return nil
}

// RaiseARPThresholds increases the kernel neighbor-table size limits for both
// address families so dense topologies do not silently drop ARP/NDP entries.
func RaiseARPThresholds(gc1, gc2, gc3 int) error {
	paths := []string{
		"/proc/sys/net/ipv4/neigh/default/gc_thresh1",
		"/proc/sys/net/ipv4/neigh/default/gc_thresh2",
		"/proc/sys/net/ipv4/neigh/default/gc_thresh3",
		"/proc/sys/net/ipv6/neigh/default/gc_thresh1",
		"/proc/sys/net/ipv6/neigh/default/gc_thresh2",
		"/proc/sys/net/ipv6/neigh/default/gc_thresh3",
	}
	values := []int{gc1, gc2, gc3, gc1, gc2, gc3}

	for i, path := range paths {
		v := fmt.Sprintf("%d\n", values[i])
		if err := os.WriteFile(path, []byte(v), 0o644); err != nil {
			return fmt.Errorf("nsnet: raise %s: %w", path, err)
		}
	}
	return nil
}

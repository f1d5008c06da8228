package topo

import (
	"fmt"
	"strings"
)

// AddrPair is the deterministic IPv4/IPv6 prefix assigned to a link at add time.
type AddrPair struct {
	V4 string // e.g. "10.0.5.0/24"
	V6 string // e.g. "2001:0:5::/48"
}

// DerivePrefix computes a link's address prefix from its idx, a pure function so
// that every host independently derives the same addressing for a given idx.
// ISLs use the 10./2001: space; GSLs substitute 9./2002: instead.
func DerivePrefix(idx int, isGSL bool) AddrPair {
	hi := idx >> 8
	lo := idx & 0xFF

	v4Net := "10"
	v6Net := "2001"
	if isGSL {
		v4Net = "9"
		v6Net = "2002"
	}

	return AddrPair{
		V4: fmt.Sprintf("%s.%d.%d.0/24", v4Net, hi, lo),
		V6: fmt.Sprintf("%s:%d:%d::/48", v6Net, hi, lo),
	}
}

// EndpointSuffix returns the host-suffix ("10" or "40") this name takes on a link
// against peer, based purely on lexicographic name comparison — the same rule
// both hosts apply independently, so the two halves of an inter-host link always
// agree regardless of which side computes first.
func EndpointSuffix(name, peer string) string {
	if name < peer {
		return "10"
	}
	return "40"
}

// EndpointV4 returns this endpoint's full IPv4 address on a link with the given
// prefix (a "/24" as produced by DerivePrefix, e.g. "10.0.5.0/24").
func EndpointV4(prefix string, name, peer string) string {
	network := strings.TrimSuffix(prefix, "/24")
	base := strings.TrimSuffix(network, "0")
	return base + EndpointSuffix(name, peer)
}

// EndpointV6 returns this endpoint's full IPv6 address on a link with the given
// prefix (a "/48" as produced by DerivePrefix, e.g. "2001:0:5::/48").
func EndpointV6(prefix string, name, peer string) string {
	base := strings.TrimSuffix(prefix, "/48")
	return base + EndpointSuffix(name, peer)
}

package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"
)

const (
	// serviceName identifies clasp listeners on the local network.
	serviceName = "_clasp._tcp"
	mdnsDomain  = "local"
)

// Announce advertises a listening peer under the given code name. The caller
// shuts the returned server down once a peer has connected.
func Announce(code string, port int) (*zeroconf.Server, error) {
	server, err := zeroconf.Register(code, serviceName, mdnsDomain, port, []string{"txtv=0"}, nil)
	if err != nil {
		return nil, fmt.Errorf("register mDNS service: %w", err)
	}
	return server, nil
}

// Locate browses for a peer announced under code and returns its address.
// The context bounds the search.
func Locate(ctx context.Context, code string) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, serviceName, mdnsDomain, entries); err != nil {
		return "", fmt.Errorf("browse for peers: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("peer %q not found: %w", code, ctx.Err())
		case entry := <-entries:
			if entry == nil || entry.Instance != code {
				continue
			}
			ip := pickIPv4(entry.AddrIPv4)
			if ip == nil {
				return "", fmt.Errorf("peer %q has no usable IPv4 address", code)
			}
			return net.JoinHostPort(ip.String(), strconv.Itoa(entry.Port)), nil
		}
	}
}

// pickIPv4 prefers a global unicast address, falling back to the first listed.
func pickIPv4(addrs []net.IP) net.IP {
	for _, a := range addrs {
		if a.IsGlobalUnicast() && !a.IsLoopback() {
			return a
		}
	}
	if len(addrs) > 0 {
		return addrs[0]
	}
	return nil
}

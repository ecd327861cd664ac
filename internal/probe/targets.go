package probe

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/3th1nk/cidr"
	"github.com/pkg/errors"
)

// MaxHosts bounds the number of hosts a single host list may expand to.
const MaxHosts = 1 << 16

var errTooManyHosts = errors.Errorf("host list expands to more than %d hosts", MaxHosts)

// ParseHosts expands a comma separated host list. Three forms are accepted
// and may be mixed:
//
//	192.168.1.1,ftp.example.com   single addresses or names
//	192.168.1.100-110             a range over the last octet
//	10.0.0.0/30                   a CIDR block
func ParseHosts(input string) ([]string, error) {
	var hosts []string
	add := func(host string) error {
		if len(hosts) >= MaxHosts {
			return errTooManyHosts
		}
		hosts = append(hosts, host)
		return nil
	}

	for _, item := range strings.Split(input, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		switch {
		case strings.Contains(item, "/"):
			block, err := cidr.ParseCIDR(item)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid CIDR %q", item)
			}
			if err := block.ForEachIP(add); err != nil {
				return nil, err
			}

		case isRange(item):
			first, last, err := parseRange(item)
			if err != nil {
				return nil, err
			}
			a := first.As4()
			for octet := int(a[3]); octet <= last; octet++ {
				a[3] = byte(octet)
				if err := add(netip.AddrFrom4(a).String()); err != nil {
					return nil, err
				}
			}

		default:
			if err := add(item); err != nil {
				return nil, err
			}
		}
	}

	if len(hosts) == 0 {
		return nil, errors.Errorf("no hosts in %q", input)
	}
	return hosts, nil
}

// isRange reports whether item looks like 192.168.1.100-110. Host names
// with dashes are not ranges.
func isRange(item string) bool {
	left, _, ok := strings.Cut(item, "-")
	if !ok {
		return false
	}
	ip, err := netip.ParseAddr(left)
	return err == nil && ip.Is4()
}

func parseRange(item string) (netip.Addr, int, error) {
	left, right, _ := strings.Cut(item, "-")
	first, err := netip.ParseAddr(left)
	if err != nil {
		return netip.Addr{}, 0, errors.Wrapf(err, "invalid range %q", item)
	}
	last, err := strconv.Atoi(right)
	if err != nil {
		return netip.Addr{}, 0, errors.Wrapf(err, "invalid range %q", item)
	}
	if start := int(first.As4()[3]); last < start || last > 255 {
		return netip.Addr{}, 0, errors.Errorf("invalid range %q: last octet must be between %d and 255", item, start)
	}
	return first, last, nil
}

// ParsePorts expands a comma separated port list such as "21,2121,2100-2105".
// Duplicates are dropped; the order of first appearance is kept.
func ParsePorts(input string) ([]int, error) {
	var ports []int
	seen := make(map[int]bool)

	for _, item := range strings.Split(input, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		lo, hi := item, item
		if l, h, ok := strings.Cut(item, "-"); ok {
			lo, hi = l, h
		}

		first, err := parsePort(lo)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid port %q", item)
		}
		last, err := parsePort(hi)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid port %q", item)
		}
		if last < first {
			return nil, errors.Errorf("invalid port range %q", item)
		}

		for port := first; port <= last; port++ {
			if !seen[port] {
				seen[port] = true
				ports = append(ports, port)
			}
		}
	}

	if len(ports) == 0 {
		return nil, errors.Errorf("no ports in %q", input)
	}
	return ports, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if port < 1 || port > 65535 {
		return 0, errors.Errorf("port %d out of range", port)
	}
	return port, nil
}

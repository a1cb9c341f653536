package utils

import (
	"net/netip"
	"strings"

	"zonegen/internal/model"
)

// PrefixFamily returns the address family of a CIDR prefix such as
// "10.0.0.0/8" or "2001:db8::/32".
func PrefixFamily(s string) (model.Family, bool) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return 0, false
	}
	return addrFamily(p.Addr()), true
}

// AddressFamily returns the family of a single address or of an address
// range written as "start-end". Ranges must not mix families and must not
// run backwards.
func AddressFamily(s string) (model.Family, bool) {
	if start, end, found := strings.Cut(s, "-"); found {
		a, err1 := netip.ParseAddr(start)
		b, err2 := netip.ParseAddr(end)
		if err1 != nil || err2 != nil || a.Is4() != b.Is4() || b.Less(a) {
			return 0, false
		}
		return addrFamily(a), true
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return 0, false
	}
	return addrFamily(a), true
}

func addrFamily(a netip.Addr) model.Family {
	if a.Is4() {
		return model.IPv4
	}
	return model.IPv6
}

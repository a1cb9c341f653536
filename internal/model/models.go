package model

type Protocol string // "tcp", "udp"

const (
	TCP Protocol = "tcp"
	UDP Protocol = "udp"
)

// Family is an IP address family: 4 or 6.
type Family int

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

// DefaultFamilies is used when a rule does not name any family.
var DefaultFamilies = []Family{IPv4, IPv6}

// NamePrefix returns the prefix used for ruleset names and the
// "name" keyword of this family ("" for IPv4, "ipv6-" for IPv6).
func (f Family) NamePrefix() string {
	if f == IPv6 {
		return "ipv6-"
	}
	return ""
}

// Keyword is the firewall keyword that selects a ruleset of this family.
func (f Family) Keyword() string {
	return f.NamePrefix() + "name"
}

func (f Family) Valid() bool {
	return f == IPv4 || f == IPv6
}

type Zone struct {
	Name        string
	Description string
	Interfaces  []string
	Local       bool
}

type GroupKind int

const (
	PortGroup GroupKind = iota
	AddressGroup
	NetworkGroupV4
	NetworkGroupV6
)

// GroupKinds lists every kind in emission order.
var GroupKinds = []GroupKind{PortGroup, AddressGroup, NetworkGroupV4, NetworkGroupV6}

// Keyword is the CLI group type, e.g. "port-group".
func (k GroupKind) Keyword() string {
	switch k {
	case PortGroup:
		return "port-group"
	case AddressGroup:
		return "address-group"
	case NetworkGroupV4:
		return "network-group"
	case NetworkGroupV6:
		return "ipv6-network-group"
	}
	panic("unknown group kind")
}

// Field is the member field name, e.g. "port" or "ipv6-network".
func (k GroupKind) Field() string {
	switch k {
	case PortGroup:
		return "port"
	case AddressGroup:
		return "address"
	case NetworkGroupV4:
		return "network"
	case NetworkGroupV6:
		return "ipv6-network"
	}
	panic("unknown group kind")
}

// Label is the identifier used for the kind in policy files and databases.
func (k GroupKind) Label() string {
	switch k {
	case PortGroup:
		return "port_group"
	case AddressGroup:
		return "address_group"
	case NetworkGroupV4:
		return "network_group"
	case NetworkGroupV6:
		return "ipv6_network_group"
	}
	panic("unknown group kind")
}

func (k GroupKind) String() string {
	return k.Keyword()
}

// ParseGroupKind accepts either the label ("port_group") or the CLI
// keyword ("port-group").
func ParseGroupKind(s string) (GroupKind, bool) {
	for _, k := range GroupKinds {
		if s == k.Label() || s == k.Keyword() {
			return k, true
		}
	}
	return 0, false
}

type Group struct {
	Kind        GroupKind
	Name        string
	Description string
	Members     []string
}

type Rule struct {
	Sources      []string
	Destinations []string
	Params       []string
	Families     []Family // empty means DefaultFamilies
	Priority     int      // 0 means auto-numbered
}

// EffectiveFamilies returns the families the rule is compiled for.
func (r *Rule) EffectiveFamilies() []Family {
	if len(r.Families) == 0 {
		return DefaultFamilies
	}
	return r.Families
}

type Policy struct {
	Zones  []Zone
	Groups []Group
	Rules  []Rule
}

// ZoneNames returns the zone names in declaration order.
func (p *Policy) ZoneNames() []string {
	names := make([]string, 0, len(p.Zones))
	for _, z := range p.Zones {
		names = append(names, z.Name)
	}
	return names
}

// Zone looks up a zone by name.
func (p *Policy) Zone(name string) (*Zone, bool) {
	for i := range p.Zones {
		if p.Zones[i].Name == name {
			return &p.Zones[i], true
		}
	}
	return nil, false
}

// GroupsOf returns the groups of one kind in declaration order.
func (p *Policy) GroupsOf(kind GroupKind) []Group {
	var groups []Group
	for _, g := range p.Groups {
		if g.Kind == kind {
			groups = append(groups, g)
		}
	}
	return groups
}

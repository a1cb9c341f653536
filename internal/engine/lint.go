package engine

import (
	"fmt"
	"strings"

	"zonegen/internal/model"
	"zonegen/internal/utils"
	"zonegen/pkg/wellknown"
)

// Lint reports suspicious but compilable declarations. Nothing it finds
// stops a compilation.
func Lint(p *model.Policy) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for _, z := range p.Zones {
		if !z.Local && len(z.Interfaces) == 0 {
			warn("zone %s has no interfaces", z.Name)
		}
		if z.Local && len(z.Interfaces) > 0 {
			warn("local zone %s lists interfaces; they are ignored", z.Name)
		}
		if !z.Local && strings.Contains(z.Description, "'") {
			warn("zone %s description contains a single quote", z.Name)
		}
	}

	for _, g := range p.Groups {
		if strings.Contains(g.Description, "'") {
			warn("%s %s description contains a single quote", g.Kind.Keyword(), g.Name)
		}
		if len(g.Members) == 0 {
			warn("%s %s has no members", g.Kind.Keyword(), g.Name)
		}
		for _, m := range g.Members {
			if msg := lintMember(g.Kind, m); msg != "" {
				warn("%s %s: member %q %s", g.Kind.Keyword(), g.Name, m, msg)
			}
		}
	}
	return warnings
}

func lintMember(kind model.GroupKind, member string) string {
	switch kind {
	case model.PortGroup:
		if !wellknown.IsPortSpec(member) {
			return "is not a port, port range or known service"
		}
	case model.AddressGroup:
		if f, ok := utils.AddressFamily(member); !ok || f != model.IPv4 {
			return "is not an IPv4 address or range"
		}
	case model.NetworkGroupV4:
		if f, ok := utils.PrefixFamily(member); !ok || f != model.IPv4 {
			return "is not an IPv4 prefix"
		}
	case model.NetworkGroupV6:
		if f, ok := utils.PrefixFamily(member); !ok || f != model.IPv6 {
			return "is not an IPv6 prefix"
		}
	}
	return ""
}

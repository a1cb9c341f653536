package engine

import (
	"fmt"

	"zonegen/internal/model"
)

func (c *Compiler) emitZones() {
	for _, z := range c.policy.Zones {
		base := "set zone-policy zone " + z.Name
		if z.Local {
			c.emit(base + " default-action drop")
			c.emit(base + " local-zone")
		} else {
			c.emit(fmt.Sprintf("%s description '%s'", base, z.Description))
			c.emit(base + " default-action drop")
			for _, iface := range z.Interfaces {
				c.emit(base + " interface " + iface)
			}
		}

		for _, src := range c.policy.Zones {
			if src.Name == z.Name {
				continue
			}
			for _, f := range model.DefaultFamilies {
				c.emit(fmt.Sprintf("%s from %s firewall %s %s",
					base, src.Name, f.Keyword(), rulesetName(f, src.Name, z.Name)))
			}
		}
	}
}

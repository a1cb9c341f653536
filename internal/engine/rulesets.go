package engine

import (
	"fmt"

	"zonegen/internal/model"
)

// rulesetName is the firewall name of the src->dst ruleset for a family,
// e.g. "int-ext" or "ipv6-int-ext".
func rulesetName(f model.Family, src, dst string) string {
	return fmt.Sprintf("%s%s-%s", f.NamePrefix(), src, dst)
}

// emitRulesets creates a default-deny ruleset for every ordered pair of
// distinct zones and both families, whether or not any rule targets it.
func (c *Compiler) emitRulesets() {
	zones := c.policy.ZoneNames()
	for _, src := range zones {
		for _, dst := range zones {
			if src == dst {
				continue
			}
			for _, f := range model.DefaultFamilies {
				base := fmt.Sprintf("set firewall %s %s", f.Keyword(), rulesetName(f, src, dst))
				c.emit(base)
				if c.opts.DefaultLog {
					c.emit(base + " enable-default-log")
				}
				c.emit(base + " default-action drop")
				c.stats.Rulesets++
			}
		}
	}
}

package engine

import (
	"fmt"

	"zonegen/internal/model"
)

func (c *Compiler) emitGroups() {
	for _, kind := range model.GroupKinds {
		for _, g := range c.policy.GroupsOf(kind) {
			c.emitGroup(g)
		}
	}
}

// emitGroup keeps member order and duplicates as declared.
func (c *Compiler) emitGroup(g model.Group) {
	base := fmt.Sprintf("set firewall group %s %s", g.Kind.Keyword(), g.Name)
	c.emit(fmt.Sprintf("%s description '%s'", base, g.Description))
	for _, m := range g.Members {
		c.emit(fmt.Sprintf("%s %s %s", base, g.Kind.Field(), m))
	}
}

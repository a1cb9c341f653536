package engine

import (
	"fmt"
	"slices"

	"zonegen/internal/model"
)

// CompileRule expands one rule into its per zone pair and per family
// commands, appends them to the run and returns them.
func (c *Compiler) CompileRule(r model.Rule) ([]string, error) {
	if err := checkRuleShape(-1, &r); err != nil {
		return nil, err
	}
	if err := checkRuleRefs(c.policy, []model.Rule{r}); err != nil {
		return nil, err
	}
	return c.compileRule(-1, r)
}

func (c *Compiler) compileRule(idx int, r model.Rule) ([]string, error) {
	if err := checkRuleShape(idx, &r); err != nil {
		return nil, err
	}

	start := len(c.commands)
	for _, src := range r.Sources {
		for _, dst := range r.Destinations {
			if src == dst {
				continue
			}
			key := rulesetKey{src: src, dst: dst}

			// The counter is shared by both families so that the IPv4 and
			// IPv6 copies of a rule carry the same number.
			number := r.Priority
			if number == 0 {
				c.counters[key]++
				number = c.counters[key]
			}

			for _, f := range r.EffectiveFamilies() {
				c.trackInstance(instanceKey{rulesetKey: key, family: f, number: number})
				selector := fmt.Sprintf("set firewall %s %s rule %d", f.Keyword(), rulesetName(f, src, dst), number)
				c.emit(selector)
				for _, p := range r.Params {
					c.emit(selector + " " + p)
				}
				c.stats.RuleInstances++
			}
		}
	}
	return slices.Clone(c.commands[start:]), nil
}

// trackInstance notes when two rules land on the same rule number of the
// same ruleset; their parameters end up merged into one firewall rule.
func (c *Compiler) trackInstance(k instanceKey) {
	c.instances[k]++
	if c.instances[k] == 2 {
		c.logger.Warn("Rule number shared by several rules",
			"ruleset", rulesetName(k.family, k.src, k.dst),
			"rule", k.number)
	}
}

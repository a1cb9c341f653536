// Package engine compiles a zone policy model into an ordered list of
// zone-policy firewall configuration commands.
package engine

import (
	"log/slog"
	"slices"
	"time"

	"zonegen/internal/model"
)

// Options tune a compilation run.
type Options struct {
	// DefaultLog adds enable-default-log to every ruleset skeleton.
	DefaultLog bool
	Logger     *slog.Logger
}

// Stats describes one compilation run.
type Stats struct {
	Zones         int
	Groups        int
	Rulesets      int
	RuleInstances int
	Emitted       int
	Duplicates    int
	Warnings      int
	Duration      time.Duration
}

// Result is the output of a successful compilation.
type Result struct {
	Commands []string
	Stats    Stats
}

type rulesetKey struct {
	src, dst string
}

type instanceKey struct {
	rulesetKey
	family model.Family
	number int
}

// Compiler holds the state of a single compilation: the per-ruleset rule
// counters and the growing command sequence. A Compiler is not safe for
// concurrent use; create one per run.
type Compiler struct {
	policy *model.Policy
	opts   Options
	logger *slog.Logger

	counters  map[rulesetKey]int
	instances map[instanceKey]int
	commands  []string
	stats     Stats
}

// NewCompiler returns a Compiler for policy. Nothing is emitted until Compile.
func NewCompiler(policy *model.Policy, opts Options) *Compiler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Compiler{
		policy: policy,
		opts:   opts,
		logger: logger,
	}
	c.reset()
	return c
}

// Compile validates the policy and emits the full command sequence. On error
// no commands are returned.
func Compile(policy *model.Policy, opts Options) (*Result, error) {
	return NewCompiler(policy, opts).Compile()
}

func (c *Compiler) reset() {
	c.counters = make(map[rulesetKey]int)
	c.instances = make(map[instanceKey]int)
	c.commands = nil
	c.stats = Stats{}
}

// Compile runs a fresh compilation of the Compiler's policy.
func (c *Compiler) Compile() (*Result, error) {
	c.reset()
	start := time.Now()

	if err := Validate(c.policy); err != nil {
		return nil, err
	}
	for _, w := range Lint(c.policy) {
		c.logger.Warn("Policy lint", "warning", w)
		c.stats.Warnings++
	}

	c.emitTeardown()
	c.emitGroups()
	c.emitRulesets()
	for i := range c.policy.Rules {
		if _, err := c.compileRule(i, c.policy.Rules[i]); err != nil {
			c.reset()
			return nil, err
		}
	}
	c.emitZones()

	c.stats.Emitted = len(c.commands)
	commands, dropped := Dedup(c.commands)
	c.stats.Duplicates = dropped
	c.stats.Zones = len(c.policy.Zones)
	c.stats.Groups = len(c.policy.Groups)
	c.stats.Duration = time.Since(start)

	c.logger.Debug("Compilation finished",
		"commands", len(commands),
		"duplicates", dropped,
		"rulesets", c.stats.Rulesets,
		"rule_instances", c.stats.RuleInstances)

	return &Result{Commands: commands, Stats: c.stats}, nil
}

// Commands returns a copy of the commands emitted so far, before
// deduplication.
func (c *Compiler) Commands() []string {
	return slices.Clone(c.commands)
}

func (c *Compiler) emit(cmd string) {
	c.commands = append(c.commands, cmd)
}

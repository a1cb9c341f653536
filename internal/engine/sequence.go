package engine

// teardown removes every previously configured group, ruleset and zone so
// that applying the output always rebuilds from scratch.
var teardown = []string{
	"delete firewall group",
	"delete firewall name",
	"delete firewall ipv6-name",
	"delete zone-policy",
}

func (c *Compiler) emitTeardown() {
	for _, cmd := range teardown {
		c.emit(cmd)
	}
}

// Dedup drops exact duplicate lines, keeping the first occurrence, and
// reports how many lines were dropped.
func Dedup(commands []string) ([]string, int) {
	seen := make(map[string]struct{}, len(commands))
	out := make([]string, 0, len(commands))
	for _, cmd := range commands {
		if _, ok := seen[cmd]; ok {
			continue
		}
		seen[cmd] = struct{}{}
		out = append(out, cmd)
	}
	return out, len(commands) - len(out)
}

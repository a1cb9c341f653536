package engine

import (
	"fmt"
	"slices"
	"strings"

	"zonegen/internal/model"
)

// Validate checks the policy before anything is emitted: unique
// declarations, well-formed rules and resolvable zone and group references.
func Validate(p *model.Policy) error {
	if err := checkDeclarations(p); err != nil {
		return err
	}
	for i := range p.Rules {
		if err := checkRuleShape(i, &p.Rules[i]); err != nil {
			return err
		}
	}
	return checkRuleRefs(p, p.Rules)
}

func checkDeclarations(p *model.Policy) error {
	zones := make(map[string]bool, len(p.Zones))
	for _, z := range p.Zones {
		if z.Name == "" {
			return fmt.Errorf("zone with empty name")
		}
		if zones[z.Name] {
			return &model.DuplicateDeclarationError{Kind: "zone", Name: z.Name}
		}
		zones[z.Name] = true
	}

	groups := make(map[model.GroupKind]map[string]bool)
	for _, g := range p.Groups {
		if g.Name == "" {
			return fmt.Errorf("%s with empty name", g.Kind.Keyword())
		}
		if groups[g.Kind] == nil {
			groups[g.Kind] = make(map[string]bool)
		}
		if groups[g.Kind][g.Name] {
			return &model.DuplicateDeclarationError{Kind: g.Kind.Keyword(), Name: g.Name}
		}
		groups[g.Kind][g.Name] = true
	}
	return nil
}

func checkRuleShape(idx int, r *model.Rule) error {
	switch {
	case len(r.Sources) == 0:
		return &model.InputShapeError{Rule: idx, Field: "source", Reason: "at least one zone is required"}
	case len(r.Destinations) == 0:
		return &model.InputShapeError{Rule: idx, Field: "destination", Reason: "at least one zone is required"}
	case len(r.Params) == 0:
		return &model.InputShapeError{Rule: idx, Field: "params", Reason: "must be a non-empty list"}
	case r.Priority < 0:
		return &model.InputShapeError{Rule: idx, Field: "number", Reason: fmt.Sprintf("%d is not a positive rule number", r.Priority)}
	}
	for i, f := range r.Families {
		if !f.Valid() {
			return &model.InputShapeError{Rule: idx, Field: "families", Reason: fmt.Sprintf("unsupported IP version %d", f)}
		}
		if slices.Contains(r.Families[:i], f) {
			return &model.InputShapeError{Rule: idx, Field: "families", Reason: fmt.Sprintf("IP version %d listed twice", f)}
		}
	}
	return nil
}

func checkRuleRefs(p *model.Policy, rules []model.Rule) error {
	declaredZones := make(map[string]bool, len(p.Zones))
	for _, z := range p.Zones {
		declaredZones[z.Name] = true
	}
	declaredGroups := make(map[string]bool, len(p.Groups))
	for _, g := range p.Groups {
		declaredGroups[groupRef(g.Kind, g.Name)] = true
	}

	var missing []string
	seen := make(map[string]bool)
	note := func(ref string) {
		if !seen[ref] {
			seen[ref] = true
			missing = append(missing, ref)
		}
	}

	for _, r := range rules {
		for _, zones := range [][]string{r.Sources, r.Destinations} {
			for _, z := range zones {
				if !declaredZones[z] {
					note("zone " + z)
				}
			}
		}
		for _, param := range r.Params {
			for _, ref := range groupRefs(param) {
				if !declaredGroups[ref] {
					note(ref)
				}
			}
		}
	}

	if len(missing) > 0 {
		return &model.ConfigurationIncompleteError{Missing: missing}
	}
	return nil
}

func groupRef(kind model.GroupKind, name string) string {
	return kind.Keyword() + " " + name
}

// groupRefs finds "group <kind> <name>" references in a rule parameter,
// e.g. "source group network-group ipv4Bogons".
func groupRefs(param string) []string {
	fields := strings.Fields(param)
	var refs []string
	for i := 0; i+2 < len(fields); i++ {
		if fields[i] != "group" {
			continue
		}
		kind, ok := model.ParseGroupKind(fields[i+1])
		if !ok {
			continue
		}
		refs = append(refs, groupRef(kind, strings.Trim(fields[i+2], `"'`)))
	}
	return refs
}

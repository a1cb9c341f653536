package parser

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"zonegen/internal/model"
)

type hclPolicy struct {
	Zones             []hclZone  `hcl:"zone,block"`
	PortGroups        []hclGroup `hcl:"port_group,block"`
	AddressGroups     []hclGroup `hcl:"address_group,block"`
	NetworkGroups     []hclGroup `hcl:"network_group,block"`
	IPv6NetworkGroups []hclGroup `hcl:"ipv6_network_group,block"`
	Rules             []hclRule  `hcl:"rule,block"`
}

type hclZone struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Interfaces  []string `hcl:"interfaces,optional"`
	Local       bool     `hcl:"local,optional"`
}

type hclGroup struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Members     []string `hcl:"members,optional"`
}

// Zones and params are kept as expressions: they may reference all_zones
// and their shape (string or list) is checked after evaluation.
type hclRule struct {
	Source      hcl.Expression `hcl:"source"`
	Destination hcl.Expression `hcl:"destination"`
	Params      hcl.Expression `hcl:"params"`
	Families    []int          `hcl:"families,optional"`
	Number      int            `hcl:"number,optional"`
}

// LoadHCLFile reads a policy from an HCL file.
func LoadHCLFile(path string) (*model.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return LoadHCL(data, path)
}

// LoadHCL decodes a policy from HCL source. Rule expressions are evaluated
// with the variable all_zones bound to every declared zone name.
func LoadHCL(data []byte, filename string) (*model.Policy, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL parse error: %s", diags.Error())
	}

	var raw hclPolicy
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("HCL decode error: %s", diags.Error())
	}

	policy := &model.Policy{}
	for _, z := range raw.Zones {
		policy.Zones = append(policy.Zones, model.Zone{
			Name:        z.Name,
			Description: z.Description,
			Interfaces:  z.Interfaces,
			Local:       z.Local,
		})
	}

	for _, set := range []struct {
		kind   model.GroupKind
		groups []hclGroup
	}{
		{model.PortGroup, raw.PortGroups},
		{model.AddressGroup, raw.AddressGroups},
		{model.NetworkGroupV4, raw.NetworkGroups},
		{model.NetworkGroupV6, raw.IPv6NetworkGroups},
	} {
		for _, g := range set.groups {
			policy.Groups = append(policy.Groups, model.Group{
				Kind:        set.kind,
				Name:        g.Name,
				Description: g.Description,
				Members:     g.Members,
			})
		}
	}

	all := policy.ZoneNames()
	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"all_zones": zoneListValue(all)},
	}
	for i, r := range raw.Rules {
		sources, err := evalStrings(ctx, r.Source, i, "source", true)
		if err != nil {
			return nil, err
		}
		dests, err := evalStrings(ctx, r.Destination, i, "destination", true)
		if err != nil {
			return nil, err
		}
		params, err := evalStrings(ctx, r.Params, i, "params", false)
		if err != nil {
			return nil, err
		}
		families, err := toFamilies(i, r.Families)
		if err != nil {
			return nil, err
		}
		policy.Rules = append(policy.Rules, model.Rule{
			Sources:      expandZones(sources, all),
			Destinations: expandZones(dests, all),
			Params:       params,
			Families:     families,
			Priority:     r.Number,
		})
	}
	return policy, nil
}

func zoneListValue(names []string) cty.Value {
	if len(names) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(names))
	for i, n := range names {
		vals[i] = cty.StringVal(n)
	}
	return cty.ListVal(vals)
}

// evalStrings evaluates an expression that must produce a list of strings,
// or a single string when allowScalar is set.
func evalStrings(ctx *hcl.EvalContext, expr hcl.Expression, idx int, field string, allowScalar bool) ([]string, error) {
	v, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("rule %d: %s: %s", idx+1, field, diags.Error())
	}
	if v.IsNull() {
		return nil, &model.InputShapeError{Rule: idx, Field: field, Reason: "must not be null"}
	}

	ty := v.Type()
	if ty == cty.String {
		if !allowScalar {
			return nil, scalarParams(idx)
		}
		return []string{v.AsString()}, nil
	}
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return nil, &model.InputShapeError{Rule: idx, Field: field, Reason: "must be a string or a list of strings, got " + ty.FriendlyName()}
	}

	list, err := convert.Convert(v, cty.List(cty.String))
	if err != nil {
		return nil, &model.InputShapeError{Rule: idx, Field: field, Reason: err.Error()}
	}
	out := make([]string, 0, list.LengthInt())
	for it := list.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() {
			return nil, &model.InputShapeError{Rule: idx, Field: field, Reason: "list contains null"}
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}

package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"zonegen/internal/model"
)

type yamlPolicy struct {
	Zones  []yamlZone             `yaml:"zones"`
	Groups map[string][]yamlGroup `yaml:"groups"`
	Rules  []yamlRule             `yaml:"rules"`
}

type yamlZone struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Interfaces  []string `yaml:"interfaces"`
	Local       bool     `yaml:"local"`
}

type yamlGroup struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Members     []string `yaml:"members"`
}

type yamlRule struct {
	Source      yaml.Node `yaml:"source"`
	Destination yaml.Node `yaml:"destination"`
	Params      yaml.Node `yaml:"params"`
	Families    []int     `yaml:"families"`
	Number      int       `yaml:"number"`
}

// LoadYAMLFile reads a policy from a YAML file.
func LoadYAMLFile(path string) (*model.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return LoadYAML(data)
}

// LoadYAML decodes a policy from YAML. Unknown keys are rejected.
func LoadYAML(data []byte) (*model.Policy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw yamlPolicy
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty policy document")
		}
		return nil, fmt.Errorf("YAML decode error: %w", err)
	}

	policy := &model.Policy{}
	for _, z := range raw.Zones {
		policy.Zones = append(policy.Zones, model.Zone(z))
	}

	for label := range raw.Groups {
		if _, ok := model.ParseGroupKind(label); !ok {
			return nil, fmt.Errorf("unknown group kind %q", label)
		}
	}
	for _, kind := range model.GroupKinds {
		for _, g := range raw.Groups[kind.Label()] {
			policy.Groups = append(policy.Groups, model.Group{
				Kind:        kind,
				Name:        g.Name,
				Description: g.Description,
				Members:     g.Members,
			})
		}
	}

	all := policy.ZoneNames()
	for i := range raw.Rules {
		r := &raw.Rules[i]
		sources, err := nodeStrings(&r.Source, i, "source", true)
		if err != nil {
			return nil, err
		}
		dests, err := nodeStrings(&r.Destination, i, "destination", true)
		if err != nil {
			return nil, err
		}
		params, err := nodeStrings(&r.Params, i, "params", false)
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

func nodeStrings(n *yaml.Node, idx int, field string, allowScalar bool) ([]string, error) {
	if n.Kind == 0 || n.Tag == "!!null" {
		return nil, nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if !allowScalar {
			return nil, scalarParams(idx)
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, &model.InputShapeError{Rule: idx, Field: field, Reason: fmt.Sprintf("line %d: list items must be strings", item.Line)}
			}
			out = append(out, item.Value)
		}
		return out, nil
	}
	return nil, &model.InputShapeError{Rule: idx, Field: field, Reason: fmt.Sprintf("line %d: must be a string or a list of strings", n.Line)}
}

package engine

import (
	"errors"
	"slices"
	"testing"

	"zonegen/internal/model"
)

func TestValidateRuleShape(t *testing.T) {
	tests := []struct {
		name  string
		rule  model.Rule
		field string
	}{
		{"no sources", model.Rule{Destinations: []string{"int"}, Params: []string{"action accept"}}, "source"},
		{"no destinations", model.Rule{Sources: []string{"int"}, Params: []string{"action accept"}}, "destination"},
		{"no params", model.Rule{Sources: []string{"int"}, Destinations: []string{"ext"}}, "params"},
		{"negative number", model.Rule{Sources: []string{"int"}, Destinations: []string{"ext"}, Params: []string{"action accept"}, Priority: -1}, "number"},
		{"bad family", model.Rule{Sources: []string{"int"}, Destinations: []string{"ext"}, Params: []string{"action accept"}, Families: []model.Family{4, 5}}, "families"},
		{"repeated family", model.Rule{Sources: []string{"int"}, Destinations: []string{"ext"}, Params: []string{"action accept"}, Families: []model.Family{4, 4}}, "families"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(threeZonePolicy(tt.rule))
			var shape *model.InputShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("expected InputShapeError, got %v", err)
			}
			if shape.Field != tt.field || shape.Rule != 0 {
				t.Errorf("got field %q rule %d", shape.Field, shape.Rule)
			}
		})
	}
}

func TestValidateMissingReferences(t *testing.T) {
	p := threeZonePolicy(
		model.Rule{Sources: []string{"gst"}, Destinations: []string{"ext"}, Params: []string{"action accept", "destination group port-group vpn"}},
		model.Rule{Sources: []string{"ext"}, Destinations: []string{"gst", "int"}, Params: []string{"source group network-group ipv4Bogons", "source group ipv6-network-group ipv6Bogons"}},
	)
	p.Groups = []model.Group{{Kind: model.NetworkGroupV4, Name: "ipv4Bogons"}}

	err := Validate(p)
	var incomplete *model.ConfigurationIncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected ConfigurationIncompleteError, got %v", err)
	}
	want := []string{"zone gst", "port-group vpn", "ipv6-network-group ipv6Bogons"}
	if !slices.Equal(incomplete.Missing, want) {
		t.Errorf("got %v, want %v", incomplete.Missing, want)
	}
}

func TestValidateGroupKindMustMatch(t *testing.T) {
	p := threeZonePolicy(model.Rule{Sources: []string{"ext"}, Destinations: []string{"int"}, Params: []string{"destination group address-group media"}})
	p.Groups = []model.Group{{Kind: model.PortGroup, Name: "media"}}
	var incomplete *model.ConfigurationIncompleteError
	if err := Validate(p); !errors.As(err, &incomplete) {
		t.Fatalf("expected ConfigurationIncompleteError, got %v", err)
	}
}

func TestValidateDuplicates(t *testing.T) {
	p := threeZonePolicy()
	p.Zones = append(p.Zones, model.Zone{Name: "int"})
	var dup *model.DuplicateDeclarationError
	if err := Validate(p); !errors.As(err, &dup) || dup.Kind != "zone" || dup.Name != "int" {
		t.Errorf("expected duplicate zone error, got %v", err)
	}

	p = threeZonePolicy()
	p.Groups = []model.Group{
		{Kind: model.PortGroup, Name: "web"},
		{Kind: model.AddressGroup, Name: "web"},
		{Kind: model.PortGroup, Name: "web"},
	}
	if err := Validate(p); !errors.As(err, &dup) || dup.Kind != "port-group" {
		t.Errorf("expected duplicate port-group error, got %v", err)
	}
}

func TestGroupRefs(t *testing.T) {
	tests := map[string][]string{
		"source group network-group ipv4Bogons":  {"network-group ipv4Bogons"},
		"destination group port-group 'vpn'":     {"port-group vpn"},
		`description "group port-group"`:         nil,
		"destination group unknown-group foo":    nil,
		"action accept":                          nil,
		"source group address-group media extra": {"address-group media"},
	}
	for in, want := range tests {
		if got := groupRefs(in); !slices.Equal(got, want) {
			t.Errorf("groupRefs(%q) = %v, want %v", in, got, want)
		}
	}
}

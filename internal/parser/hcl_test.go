package parser

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"zonegen/internal/model"
)

func TestLoadHCLFileParsesEdgeRouterPolicy(t *testing.T) {
	policy, err := LoadHCLFile("testdata/edgerouter.hcl")
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if got := policy.ZoneNames(); !slices.Equal(got, []string{"int", "ext", "dmz", "gst", "local"}) {
		t.Fatalf("unexpected zones %v", got)
	}
	local, _ := policy.Zone("local")
	if !local.Local || len(local.Interfaces) != 0 {
		t.Errorf("expected local zone without interfaces, got %+v", local)
	}

	kinds := make([]model.GroupKind, 0, len(policy.Groups))
	for _, g := range policy.Groups {
		kinds = append(kinds, g.Kind)
	}
	want := []model.GroupKind{model.PortGroup, model.PortGroup, model.AddressGroup, model.NetworkGroupV4, model.NetworkGroupV6}
	if !slices.Equal(kinds, want) {
		t.Errorf("unexpected group kinds %v", kinds)
	}
	if policy.Groups[0].Name != "vpn" || !slices.Equal(policy.Groups[0].Members, []string{"isakmp", "openvpn", "l2tp", "4500"}) {
		t.Errorf("unexpected first group %+v", policy.Groups[0])
	}

	if len(policy.Rules) != 9 {
		t.Fatalf("expected 9 rules, got %d", len(policy.Rules))
	}
	allConnections := policy.Rules[1]
	if !slices.Equal(allConnections.Sources, []string{"int"}) {
		t.Errorf("expected scalar source to become a list, got %v", allConnections.Sources)
	}
	if !slices.Equal(allConnections.Destinations, policy.ZoneNames()) {
		t.Errorf("expected all_zones to expand, got %v", allConnections.Destinations)
	}
	if allConnections.Params[0] != `description "Allow all connections"` {
		t.Errorf("unexpected params %q", allConnections.Params[0])
	}
	if len(allConnections.Families) != 0 || allConnections.Priority != 0 {
		t.Errorf("expected defaults, got families %v number %d", allConnections.Families, allConnections.Priority)
	}

	ping := policy.Rules[6]
	if ping.Priority != 500 || !slices.Equal(ping.Families, []model.Family{model.IPv4}) {
		t.Errorf("unexpected ping rule %+v", ping)
	}
}

func TestLoadHCLRejectsScalarParams(t *testing.T) {
	src := `
zone "int" { interfaces = ["eth0"] }
zone "ext" { interfaces = ["eth1"] }
rule {
  source      = "int"
  destination = "ext"
  params      = "action accept"
}
`
	_, err := LoadHCL([]byte(src), "scalar.hcl")
	var shape *model.InputShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected InputShapeError, got %v", err)
	}
	if shape.Field != "params" || shape.Rule != 0 {
		t.Errorf("unexpected error detail %+v", shape)
	}
}

func TestLoadHCLRejectsBadShapes(t *testing.T) {
	tests := map[string]string{
		"number source": `rule {
  source      = 4
  destination = "ext"
  params      = ["action accept"]
}`,
		"bad family": `rule {
  source      = "int"
  destination = "ext"
  params      = ["action accept"]
  families    = [5]
}`,
		"null param": `rule {
  source      = "int"
  destination = "ext"
  params      = ["action accept", null]
}`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadHCL([]byte(src), "bad.hcl")
			var shape *model.InputShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("expected InputShapeError, got %v", err)
			}
		})
	}
}

func TestLoadHCLReportsSyntaxAndSchemaErrors(t *testing.T) {
	if _, err := LoadHCL([]byte(`zone "int" {`), "broken.hcl"); err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("expected parse error, got %v", err)
	}
	if _, err := LoadHCL([]byte(`zone "int" { colour = "blue" }`), "schema.hcl"); err == nil || !strings.Contains(err.Error(), "decode error") {
		t.Errorf("expected decode error, got %v", err)
	}
	if _, err := LoadHCL([]byte("rule {\n  destination = \"ext\"\n  params = [\"a\"]\n}"), "missing.hcl"); err == nil {
		t.Error("expected missing source to fail")
	}
	src := "rule {\n  source = unknown_var\n  destination = \"ext\"\n  params = [\"a\"]\n}"
	if _, err := LoadHCL([]byte(src), "var.hcl"); err == nil || !strings.Contains(err.Error(), "rule 1: source") {
		t.Errorf("expected unknown variable error, got %v", err)
	}
}

func TestLoadHCLAllZonesWithoutZones(t *testing.T) {
	src := "rule {\n  source = all_zones\n  destination = all_zones\n  params = [\"action drop\"]\n}"
	policy, err := LoadHCL([]byte(src), "empty.hcl")
	if err != nil {
		t.Fatal(err)
	}
	if len(policy.Rules[0].Sources) != 0 {
		t.Errorf("expected no zones, got %v", policy.Rules[0].Sources)
	}
}

func TestLoadHCLFileMissing(t *testing.T) {
	if _, err := LoadHCLFile("testdata/does-not-exist.hcl"); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

package wellknown

import (
	"testing"

	"zonegen/internal/model"
)

func TestGetServiceReturnsDNSAliases(t *testing.T) {
	// DNS is an alias of the domain service on both transports.
	entries, ok := GetService("dns")
	if !ok {
		t.Fatalf("expected dns to be present in well-known service registry")
	}
	if !containsPort(entries, 53, model.TCP) || !containsPort(entries, 53, model.UDP) {
		t.Fatalf("expected DNS to include port 53 over tcp and udp, got %#v", entries)
	}
}

func TestGetServiceIsCaseInsensitive(t *testing.T) {
	entries, ok := GetService("ISAKMP")
	if !ok {
		t.Fatalf("expected isakmp to be registered")
	}
	if !containsPort(entries, 500, model.UDP) {
		t.Fatalf("expected isakmp on 500/udp, got %#v", entries)
	}
}

func TestGetServiceReturnsFalseForUnknown(t *testing.T) {
	_, ok := GetService("definitely-not-a-service")
	if ok {
		t.Fatalf("expected unknown service to return ok=false")
	}
}

func TestIsPortSpec(t *testing.T) {
	tests := map[string]bool{
		"4500":          true,
		"4301-4325":     true,
		"4325-4301":     false,
		"0":             false,
		"70000":         false,
		"openvpn":       true,
		"dhcpv6-server": true,
		"not-a-service": false,
		"netbios-ns":    true,
		"1900":          true,
		"http-alt":      true,
		"65535-65535":   true,
		"":              false,
	}
	for in, want := range tests {
		if got := IsPortSpec(in); got != want {
			t.Errorf("IsPortSpec(%q) = %v, want %v", in, got, want)
		}
	}
}

func containsPort(entries []ServiceEntry, port int, protocol model.Protocol) bool {
	for _, entry := range entries {
		if entry.Port == port && entry.Protocol == protocol {
			return true
		}
	}
	return false
}

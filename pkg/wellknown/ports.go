package wellknown

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"strings"

	_ "embed"

	"zonegen/internal/model"
)

//go:embed well_known_ports.csv
var wellKnownPortsData string

type ServiceEntry struct {
	Protocol model.Protocol
	Port     int
}

var serviceRegistry map[string][]ServiceEntry

func init() {
	serviceRegistry = make(map[string][]ServiceEntry)
	reader := csv.NewReader(bytes.NewBufferString(wellKnownPortsData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded well_known_ports.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded well_known_ports.csv: %v", err)
		}
		if len(record) < 3 {
			continue
		}

		port, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}

		register(record[1], ServiceEntry{Protocol: model.TCP, Port: port})
		register(record[2], ServiceEntry{Protocol: model.UDP, Port: port})
	}
	// EdgeOS accepts "dns" as an alias for the domain service.
	serviceRegistry["DNS"] = serviceRegistry["DOMAIN"]
}

func register(name string, entry ServiceEntry) {
	name = strings.TrimSpace(name)
	if name == "" || name == "N/A" {
		return
	}
	key := strings.ToUpper(name)
	serviceRegistry[key] = append(serviceRegistry[key], entry)
}

// GetService returns the port and protocol for a well-known service name.
func GetService(name string) ([]ServiceEntry, bool) {
	entry, ok := serviceRegistry[strings.ToUpper(name)]
	return entry, ok
}

// IsPortSpec reports whether s is a valid port-group member: a port number,
// a port range such as "4301-4325", or a well-known service name.
func IsPortSpec(s string) bool {
	if lo, hi, found := strings.Cut(s, "-"); found {
		a, ok1 := portNumber(lo)
		b, ok2 := portNumber(hi)
		if ok1 && ok2 {
			return a <= b
		}
	}
	if _, ok := portNumber(s); ok {
		return true
	}
	_, ok := GetService(s)
	return ok
}

func portNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return 0, false
	}
	return n, true
}

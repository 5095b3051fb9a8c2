package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantIP   string
		wantPort int
	}{
		{
			name: "Domoticz instance name with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Domoticz @ raspberrypi"},
				HostName:      "raspberrypi.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				Text:          []string{"path=/"},
			},
			wantNil:  false,
			wantName: "Domoticz @ raspberrypi",
			wantIP:   "192.168.1.50",
			wantPort: 8080,
		},
		{
			name: "matched by hostname only",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Web Server"},
				HostName:      "domoticz.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantNil:  false,
			wantName: "Web Server",
			wantIP:   "10.0.0.5",
			wantPort: 8080,
		},
		{
			name: "match is case-insensitive",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "DOMOTICZ"},
				HostName:      "pi.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.60")},
			},
			wantNil:  false,
			wantName: "DOMOTICZ",
			wantIP:   "192.168.1.60",
			wantPort: 8080,
		},
		{
			name: "server with custom port",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Domoticz"},
				HostName:      "pi.local.",
				Port:          443,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.100")},
			},
			wantNil:  false,
			wantName: "Domoticz",
			wantIP:   "192.168.1.100",
			wantPort: 443,
		},
		{
			name: "no port specified (should default to 8080)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Domoticz"},
				HostName:      "pi.local.",
				Port:          0,
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantNil:  false,
			wantName: "Domoticz",
			wantIP:   "172.16.0.1",
			wantPort: 8080,
		},
		{
			name: "non-Domoticz service",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Office Printer"},
				HostName:      "printer.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "empty instance and hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Domoticz"},
				HostName:      "pi.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{},
				AddrIPv6:      []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only server",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Domoticz"},
				HostName:      "pi.local.",
				Port:          8080,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantNil:  false,
			wantName: "Domoticz",
			wantIP:   "fe80::1",
			wantPort: 8080,
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Domoticz"},
				HostName:      "pi.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantNil:  false,
			wantName: "Domoticz",
			wantIP:   "192.168.1.50",
			wantPort: 8080,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if server != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", server)
				}
				return
			}

			if server == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil server")
			}

			if server.Name != tt.wantName {
				t.Errorf("server.Name = %v, want %v", server.Name, tt.wantName)
			}

			if server.IP != tt.wantIP {
				t.Errorf("server.IP = %v, want %v", server.IP, tt.wantIP)
			}

			if server.Port != tt.wantPort {
				t.Errorf("server.Port = %v, want %v", server.Port, tt.wantPort)
			}

			if server.Hostname != tt.entry.HostName {
				t.Errorf("server.Hostname = %v, want %v", server.Hostname, tt.entry.HostName)
			}

			// Check that DiscoveredAt is recent (within last second)
			if time.Since(server.DiscoveredAt) > time.Second {
				t.Errorf("server.DiscoveredAt is not recent: %v", server.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "Domoticz @ raspberrypi"},
		HostName:      "raspberrypi.local.",
		Port:          8080,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
		Text:          []string{"path=/", "version=2023.2", "flag", "auth=basic"},
	}

	server := scanner.parseServiceEntry(entry)
	if server == nil {
		t.Fatal("parseServiceEntry() = nil, want server")
	}

	// Check metadata parsing
	expectedMetadata := map[string]string{
		"path":    "/",
		"version": "2023.2",
		"flag":    "", // Key without value
		"auth":    "basic",
	}

	if len(server.Metadata) != len(expectedMetadata) {
		t.Errorf("server.Metadata has %d entries, want %d", len(server.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := server.Metadata[key]; !ok {
			t.Errorf("server.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("server.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestServerPattern(t *testing.T) {
	tests := []struct {
		input       string
		shouldMatch bool
	}{
		{"Domoticz @ raspberrypi", true},
		{"domoticz.local.", true},
		{"DOMOTICZ", true},
		{"my-domoticz-server", true},
		{"Home Assistant", false},
		{"printer.local.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := serverPattern.MatchString(tt.input); got != tt.shouldMatch {
				t.Errorf("serverPattern.MatchString(%q) = %v, want %v", tt.input, got, tt.shouldMatch)
			}
		})
	}
}

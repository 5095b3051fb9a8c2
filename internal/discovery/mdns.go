package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type Domoticz installations advertise
	// through Avahi or Bonjour
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for server discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default HTTP port for Domoticz servers
	DefaultPort = 8080
)

// serverPattern matches Domoticz instance names and hostnames
// (e.g., "Domoticz @ raspberrypi" or "domoticz.local.")
var serverPattern = regexp.MustCompile(`(?i)domoticz`)

// Scanner handles mDNS server discovery
type Scanner struct {
	// Timeout is the maximum time to wait for server discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForServers discovers Domoticz servers on the local network
// Returns a list of discovered servers or an error
func (s *Scanner) ScanForServers() ([]*Server, error) {
	return s.ScanForServersWithContext(context.Background())
}

// ScanForServersWithContext discovers servers with a custom context
func (s *Scanner) ScanForServersWithContext(ctx context.Context) ([]*Server, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	servers := make([]*Server, 0)

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Browse for services in a goroutine
	go func() {
		for entry := range entries {
			server := s.parseServiceEntry(entry)
			if server != nil {
				servers = append(servers, server)
			}
		}
	}()

	// Start browsing for HTTP services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for context to complete (timeout or cancellation)
	<-ctx.Done()

	return servers, nil
}

// parseServiceEntry converts a zeroconf service entry to a Server
// Returns nil if the entry does not look like a Domoticz installation
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Server {
	// Domoticz advertises either under its instance name or its hostname
	if !serverPattern.MatchString(entry.Instance) && !serverPattern.MatchString(entry.HostName) {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Get port (default to 8080 if not specified)
	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Server{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForServers is a convenience function to scan with a custom timeout
func ScanForServers(timeout time.Duration) ([]*Server, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForServers()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Server, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForServers()
}

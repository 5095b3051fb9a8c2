package discovery

import (
	"fmt"
	"time"
)

// Server represents a discovered Domoticz server on the network
type Server struct {
	// Name is the mDNS instance name (e.g., "Domoticz @ raspberrypi")
	Name string

	// Hostname is the mDNS hostname (e.g., "raspberrypi.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.50")
	IP string

	// Port is the HTTP port (typically 8080)
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	return fmt.Sprintf("%s (%s) at %s:%d", s.Name, s.Hostname, s.IP, s.Port)
}

// BaseURL returns the HTTP base URL for the server
func (s *Server) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", s.IP, s.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

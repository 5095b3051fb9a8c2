// Package discovery locates Domoticz servers and optical meter probes.
//
// The network side implements multicast DNS (mDNS) service discovery to
// automatically locate Domoticz installations on the local network. Domoticz
// advertises itself through Avahi using the "_http._tcp" service type, so the
// scanner browses that type and keeps entries whose instance name or hostname
// mentions Domoticz.
//
// The serial side enumerates local device nodes that may have an optical
// probe attached, preferring the stable /dev/serial/by-id names over the raw
// ttyUSB and ttyACM nodes.
//
// # Discovery Process
//
// The network scan works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for HTTP service advertisements
//  3. Filters responses to identify Domoticz installations
//  4. Collects server information (name, hostname, IP, port, TXT metadata)
//  5. Returns a list of discovered servers after the timeout period
//
// # Usage Example
//
//	// Discover servers with 10-second timeout
//	servers, err := discovery.ScanForServers(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Print discovered servers
//	for _, server := range servers {
//	    fmt.Printf("Found: %s\n", server)
//	}
//
//	// Enumerate candidate serial probes
//	probes, err := discovery.ListProbes()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, probe := range probes {
//	    fmt.Printf("Probe: %s (%s)\n", probe.Path, probe.ID)
//	}
//
// # Server Information
//
// Each discovered server includes:
//   - Name: The advertised instance name (e.g., "Domoticz @ raspberrypi")
//   - Hostname: Server's network hostname
//   - IP: IPv4 address (IPv6 if no IPv4 is advertised)
//   - Port: HTTP port (typically 8080)
//   - Metadata: Key-value pairs from TXT records
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery

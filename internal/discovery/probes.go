package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

// probeGlobs are the device path patterns checked for optical probes,
// in preference order. The by-id names are stable across replugs, the
// tty nodes are not.
var probeGlobs = []string{
	"serial/by-id/*",
	"ttyUSB*",
	"ttyACM*",
}

// Probe is a candidate serial device for an optical meter probe
type Probe struct {
	// Path is the device path to open (e.g., /dev/ttyUSB0)
	Path string

	// ID is the stable identifier from /dev/serial/by-id, if available
	ID string

	// DiscoveredAt is when this probe was found
	DiscoveredAt time.Time
}

// ListProbes enumerates serial devices that may have an optical probe
// attached. Devices with a stable by-id name are listed first.
func ListProbes() ([]*Probe, error) {
	return probesIn("/dev")
}

// probesIn enumerates probes under the given device directory
func probesIn(root string) ([]*Probe, error) {
	probes := make([]*Probe, 0)
	seen := make(map[string]bool)

	for _, glob := range probeGlobs {
		matches, err := filepath.Glob(filepath.Join(root, glob))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)

		for _, match := range matches {
			probe := parseProbePath(match)
			if probe == nil || seen[probe.Path] {
				continue
			}
			seen[probe.Path] = true
			probes = append(probes, probe)
		}
	}

	return probes, nil
}

// parseProbePath builds a Probe from a matched device path, resolving
// by-id symlinks to the underlying tty node
func parseProbePath(path string) *Probe {
	probe := &Probe{
		Path:         path,
		DiscoveredAt: time.Now(),
	}

	// by-id entries are symlinks like
	// usb-FTDI_FT232R_USB_UART_A50285BI-if00-port0 -> ../../ttyUSB0
	if filepath.Base(filepath.Dir(path)) == "by-id" {
		probe.ID = filepath.Base(path)
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			// Dangling symlink, nothing to open
			return nil
		}
		probe.Path = resolved
	}

	// Skip directories and anything that vanished since the glob
	info, err := os.Stat(probe.Path)
	if err != nil || info.IsDir() {
		return nil
	}

	return probe
}

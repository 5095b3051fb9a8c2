// Package config provides user configuration management for the Multical tools.
//
// This package manages a YAML-based configuration file that stores per-meter
// metadata (nicknames, push parameters), the Domoticz store connection and
// application preferences. The configuration follows OS-specific conventions
// for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/multical/config.yaml or $HOME/.config/multical/config.yaml
//   - macOS: $HOME/.config/multical/config.yaml
//   - Windows: %LOCALAPPDATA%\multical\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update meter metadata
//	registry.SetMeterNickname("/dev/ttyUSB0", "District Heating")
//	registry.SetMeterParameters("/dev/ttyUSB0", []string{"370:0x003C:0"})
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config

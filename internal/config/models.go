package config

import "time"

// Defaults applied when the config file omits a preference.
const (
	DefaultReadTimeoutSeconds  = 5
	DefaultPollIntervalSeconds = 300
	DefaultStoreHost           = "127.0.0.1"
	DefaultStorePort           = 8080
)

// Registry represents the entire user configuration file.
// This stores per-meter metadata, the store connection and application
// preferences.
type Registry struct {
	Version     int               `yaml:"version"`
	Meters      map[string]*Meter `yaml:"meters,omitempty"` // Keyed by serial device path
	Store       *Store            `yaml:"store,omitempty"`
	Preferences *Preferences      `yaml:"preferences,omitempty"`
}

// Meter represents user-defined metadata for a single meter.
// This is keyed by the meter's serial device path in the Registry.
type Meter struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful read time
	// Parameters are push bindings in the idx:register:mode[:compareIdx]
	// form, used when a push or serve command gives none on the command line.
	Parameters []string `yaml:"parameters,omitempty"`
}

// Store holds the connection settings for the Domoticz server.
type Store struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	TraceFile           string `yaml:"trace_file,omitempty"`    // Byte-level trace dump target
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`    // Serial read timeout
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`   // Exporter poll cadence
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Meters:  make(map[string]*Meter),
		Store: &Store{
			Host: DefaultStoreHost,
			Port: DefaultStorePort,
		},
		Preferences: &Preferences{
			ReadTimeoutSeconds:  DefaultReadTimeoutSeconds,
			PollIntervalSeconds: DefaultPollIntervalSeconds,
		},
	}
}

// GetMeter retrieves meter metadata by device path.
// Returns nil if the meter doesn't exist in the registry.
func (r *Registry) GetMeter(device string) *Meter {
	return r.Meters[device]
}

// EnsureMeter ensures a meter entry exists in the registry.
// If the meter doesn't exist, creates a new entry with default values.
// Returns the meter entry (existing or newly created).
func (r *Registry) EnsureMeter(device string) *Meter {
	if r.Meters == nil {
		r.Meters = make(map[string]*Meter)
	}

	if meter, exists := r.Meters[device]; exists {
		return meter
	}

	meter := &Meter{}
	r.Meters[device] = meter
	return meter
}

// UpdateMeterLastSeen updates the last seen timestamp for a meter.
func (r *Registry) UpdateMeterLastSeen(device string) {
	meter := r.EnsureMeter(device)
	meter.LastSeen = time.Now()
}

// SetMeterNickname sets a user-friendly nickname for a meter.
func (r *Registry) SetMeterNickname(device, nickname string) {
	meter := r.EnsureMeter(device)
	meter.Nickname = nickname
}

// SetMeterParameters replaces the stored push parameters for a meter.
func (r *Registry) SetMeterParameters(device string, parameters []string) {
	meter := r.EnsureMeter(device)
	meter.Parameters = parameters
}

// StoreSettings returns the configured store host and port, falling back to
// defaults for missing values.
func (r *Registry) StoreSettings() (host string, port int) {
	host, port = DefaultStoreHost, DefaultStorePort
	if r.Store != nil {
		if r.Store.Host != "" {
			host = r.Store.Host
		}
		if r.Store.Port != 0 {
			port = r.Store.Port
		}
	}
	return host, port
}

// ReadTimeout returns the serial read timeout as a duration.
func (p *Preferences) ReadTimeout() time.Duration {
	if p == nil || p.ReadTimeoutSeconds <= 0 {
		return DefaultReadTimeoutSeconds * time.Second
	}
	return time.Duration(p.ReadTimeoutSeconds) * time.Second
}

// PollInterval returns the exporter poll cadence as a duration.
func (p *Preferences) PollInterval() time.Duration {
	if p == nil || p.PollIntervalSeconds <= 0 {
		return DefaultPollIntervalSeconds * time.Second
	}
	return time.Duration(p.PollIntervalSeconds) * time.Second
}

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "multical") {
		t.Errorf("GetConfigDir() = %v, should contain 'multical'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDirHonorsXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME applies to Linux and other Unix-like systems")
	}

	custom := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", custom)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join(custom, "multical") {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, filepath.Join(custom, "multical"))
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Meters == nil {
		t.Error("NewRegistry().Meters should not be nil")
	}

	if reg.Store == nil {
		t.Fatal("NewRegistry().Store should not be nil")
	}
	if reg.Store.Host != DefaultStoreHost || reg.Store.Port != DefaultStorePort {
		t.Errorf("Store defaults = %v:%v, want %v:%v",
			reg.Store.Host, reg.Store.Port, DefaultStoreHost, DefaultStorePort)
	}

	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.ReadTimeoutSeconds != DefaultReadTimeoutSeconds {
		t.Errorf("ReadTimeoutSeconds = %v, want %v",
			reg.Preferences.ReadTimeoutSeconds, DefaultReadTimeoutSeconds)
	}
	if reg.Preferences.PollIntervalSeconds != DefaultPollIntervalSeconds {
		t.Errorf("PollIntervalSeconds = %v, want %v",
			reg.Preferences.PollIntervalSeconds, DefaultPollIntervalSeconds)
	}
}

func TestRegistryEnsureMeter(t *testing.T) {
	reg := NewRegistry()

	// First call should create the meter
	meter1 := reg.EnsureMeter("/dev/ttyUSB0")
	if meter1 == nil {
		t.Fatal("EnsureMeter() returned nil")
	}

	// Second call should return the same meter
	meter2 := reg.EnsureMeter("/dev/ttyUSB0")
	if meter1 != meter2 {
		t.Error("EnsureMeter() should return same instance for same device")
	}

	// Different device should create a new meter
	meter3 := reg.EnsureMeter("/dev/ttyUSB1")
	if meter1 == meter3 {
		t.Error("EnsureMeter() should create new instance for different device")
	}
}

func TestRegistryUpdateMeterLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateMeterLastSeen("/dev/ttyUSB0")
	after := time.Now()

	meter := reg.GetMeter("/dev/ttyUSB0")
	if meter == nil {
		t.Fatal("Meter should exist after UpdateMeterLastSeen()")
	}

	if meter.LastSeen.Before(before) || meter.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", meter.LastSeen, before, after)
	}
}

func TestRegistrySetMeterNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetMeterNickname("/dev/ttyUSB0", "District Heating")

	meter := reg.GetMeter("/dev/ttyUSB0")
	if meter == nil {
		t.Fatal("Meter should exist after SetMeterNickname()")
	}

	if meter.Nickname != "District Heating" {
		t.Errorf("Nickname = %v, want 'District Heating'", meter.Nickname)
	}
}

func TestRegistrySetMeterParameters(t *testing.T) {
	reg := NewRegistry()

	params := []string{"370:0x003C:0", "371:0x0050:1:372"}
	reg.SetMeterParameters("/dev/ttyUSB0", params)

	meter := reg.GetMeter("/dev/ttyUSB0")
	if meter == nil {
		t.Fatal("Meter should exist after SetMeterParameters()")
	}

	if len(meter.Parameters) != 2 || meter.Parameters[0] != "370:0x003C:0" {
		t.Errorf("Parameters = %v, want %v", meter.Parameters, params)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Create and populate registry
	reg := NewRegistry()
	reg.SetMeterNickname("/dev/ttyUSB0", "Test Meter")
	reg.SetMeterParameters("/dev/ttyUSB0", []string{"370:0x003C:0"})
	reg.Store = &Store{Host: "192.168.1.50", Port: 8081}
	reg.Preferences.TraceFile = "/tmp/multical-trace"

	if err := reg.saveTo(configPath); err != nil {
		t.Fatalf("saveTo() error = %v", err)
	}

	// The header comment must survive as valid YAML
	loaded, err := loadRegistryFromPath(configPath)
	if err != nil {
		t.Fatalf("loadRegistryFromPath() error = %v", err)
	}

	meter := loaded.GetMeter("/dev/ttyUSB0")
	if meter == nil {
		t.Fatal("Meter should exist in loaded registry")
	}
	if meter.Nickname != "Test Meter" {
		t.Errorf("Loaded nickname = %v, want 'Test Meter'", meter.Nickname)
	}
	if len(meter.Parameters) != 1 || meter.Parameters[0] != "370:0x003C:0" {
		t.Errorf("Loaded parameters = %v", meter.Parameters)
	}

	host, port := loaded.StoreSettings()
	if host != "192.168.1.50" || port != 8081 {
		t.Errorf("StoreSettings() = %v:%v, want 192.168.1.50:8081", host, port)
	}

	if loaded.Preferences.TraceFile != "/tmp/multical-trace" {
		t.Errorf("Loaded trace file = %v", loaded.Preferences.TraceFile)
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("version: 2\n"), 0600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	if _, err := loadRegistryFromPath(configPath); err == nil {
		t.Error("loadRegistryFromPath() should reject version 2")
	}
}

func TestLoadInitializesMissingSections(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("version: 1\n"), 0600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	loaded, err := loadRegistryFromPath(configPath)
	if err != nil {
		t.Fatalf("loadRegistryFromPath() error = %v", err)
	}

	if loaded.Meters == nil {
		t.Error("Meters should be initialized")
	}
	if loaded.Store == nil {
		t.Error("Store should be initialized")
	}
	if loaded.Preferences == nil {
		t.Error("Preferences should be initialized")
	}
}

func TestPreferenceDurations(t *testing.T) {
	prefs := &Preferences{ReadTimeoutSeconds: 10, PollIntervalSeconds: 60}
	if got := prefs.ReadTimeout(); got != 10*time.Second {
		t.Errorf("ReadTimeout() = %v, want 10s", got)
	}
	if got := prefs.PollInterval(); got != time.Minute {
		t.Errorf("PollInterval() = %v, want 1m", got)
	}

	var missing *Preferences
	if got := missing.ReadTimeout(); got != DefaultReadTimeoutSeconds*time.Second {
		t.Errorf("nil ReadTimeout() = %v, want default", got)
	}
	if got := missing.PollInterval(); got != DefaultPollIntervalSeconds*time.Second {
		t.Errorf("nil PollInterval() = %v, want default", got)
	}
}

// Benchmark tests

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkEnsureMeter(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureMeter("/dev/ttyUSB0")
	}
}

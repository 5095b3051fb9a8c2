package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/multical/internal/config"
	"github.com/muurk/multical/internal/discovery"
	"github.com/muurk/multical/internal/domoticz"
	"github.com/muurk/multical/internal/logging"
	"github.com/muurk/multical/internal/meter"
	"github.com/muurk/multical/internal/processing"
	"github.com/muurk/multical/internal/protocol"
	"github.com/muurk/multical/internal/tui"
)

// Command flags
var (
	devicePath string
	storeHost  string
	storePort  int
	logLevel   string
	traceFile  string

	readAllKnown  bool
	scanTimeout   int
	watchInterval time.Duration
)

// bannerWidth is the width of the push output banners, unchanged since the
// original shell-cron era so downstream log scrapers keep working.
const bannerWidth = 87

func init() {
	// Common flags for meter commands (persistent on root)
	rootCmd.PersistentFlags().StringVarP(&devicePath, "device", "d", "", "Serial device of the optical probe (default: config, then probe scan)")
	rootCmd.PersistentFlags().StringVar(&storeHost, "host", "", "Domoticz host (default: config)")
	rootCmd.PersistentFlags().IntVar(&storePort, "port", 0, "Domoticz port (default: config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace-file", "", "Append a byte-level protocol trace to this file")

	// Add subcommands directly to root
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(registersCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(watchCmd)
}

// readCmd reads registers once and prints them
var readCmd = &cobra.Command{
	Use:   "read <register>...",
	Short: "Read meter registers",
	Long: `Read one or more registers from the meter and print the decoded values.

Registers are given as names from the known register table (case-insensitive),
or as numbers in decimal or hex. Use 'multical registers' to list the table.`,
	Example: `  # Read heat energy by name
  multical read "Heat Energy (E1)" --device /dev/ttyUSB0

  # Read by register number (hex or decimal)
  multical read 0x003C 0x0056
  multical read 60 86

  # Read everything the meter is known to expose
  multical read --all-known`,
	RunE: runRead,
}

func init() {
	readCmd.Flags().BoolVar(&readAllKnown, "all-known", false, "Read every register in the known table")
}

func runRead(cmd *cobra.Command, args []string) error {
	registers, err := resolveRegisters(args)
	if err != nil {
		return err
	}
	if len(registers) == 0 {
		return fmt.Errorf("no registers given (pass register names/numbers or --all-known)")
	}

	reader, _, cleanup, err := openReader()
	if err != nil {
		return err
	}
	defer cleanup()

	for _, register := range registers {
		name, ok := meter.RegisterName(register)
		if !ok {
			name = fmt.Sprintf("0x%04X", register)
		}

		reading, err := reader.ReadVariable(register)
		if err != nil {
			fmt.Printf("%-25s read failed (%s)\n", name, meter.Reason(err))
			continue
		}
		fmt.Printf("%-25s %v %s\n", name, reading.Value, reading.Unit)
	}

	return nil
}

// pushCmd runs the full read-process-push pipeline
var pushCmd = &cobra.Command{
	Use:   "push <binding>...",
	Short: "Read registers and push processed values to Domoticz",
	Long: `Run the full pipeline: read each bound register once, apply the
processing mode, and submit the result to the Domoticz device.

Bindings have the form "idx:register:mode[:compareIdx]":
  idx         Domoticz device receiving the value
  register    meter register to read (decimal or hex)
  mode        0 = overwrite idx with the reading
              1 = reading minus the value of compareIdx, stored in idx
              2 = stored idx value plus (reading minus compareIdx), stored in idx
  compareIdx  comparison device, required for modes 1 and 2

Devices must exist in Domoticz before values can be pushed to them. Create a
"Dummy" hardware entry, then add Virtual Sensors under it; a "Custom Sensor"
with axis label "Gj" suits the heat energy register.`,
	Example: `  # Overwrite device 88 with heat energy, device 89 with power
  multical push 88:0x003C:0 89:0x0050:0 --device /dev/ttyUSB0

  # Store heat energy minus the value of device 90 in device 88
  multical push 88:0x003C:1:90

  # Registers accept decimal too (60 == 0x003C)
  multical push 88:60:0`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	params, err := processing.ParseParameters(args)
	if err != nil {
		return err
	}

	client, err := storeClient()
	if err != nil {
		return err
	}

	reader, device, cleanup, err := openReader()
	if err != nil {
		return err
	}
	defer cleanup()

	processor := processing.NewProcessor(client)
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	printHeader(timestamp)

	pushed := 0
	for _, register := range processing.Registers(params) {
		name, ok := meter.RegisterName(register)
		if !ok {
			logging.Warn("Unknown register in binding, skipping",
				zap.String("register", fmt.Sprintf("0x%04X", register)))
			continue
		}

		reading, err := reader.ReadVariable(register)
		if err != nil {
			logging.Error("Register read failed",
				zap.String("register", name),
				zap.String("reason", meter.Reason(err)),
				zap.Error(err))
			continue
		}

		fmt.Printf("%-25s %v %s\n", name, reading.Value, reading.Unit)

		for _, param := range processing.ForRegister(params, register) {
			value, err := processor.Process(reading.Value, param)
			if err != nil {
				logging.Error("Processing failed",
					zap.String("binding", param.String()),
					zap.Error(err))
				continue
			}

			deviceName := fmt.Sprintf("idx:%d", param.Idx)
			if dev, err := client.Device(param.Idx); err == nil {
				deviceName = dev.Name
			}

			fmt.Printf("  + Mode %d: Submit value %v to '%s' (idx: %d)\n",
				int(param.Mode), value, deviceName, param.Idx)

			if err := client.UpdateValue(param.Idx, value); err != nil {
				logging.Error("Store update failed",
					zap.Int("idx", param.Idx),
					zap.Error(err))
				continue
			}
			pushed++
		}
	}

	printFooter(timestamp)

	if pushed > 0 {
		rememberMeter(device)
	}

	return nil
}

// printHeader prints the banner above the pushed readings
func printHeader(timestamp string) {
	fmt.Println(strings.Repeat("=", bannerWidth))
	fmt.Printf("Kamstrup Multical 402 serial optical data received: %s\n", timestamp)
	fmt.Println("Meter vendor/type: Kamstrup M402")
	fmt.Println(strings.Repeat("-", bannerWidth))
}

// printFooter closes the banner
func printFooter(timestamp string) {
	fmt.Println(strings.Repeat("-", bannerWidth))
	fmt.Printf("End data received: %s\n", timestamp)
	fmt.Println(strings.Repeat("=", bannerWidth))
}

// testCmd groups the connectivity tests
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Connectivity tests for the meter and the store",
}

func init() {
	testCmd.AddCommand(testMeterCmd)
	testCmd.AddCommand(testStoreCmd)
}

// testMeterCmd walks the whole known register table
var testMeterCmd = &cobra.Command{
	Use:   "meter",
	Short: "Test the optical link by reading every known register",
	Long: `Read every register in the known table and print the decoded values.

A fully working link prints a value and unit for (almost) every register;
widespread timeouts usually mean the optical probe is misaligned on the
meter's IR eye or the meter has powered its port down.`,
	Example: `  multical test meter --device /dev/ttyUSB0`,
	RunE:    runTestMeter,
}

func runTestMeter(cmd *cobra.Command, args []string) error {
	reader, _, cleanup, err := openReader()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("\n=== Testing Kamstrup Interface ===\n\n")

	for _, register := range meter.Registers() {
		reading, err := reader.ReadVariable(register.ID)
		if err != nil {
			fmt.Printf("CommandNr %4d: %-25s read failed (%s)\n", register.ID, register.Name, meter.Reason(err))
			continue
		}
		fmt.Printf("CommandNr %4d: %-25s %v %s\n", register.ID, register.Name, reading.Value, reading.Unit)
	}

	fmt.Printf("\n=== Test Complete ===\n\n")

	return nil
}

// testStoreCmd lists every device the store knows
var testStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Test the Domoticz connection by listing all devices",
	Long: `Connect to the Domoticz server and list every device with its index,
name, and current value. The indexes are what push bindings refer to.`,
	Example: `  multical test store --host 192.168.1.100 --port 8080`,
	RunE:    runTestStore,
}

func runTestStore(cmd *cobra.Command, args []string) error {
	client, err := storeClient()
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Testing Domoticz Connection ===\n\n")

	devices, err := client.AllDevices()
	if err != nil {
		fmt.Println(domoticz.GetShortErrorMessage(err))
		fmt.Println()
		fmt.Println(domoticz.GetTroubleshootingHint(err))
		return fmt.Errorf("failed to connect to Domoticz: %w", err)
	}

	for _, device := range devices {
		fmt.Printf("idx: %5s, Name: %-60s, Value: %s\n", device.Idx, device.Name, device.Data)
	}

	fmt.Printf("\n=== Found %d devices ===\n\n", len(devices))

	return nil
}

// registersCmd prints the known register table
var registersCmd = &cobra.Command{
	Use:   "registers",
	Short: "Print the known register table",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%-8s %7s  %s\n", "Register", "Decimal", "Name")
		for _, register := range meter.Registers() {
			fmt.Printf("0x%04X   %7d  %s\n", register.ID, register.ID, register.Name)
		}
		return nil
	},
}

// discoverCmd scans the network for Domoticz servers and lists local probes
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover Domoticz servers and local optical probes",
	Long: `Scan the local network for Domoticz servers using mDNS/DNS-SD and list
serial devices that look like optical probes.

Domoticz announces itself over mDNS when "Accept new Hardware Devices" style
discovery is enabled; on networks where it does not, use the --host flag on
the other commands instead.`,
	Example: `  # Scan for 10 seconds (default)
  multical discover

  # Quick 3-second scan
  multical discover --timeout 3`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for Domoticz servers (timeout: %ds)...\n\n", scanTimeout)

	servers, err := discovery.ScanForServers(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(servers) == 0 {
		fmt.Println("No Domoticz servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the Domoticz server is running")
		fmt.Println("  - mDNS does not cross subnets; scan from the same network segment")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --host/--port to specify the server manually")
	} else {
		fmt.Printf("Found %d server(s):\n\n", len(servers))
		for i, server := range servers {
			fmt.Printf("%d. %s\n", i+1, server.Name)
			fmt.Printf("   Address: %s:%d\n", server.IP, server.Port)
			fmt.Printf("   Host:    %s\n", server.Hostname)
			if len(server.Metadata) > 0 {
				fmt.Printf("   Metadata: %v\n", server.Metadata)
			}
			fmt.Println()
		}
	}

	probes, err := discovery.ListProbes()
	if err != nil {
		return fmt.Errorf("probe scan failed: %w", err)
	}

	if len(probes) == 0 {
		fmt.Println("No optical probes found under /dev.")
	} else {
		fmt.Printf("Local optical probes:\n\n")
		for i, probe := range probes {
			fmt.Printf("%d. %s\n", i+1, probe.Path)
			if probe.ID != "" {
				fmt.Printf("   ID: %s\n", probe.ID)
			}
		}
		fmt.Println()
		fmt.Println("Use 'multical read --device <path> --all-known' to test a probe")
	}

	return nil
}

// watchCmd runs the live TUI
var watchCmd = &cobra.Command{
	Use:   "watch [register]...",
	Short: "Watch meter values live in a full-screen TUI",
	Long: `Poll the given registers on an interval and render the values in a
full-screen table that refreshes in place.

Without arguments the common set is watched: heat energy, power, both
temperatures, volume, and flow.`,
	Example: `  # Watch the common registers every 30 seconds
  multical watch --device /dev/ttyUSB0

  # Watch specific registers at a faster cadence
  multical watch 0x003C Power --interval 10s`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Poll interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	var registers []uint16
	if len(args) == 0 {
		registers = []uint16{
			meter.RegHeatEnergy,
			meter.RegPower,
			meter.RegTemp1,
			meter.RegTemp2,
			meter.RegVolume,
			meter.RegFlow,
		}
	} else {
		var err error
		registers, err = parseRegisterArgs(args)
		if err != nil {
			return err
		}
	}

	reader, device, cleanup, err := openReader()
	if err != nil {
		return err
	}
	defer cleanup()

	model := tui.NewWatchModel(reader, device, registers, watchInterval)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}

	return nil
}

// resolveRegisters turns the read command's arguments into register numbers
func resolveRegisters(args []string) ([]uint16, error) {
	if readAllKnown {
		table := meter.Registers()
		registers := make([]uint16, len(table))
		for i, register := range table {
			registers[i] = register.ID
		}
		return registers, nil
	}
	return parseRegisterArgs(args)
}

// parseRegisterArgs accepts register names from the known table and numbers
// in any base strconv understands (60, 0x3C, 0o74)
func parseRegisterArgs(args []string) ([]uint16, error) {
	registers := make([]uint16, 0, len(args))
	for _, arg := range args {
		id, err := meter.ParseRegister(arg)
		if err != nil {
			return nil, fmt.Errorf("%w (see 'multical registers' for names)", err)
		}
		registers = append(registers, id)
	}
	return registers, nil
}

// openReader resolves the serial device and opens a meter reader on it.
// The returned cleanup closes the reader and the trace sink.
func openReader() (*meter.Reader, string, func(), error) {
	device, err := resolveDevice()
	if err != nil {
		return nil, "", nil, err
	}

	registry, _ := config.GetGlobalRegistry()

	var trace *protocol.Trace
	var traceSink *os.File
	if path := resolveTraceFile(registry); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		traceSink = f
		trace = protocol.NewTrace(f)
	}

	readTimeout := time.Duration(0)
	if registry != nil {
		readTimeout = registry.Preferences.ReadTimeout()
	}

	reader, err := meter.Open(meter.Config{
		Device:      device,
		ReadTimeout: readTimeout,
		Trace:       trace,
	})
	if err != nil {
		if traceSink != nil {
			_ = traceSink.Close()
		}
		return nil, "", nil, err
	}

	cleanup := func() {
		_ = reader.Close()
		if traceSink != nil {
			_ = traceSink.Close()
		}
	}
	return reader, device, cleanup, nil
}

// resolveDevice picks the serial device: the --device flag, then the single
// configured meter, then a probe scan that found exactly one candidate
func resolveDevice() (string, error) {
	if devicePath != "" {
		return devicePath, nil
	}

	if registry, err := config.GetGlobalRegistry(); err == nil && len(registry.Meters) == 1 {
		for device := range registry.Meters {
			fmt.Printf("Using configured meter: %s\n", device)
			return device, nil
		}
	}

	fmt.Println("No device specified, scanning /dev for optical probes...")
	probes, err := discovery.ListProbes()
	if err != nil {
		return "", fmt.Errorf("probe scan failed: %w", err)
	}

	switch len(probes) {
	case 0:
		return "", fmt.Errorf("no optical probes found. Use --device to specify the serial device")
	case 1:
		fmt.Printf("Found probe: %s\n\n", probes[0].Path)
		return probes[0].Path, nil
	default:
		fmt.Printf("Found %d probes:\n", len(probes))
		for i, probe := range probes {
			fmt.Printf("%d. %s\n", i+1, probe.Path)
		}
		return "", fmt.Errorf("multiple probes found. Use --device to specify which one")
	}
}

// resolveTraceFile returns the trace path: the flag wins, then the config
func resolveTraceFile(registry *config.Registry) string {
	if traceFile != "" {
		return traceFile
	}
	if registry != nil && registry.Preferences != nil {
		return registry.Preferences.TraceFile
	}
	return ""
}

// storeClient builds a Domoticz client from the flags, falling back to the
// configured store settings. When neither flag nor config names a server, a
// quick mDNS scan runs before settling on the built-in default.
func storeClient() (*domoticz.Client, error) {
	host := storeHost
	port := storePort

	if host == "" || port == 0 {
		registry, err := config.GetGlobalRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}

		if host == "" && registry.Store == nil {
			if servers, err := discovery.QuickScan(); err == nil && len(servers) == 1 {
				fmt.Printf("Using discovered Domoticz server: %s\n", servers[0])
				return domoticz.NewClient(servers[0].IP, servers[0].Port), nil
			}
		}

		configHost, configPort := registry.StoreSettings()
		if host == "" {
			host = configHost
		}
		if port == 0 {
			port = configPort
		}
	}

	return domoticz.NewClient(host, port), nil
}

// rememberMeter records a successful exchange in the config registry so
// later invocations can default to this device
func rememberMeter(device string) {
	registry, err := config.GetGlobalRegistry()
	if err != nil {
		return
	}
	registry.UpdateMeterLastSeen(device)
	if err := registry.Save(); err != nil {
		logging.Debug("Failed to save config", zap.Error(err))
	}
}

// Multical-exporter is a polling daemon for Kamstrup Multical 402 heat meters.
//
// It reads a configurable set of registers over the meter's IR optical
// interface on an interval and publishes the decoded values as Prometheus
// metrics, a JSON snapshot, and a WebSocket stream. Optionally it pushes
// processed values to a Domoticz server using the same parameter bindings
// the 'multical push' command takes.
//
// Usage:
//
//	multical-exporter server [flags]
//
// See 'multical-exporter server --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/multical/internal/config"
	"github.com/muurk/multical/internal/exporter"
	"github.com/muurk/multical/internal/meter"
	"github.com/muurk/multical/internal/processing"
	"github.com/muurk/multical/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "multical-exporter",
	Short: "Kamstrup Multical 402 Exporter Daemon",
	Long: `A long-running exporter daemon for Kamstrup Multical 402 heat meters.

The daemon owns the optical probe, polls the meter on an interval, and
publishes the readings as Prometheus metrics, a JSON snapshot endpoint, and
a live WebSocket stream. With parameter bindings it also pushes processed
values to a Domoticz server each cycle.

Note: For one-shot reads and pushes, use the separate 'multical' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	device     string
	listenAddr string
	interval   time.Duration
	registers  []string
	storeHost  string
	storePort  int
	params     []string
	logLevel   string
	logFile    string
	traceFile  string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the exporter daemon",
	Long: `Start the exporter daemon and block until SIGINT or SIGTERM.

The polled register set is the union of --registers and the registers named
by --params bindings. Without --registers the common set is polled: heat
energy, power, both temperatures, volume, and flow.

Pushing to Domoticz is enabled by --host; each cycle then runs every binding
given with --params, exactly like 'multical push' does one-shot. Bindings
have the form "idx:register:mode[:compareIdx]".`,
	Example: `  # Poll the common registers every 5 minutes, metrics on :9497
  multical-exporter server --device /dev/ttyUSB0

  # Poll selected registers every minute
  multical-exporter server --device /dev/ttyUSB0 \
    --registers 0x003C --registers Power --interval 1m

  # Push heat energy to Domoticz device 88 each cycle
  multical-exporter server --device /dev/ttyUSB0 \
    --host 192.168.1.100 --port 8080 --params 88:0x003C:0

  # Log to a rotating file and capture a wire trace
  multical-exporter server --device /dev/ttyUSB0 \
    --log-file /var/log/multical-exporter.log --trace-file /tmp/multical_trace`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVarP(&device, "device", "d", "", "Serial device of the optical probe (default: config)")
	serverCmd.Flags().StringVar(&listenAddr, "listen", exporter.DefaultListenAddr, "HTTP listen address")
	serverCmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default: config, then 5m)")
	serverCmd.Flags().StringArrayVar(&registers, "registers", nil, "Register to poll, by name or number (repeatable)")
	serverCmd.Flags().StringVar(&storeHost, "host", "", "Domoticz host (enables store pushes)")
	serverCmd.Flags().IntVar(&storePort, "port", 0, "Domoticz port (default: config)")
	serverCmd.Flags().StringArrayVar(&params, "params", nil, "Push binding idx:register:mode[:compareIdx] (repeatable)")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serverCmd.Flags().StringVar(&logFile, "log-file", "", "Log file with rotation (default: stderr only)")
	serverCmd.Flags().StringVar(&traceFile, "trace-file", "", "Append a byte-level protocol trace to this file")
}

func runServer(cmd *cobra.Command, args []string) error {
	registry, err := config.GetGlobalRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if device == "" {
		if len(registry.Meters) != 1 {
			return fmt.Errorf("no device specified and config does not name exactly one meter; use --device")
		}
		for configured := range registry.Meters {
			device = configured
		}
	}

	if interval == 0 {
		interval = registry.Preferences.PollInterval()
	}

	if traceFile == "" && registry.Preferences != nil {
		traceFile = registry.Preferences.TraceFile
	}

	parsedParams, err := processing.ParseParameters(params)
	if err != nil {
		return err
	}

	polled := make([]uint16, 0, len(registers))
	for _, arg := range registers {
		id, err := meter.ParseRegister(arg)
		if err != nil {
			return err
		}
		polled = append(polled, id)
	}
	if len(polled) == 0 && len(parsedParams) == 0 {
		polled = []uint16{
			meter.RegHeatEnergy,
			meter.RegPower,
			meter.RegTemp1,
			meter.RegTemp2,
			meter.RegVolume,
			meter.RegFlow,
		}
	}

	port := storePort
	if storeHost != "" && port == 0 {
		_, port = registry.StoreSettings()
	}

	// Bindings need a store target even when no --host is given
	if len(parsedParams) > 0 && storeHost == "" {
		configHost, configPort := registry.StoreSettings()
		storeHost, port = configHost, configPort
	}

	exporterConfig := &exporter.Config{
		ListenAddr:  listenAddr,
		Device:      device,
		ReadTimeout: registry.Preferences.ReadTimeout(),
		TraceFile:   traceFile,
		StoreHost:   storeHost,
		StorePort:   port,
		Params:      parsedParams,
		Registers:   polled,
		Interval:    interval,
		LogLevel:    logLevel,
		LogFile:     logFile,
	}

	srv, err := exporter.New(exporterConfig)
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("multical-exporter %s (commit: %s)\n", version.Version, version.Commit)
	},
}

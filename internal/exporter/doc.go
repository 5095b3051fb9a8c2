// Package exporter implements the meter-polling daemon.
//
// The exporter polls a set of Multical 402 registers on an interval and
// publishes the decoded readings three ways: as Prometheus metrics, as a
// JSON snapshot over HTTP, and as a live WebSocket stream. When a store is
// configured, each reading is also run through its parameter bindings and
// the processed values are pushed to Domoticz.
//
// # HTTP Endpoints
//
//   - /metrics       Prometheus scrape endpoint
//   - /healthz       Liveness check, always 200 while the process runs
//   - /readyz        Readiness check, 200 after the first successful read
//   - /api/readings  Latest reading per register as a JSON array
//   - /stream        WebSocket feed, one JSON array per completed poll cycle
//
// # Metrics
//
//   - multical_value{register,name,unit}        Last decoded value
//   - multical_reads_total                      Successful reads
//   - multical_read_errors_total{reason}        Failures by reason
//   - multical_read_duration_seconds            Exchange latency histogram
//   - multical_last_read_timestamp_seconds      Unix time of last success
//   - multical_store_push_total{result}         Store pushes by result
//
// # Usage Example
//
//	config := &exporter.Config{
//	    ListenAddr: ":9497",
//	    Device:     "/dev/ttyUSB0",
//	    Interval:   5 * time.Minute,
//	    StoreHost:  "192.168.1.100",
//	    StorePort:  8080,
//	    LogLevel:   "info",
//	}
//
//	srv, err := exporter.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until shutdown signal or error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Polling
//
// The polled register set is the union of the explicitly configured
// registers and the registers referenced by parameter bindings, each read
// once per cycle. A register that several bindings reference is still read
// once and fanned out. The first cycle runs immediately on startup.
//
// # Graceful Shutdown
//
// The server handles SIGINT and SIGTERM:
//  1. Stop the poller so the serial device goes quiet
//  2. Drain and close WebSocket clients
//  3. Shut down the HTTP listener
//  4. Close the serial device and the trace file
//
// # Thread Safety
//
// The poller, hub, and HTTP handlers run concurrently. The latest-reading
// snapshot is guarded by a read-write mutex and the WebSocket client set is
// owned by the hub goroutine.
package exporter

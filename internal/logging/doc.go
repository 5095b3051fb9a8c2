// Package logging provides structured logging for the multical tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the CLI and the exporter. It provides both general
// logging functions and specialized functions for protocol-specific logging
// needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (frame hex dumps, store request traces)
//   - Info: Normal operations (link events, readings, pushes)
//   - Warn: Non-fatal issues (unknown unit codes, escape anomalies, retries)
//   - Error: Fatal issues (port open failures, store unreachable)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Meter reading",
//	    zap.String("register", "0x003c"),
//	    zap.Float64("value", 123.45),
//	    zap.String("unit", "Gj"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Serial Link Logging:
//
//	logging.LogLinkEvent("/dev/ttyUSB0", "opened")
//	logging.LogLinkEvent("/dev/ttyUSB0", "closed")
//
// Frame Logging:
//
//	logging.LogFrame("tx", requestBytes)
//	logging.LogFrame("rx", responseBytes)
//
// Reading Logging:
//
//	logging.LogReading(0x003C, "Heat Energy (E1)", 1234.5, "Gj")
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The exporter daemon uses InitializeWithFile to also write to a rolling log
// file alongside stdout.
//
// # Output Format
//
// Logs are written to stdout in console format (human-readable):
//
//	2026-08-25T10:30:45.123+0200  INFO  Meter reading
//	  register=0x003c
//	  value=1234.5
//	  unit=Gj
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging

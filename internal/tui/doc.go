// Package tui implements the terminal user interface for watching meter values live.
//
// This package provides an interactive, full-screen view that polls a set of
// meter registers over the optical head and renders the decoded values as a
// table that refreshes on a fixed interval. Built using the Bubble Tea
// framework, it follows the Elm architecture with immutable state updates and
// a clean Model-Update-View pattern.
//
// # Architecture
//
// The single watch screen owns the whole lifecycle:
//   - A poll cycle reads every watched register in sequence inside a command
//     goroutine, so the blocking serial exchange never stalls the UI loop.
//   - The completed cycle is delivered back as a message and merged into the
//     results table, then the next cycle is scheduled with tea.Tick.
//   - Failed reads keep the previous value on screen and render the failure
//     reason next to it, so transient optical glitches do not blank the table.
//
// The screen uses a unified container pattern (RenderApplicationContainer)
// with a header, content area, and context-sensitive footer.
//
// # Framework Components
//
//   - bubbles/spinner: read-in-progress indicator
//   - bubbles/help: context-aware key binding help
//   - bubbles/key: key binding definitions
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	reader, err := meter.Open(meter.Config{Device: "/dev/ttyUSB0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//
//	model := tui.NewWatchModel(reader, "/dev/ttyUSB0", registers, 30*time.Second)
//	program := tea.NewProgram(model, tea.WithAltScreen())
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Key Bindings
//
//   - r: refresh now (ignored while a cycle is already running)
//   - q/esc/ctrl+c: quit
//
// # Thread Safety
//
// The Bubble Tea framework ensures thread safety through message passing.
// All model updates occur in a single goroutine, preventing race conditions.
package tui

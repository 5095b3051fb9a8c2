package protocol

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Trace mirrors wire traffic to a diagnostic sink as a direction-tagged hex
// dump, the format the vendor's own debugging tools expect:
//
//	Tx	 80  3f  10  01  00  3c  14  61  0d
//	Rx	 40  3f  10  00  3c  16 ...
//	Msg	CRC error
//
// A direction header is emitted only when the direction changes, so bytes
// received one at a time across many calls stay on one line. Event lines
// record conditions that produce no bytes of their own (timeouts, checksum
// failures, escape anomalies).
//
// All methods are nil-safe: a nil *Trace is a disabled sink.
type Trace struct {
	mu      sync.Mutex
	w       io.Writer
	lastDir string
}

// NewTrace creates a trace writing to w.
func NewTrace(w io.Writer) *Trace {
	return &Trace{w: w}
}

// Tx records transmitted bytes.
func (t *Trace) Tx(data []byte) {
	t.dump("Tx", data)
}

// Rx records received bytes.
func (t *Trace) Rx(data []byte) {
	t.dump("Rx", data)
}

// Event records a synthetic marker line, e.g. "Rx Timeout" or "CRC error".
func (t *Trace) Event(msg string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	if t.lastDir != "" {
		b.WriteByte('\n')
		t.lastDir = ""
	}
	fmt.Fprintf(&b, "Msg\t%s\n", msg)
	_, _ = io.WriteString(t.w, b.String())
}

// Eventf records a formatted synthetic marker line.
func (t *Trace) Eventf(format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.Event(fmt.Sprintf(format, args...))
}

func (t *Trace) dump(dir string, data []byte) {
	if t == nil || len(data) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	if dir != t.lastDir {
		if t.lastDir != "" {
			b.WriteByte('\n')
		}
		b.WriteString(dir)
		b.WriteByte('\t')
		t.lastDir = dir
	}
	for _, x := range data {
		fmt.Fprintf(&b, " %02x ", x)
	}
	_, _ = io.WriteString(t.w, b.String())
}

//go:build ignore

package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muurk/multical/internal/meter"
	"github.com/muurk/multical/internal/protocol"
)

// Replays a wire trace produced by the --trace-file flag back through the
// frame decoder, so a capture taken on the meter can be analyzed offline.
//
// Run with: go run tools/decode-trace.go /tmp/multical_trace

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: decode-trace <trace-file>")
		fmt.Println("Example: decode-trace /tmp/multical_trace")
		os.Exit(1)
	}

	filename := os.Args[1]
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Multical Trace Decoder ===\n")
	fmt.Printf("File: %s\n\n", filename)

	exchanges := 0
	for _, line := range strings.Split(string(data), "\n") {
		tag, rest, found := strings.Cut(line, "\t")
		if !found {
			continue
		}

		switch tag {
		case "Tx":
			exchanges++
			fmt.Printf("--- Exchange %d ---\n", exchanges)
			decodeRequest(parseHexBytes(rest))
		case "Rx":
			decodeResponses(parseHexBytes(rest))
		case "Msg":
			fmt.Printf("Event: %s\n", rest)
		}
	}

	fmt.Printf("\n=== %d exchange(s) ===\n", exchanges)
}

// parseHexBytes parses the " 80  3f  10 " byte layout of a trace line
func parseHexBytes(s string) []byte {
	fields := strings.Fields(s)
	out := make([]byte, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.ParseUint(field, 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(n))
	}
	return out
}

// decodeRequest unpacks a transmitted frame and names the register it asks for
func decodeRequest(frame []byte) {
	fmt.Printf("Tx %s\n", hexDump(frame))

	if len(frame) < 2 || frame[0] != protocol.ReqStart || frame[len(frame)-1] != protocol.FrameEnd {
		fmt.Println("   not a complete request frame")
		return
	}

	body, anomalies := protocol.UnescapeBytes(frame[1 : len(frame)-1])
	if len(anomalies) > 0 {
		fmt.Printf("   %d invalid escape sequence(s)\n", len(anomalies))
	}
	if !protocol.VerifyChecksum(body) {
		fmt.Println("   checksum mismatch in request")
		return
	}

	payload := body[:len(body)-2]
	if len(payload) == 5 && payload[0] == 0x3F && payload[1] == 0x10 {
		register := binary.BigEndian.Uint16(payload[3:5])
		name, ok := meter.RegisterName(register)
		if !ok {
			name = "unknown register"
		}
		fmt.Printf("   GetRegister 0x%04X (%s)\n", register, name)
	} else {
		fmt.Printf("   payload %s\n", hexDump(payload))
	}
}

// decodeResponses replays received bytes through the frame decoder. A single
// trace line can carry several frames when the probe buffered across polls.
func decodeResponses(data []byte) {
	fmt.Printf("Rx %s\n", hexDump(data))

	codec := protocol.NewCodec(nil)
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		payload, err := codec.ReadFrame(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println("   incomplete frame at end of capture")
				return
			}
			fmt.Printf("   %v\n", err)
			continue
		}
		printPayload(payload)
	}
}

// printPayload decodes a response payload into a reading when it has the
// GetRegister shape, otherwise dumps it raw
func printPayload(payload []byte) {
	if len(payload) >= 4 && payload[0] == 0x3F && payload[1] == 0x10 {
		register := binary.BigEndian.Uint16(payload[2:4])
		reading, err := meter.DecodeResponse(register, payload)
		if err != nil {
			fmt.Printf("   payload %s: %v\n", hexDump(payload), err)
			return
		}
		name := reading.Name
		if name == "" {
			name = fmt.Sprintf("0x%04X", register)
		}
		fmt.Printf("   %-25s %v %s\n", name, reading.Value, reading.Unit)
		return
	}
	fmt.Printf("   payload %s\n", hexDump(payload))
}

func hexDump(data []byte) string {
	var b strings.Builder
	for _, x := range data {
		fmt.Fprintf(&b, "%02x ", x)
	}
	return strings.TrimSpace(b.String())
}

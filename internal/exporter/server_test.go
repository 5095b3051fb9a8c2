package exporter

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/muurk/multical/internal/meter"
)

func TestRouterEndpoints(t *testing.T) {
	registry := NewRegistry()
	metrics := NewMetrics(registry)
	reader := &fakeReader{
		readings: map[uint16]meter.Reading{
			0x0056: {Register: 0x0056, Name: "Temp1", Value: 58.61, Unit: "C", At: time.Now()},
		},
	}
	poller := NewPoller(PollerConfig{
		Reader:    reader,
		Registers: []uint16{0x0056},
		Metrics:   metrics,
	})

	srv := httptest.NewServer(newRouter(MetricsHandler(registry), poller, NewHub()))
	defer srv.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("reading %s body: %v", path, err)
		}
		return resp.StatusCode, string(body)
	}

	if code, body := get("/healthz"); code != http.StatusOK || body != "ok" {
		t.Errorf("/healthz = %d %q, want 200 ok", code, body)
	}

	// Not ready until the first successful poll
	if code, body := get("/readyz"); code != http.StatusServiceUnavailable || body != "not-ready" {
		t.Errorf("/readyz = %d %q, want 503 not-ready", code, body)
	}

	poller.pollOnce()

	if code, body := get("/readyz"); code != http.StatusOK || body != "ready" {
		t.Errorf("/readyz = %d %q, want 200 ready", code, body)
	}

	code, body := get("/api/readings")
	if code != http.StatusOK {
		t.Fatalf("/api/readings = %d, want 200", code)
	}
	var readings []Reading
	if err := json.Unmarshal([]byte(body), &readings); err != nil {
		t.Fatalf("/api/readings unmarshal error = %v: %s", err, body)
	}
	if len(readings) != 1 {
		t.Fatalf("/api/readings returned %d readings, want 1", len(readings))
	}
	if readings[0].Register != "0x0056" || readings[0].Value != 58.61 {
		t.Errorf("/api/readings[0] = %+v, want 0x0056 58.61", readings[0])
	}

	code, body = get("/metrics")
	if code != http.StatusOK {
		t.Fatalf("/metrics = %d, want 200", code)
	}
	for _, metric := range []string{
		"multical_reads_total",
		"multical_value",
		"multical_last_read_timestamp_seconds",
		"go_goroutines",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("/metrics output missing %s", metric)
		}
	}
}

func TestRouterReadingsEmpty(t *testing.T) {
	registry := NewRegistry()
	poller := NewPoller(PollerConfig{
		Reader:  &fakeReader{},
		Metrics: NewMetrics(registry),
	})

	srv := httptest.NewServer(newRouter(MetricsHandler(registry), poller, NewHub()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/readings")
	if err != nil {
		t.Fatalf("GET /api/readings error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var readings []Reading
	if err := json.NewDecoder(resp.Body).Decode(&readings); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(readings) != 0 {
		t.Errorf("got %d readings, want 0", len(readings))
	}
}

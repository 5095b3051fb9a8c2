package exporter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/muurk/multical/internal/logging"
	"github.com/muurk/multical/internal/meter"
	"github.com/muurk/multical/internal/processing"
	"go.uber.org/zap"
)

// DefaultInterval is the default polling interval. The meter powers its
// optical port from the request, so there is no point polling faster
// than the display refresh.
const DefaultInterval = 5 * time.Minute

// RegisterReader reads a single meter register
type RegisterReader interface {
	ReadVariable(register uint16) (meter.Reading, error)
}

// Store receives processed values and serves comparison reads
type Store interface {
	processing.ValueStore
	UpdateValue(idx int, value float64) error
}

// Reading is the wire form of a meter reading, served by the HTTP API
// and broadcast on the WebSocket stream
type Reading struct {
	Register string    `json:"register"`
	Name     string    `json:"name,omitempty"`
	Value    float64   `json:"value"`
	Unit     string    `json:"unit,omitempty"`
	At       time.Time `json:"at"`
}

func wireReading(r meter.Reading) Reading {
	return Reading{
		Register: registerLabel(r.Register),
		Name:     r.Name,
		Value:    r.Value,
		Unit:     r.Unit,
		At:       r.At,
	}
}

func registerLabel(register uint16) string {
	return fmt.Sprintf("0x%04X", register)
}

// PollerConfig holds the poller configuration
type PollerConfig struct {
	Reader    RegisterReader
	Store     Store // nil disables store pushes
	Params    []processing.Parameter
	Registers []uint16 // polled in addition to parameter-bound registers
	Interval  time.Duration
	Metrics   *Metrics
	Hub       *Hub // nil disables the WebSocket stream
}

// Poller reads the configured registers on an interval, publishes them
// as metrics and WebSocket messages, and pushes processed values to the
// store per the parameter bindings
type Poller struct {
	reader    RegisterReader
	store     Store
	processor *processing.Processor
	params    []processing.Parameter
	registers []uint16
	interval  time.Duration
	metrics   *Metrics
	hub       *Hub
	logger    *zap.Logger

	mu     sync.RWMutex
	latest map[uint16]meter.Reading
	ready  bool
}

// NewPoller creates a poller over the union of the explicitly requested
// registers and the ones the parameter bindings reference
func NewPoller(cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	seen := make(map[uint16]bool)
	registers := make([]uint16, 0, len(cfg.Registers)+len(cfg.Params))
	for _, register := range cfg.Registers {
		if !seen[register] {
			seen[register] = true
			registers = append(registers, register)
		}
	}
	for _, register := range processing.Registers(cfg.Params) {
		if !seen[register] {
			seen[register] = true
			registers = append(registers, register)
		}
	}
	sort.Slice(registers, func(i, j int) bool { return registers[i] < registers[j] })

	var processor *processing.Processor
	if cfg.Store != nil {
		processor = processing.NewProcessor(cfg.Store)
	}

	return &Poller{
		reader:    cfg.Reader,
		store:     cfg.Store,
		processor: processor,
		params:    cfg.Params,
		registers: registers,
		interval:  interval,
		metrics:   cfg.Metrics,
		hub:       cfg.Hub,
		logger:    logging.GetLogger(),
		latest:    make(map[uint16]meter.Reading),
	}
}

// Run polls until the context is cancelled. The first cycle runs
// immediately so scrapes and the readings API have data without waiting
// a full interval.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Poller started",
		zap.Duration("interval", p.interval),
		zap.Int("registers", len(p.registers)),
	)

	p.pollOnce()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller stopped")
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// pollOnce reads every configured register once and broadcasts the
// completed cycle as one snapshot
func (p *Poller) pollOnce() {
	cycle := make([]Reading, 0, len(p.registers))

	for _, register := range p.registers {
		start := time.Now()
		reading, err := p.reader.ReadVariable(register)
		p.metrics.ReadDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			p.metrics.ReadErrors.WithLabelValues(meter.Reason(err)).Inc()
			p.logger.Warn("Register read failed",
				zap.String("register", registerLabel(register)),
				zap.String("reason", meter.Reason(err)),
				zap.Error(err),
			)
			continue
		}

		p.metrics.ReadsTotal.Inc()
		p.metrics.Value.WithLabelValues(registerLabel(register), reading.Name, reading.Unit).Set(reading.Value)
		p.metrics.LastRead.Set(float64(reading.At.Unix()))

		p.mu.Lock()
		p.latest[register] = reading
		p.ready = true
		p.mu.Unlock()

		cycle = append(cycle, wireReading(reading))

		p.push(reading)
	}

	if p.hub != nil && len(cycle) > 0 {
		p.hub.Broadcast(cycle)
	}
}

// push fans a reading out to every parameter bound to its register
func (p *Poller) push(reading meter.Reading) {
	if p.processor == nil {
		return
	}

	for _, param := range processing.ForRegister(p.params, reading.Register) {
		value, err := p.processor.Process(reading.Value, param)
		if err != nil {
			p.metrics.StorePushes.WithLabelValues("error").Inc()
			p.logger.Error("Processing failed",
				zap.String("binding", param.String()),
				zap.Error(err),
			)
			continue
		}

		if err := p.store.UpdateValue(param.Idx, value); err != nil {
			p.metrics.StorePushes.WithLabelValues("error").Inc()
			p.logger.Error("Store update failed",
				zap.Int("idx", param.Idx),
				zap.Error(err),
			)
			continue
		}

		p.metrics.StorePushes.WithLabelValues("ok").Inc()
		p.logger.Info("Pushed value to store",
			zap.Int("idx", param.Idx),
			zap.Float64("value", value),
			zap.String("mode", param.Mode.String()),
		)
	}
}

// Ready reports whether at least one register read has succeeded
func (p *Poller) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}

// Latest returns the most recent reading per register, ordered by register
func (p *Poller) Latest() []Reading {
	p.mu.RLock()
	defer p.mu.RUnlock()

	readings := make([]Reading, 0, len(p.latest))
	for _, register := range p.registers {
		if reading, ok := p.latest[register]; ok {
			readings = append(readings, wireReading(reading))
		}
	}
	return readings
}

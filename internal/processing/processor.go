package processing

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/muurk/multical/internal/logging"
)

// ValueStore is the slice of the store client the processor reads from.
type ValueStore interface {
	CurrentValue(idx int) (float64, error)
}

// Processor applies processing modes to raw meter readings.
type Processor struct {
	store  ValueStore
	logger *zap.Logger
}

// NewProcessor creates a processor backed by the given store.
func NewProcessor(store ValueStore) *Processor {
	return &Processor{
		store:  store,
		logger: logging.GetLogger(),
	}
}

// Process combines a raw reading with store values per the parameter's mode.
// The result is rounded to two decimals, the precision the store keeps.
func (p *Processor) Process(value float64, param Parameter) (float64, error) {
	value = round2(value)

	switch param.Mode {
	case ModeOverwrite:
		p.logger.Debug("Mode overwrite",
			zap.Float64("value", value),
			zap.Int("idx", param.Idx))
		return value, nil

	case ModeSubtract:
		compare, err := p.store.CurrentValue(param.CompareIdx)
		if err != nil {
			return 0, fmt.Errorf("reading comparison device %d: %w", param.CompareIdx, err)
		}
		result := round2(value - compare)
		p.logger.Debug("Mode subtract",
			zap.Float64("value", value),
			zap.Float64("compare", compare),
			zap.Int("compare_idx", param.CompareIdx),
			zap.Float64("result", result))
		return result, nil

	case ModeAdd:
		stored, err := p.store.CurrentValue(param.Idx)
		if err != nil {
			return 0, fmt.Errorf("reading target device %d: %w", param.Idx, err)
		}
		compare, err := p.store.CurrentValue(param.CompareIdx)
		if err != nil {
			return 0, fmt.Errorf("reading comparison device %d: %w", param.CompareIdx, err)
		}
		result := round2(stored + (value - compare))
		p.logger.Debug("Mode add",
			zap.Float64("value", value),
			zap.Float64("stored", stored),
			zap.Float64("compare", compare),
			zap.Int("idx", param.Idx),
			zap.Int("compare_idx", param.CompareIdx),
			zap.Float64("result", result))
		return result, nil
	}

	return 0, fmt.Errorf("unknown processing mode %d", int(param.Mode))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package indicator

import (
	"maps"
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
)

// IndicatorRegistry holds the calculators the engine looks up by name.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
	// WarmUp is the longest lookback among the registered indicators,
	// the candle count after which every column carries real values.
	WarmUp() int
}

// IndicatorRegistryV1 is the RWMutex guarded registry.
type IndicatorRegistryV1 struct {
	mu         sync.RWMutex
	indicators map[types.IndicatorType]Indicator
}

// NewIndicatorRegistry creates an empty registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		mu:         sync.RWMutex{},
		indicators: map[types.IndicatorType]Indicator{},
	}
}

// defaultIndicators are the calculators behind every Snapshot field.
func defaultIndicators() []Indicator {
	return []Indicator{
		NewEMA(20),
		NewEMA(50),
		NewEMA(200),
		NewRSI(),
		NewMACD(),
		NewADX(),
		NewATR(),
	}
}

// NewDefaultRegistry returns a registry holding every indicator the engine computes.
func NewDefaultRegistry() IndicatorRegistry {
	registry := NewIndicatorRegistry()

	for _, ind := range defaultIndicators() {
		// names are unique by construction
		_ = registry.RegisterIndicator(ind)
	}

	return registry
}

func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.indicators[indicator.Name()]; taken {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "%s is already registered", indicator.Name())
	}

	r.indicators[indicator.Name()] = indicator

	return nil
}

func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if indicator, ok := r.indicators[name]; ok {
		return indicator, nil
	}

	return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "%s is not registered", name)
}

// ListIndicators returns the registered names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.indicators))
}

func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.indicators[name]; !ok {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "%s is not registered", name)
	}

	delete(r.indicators, name)

	return nil
}

func (r *IndicatorRegistryV1) WarmUp() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	warmUp := 0
	for _, indicator := range r.indicators {
		warmUp = max(warmUp, indicator.Lookback())
	}

	return warmUp
}

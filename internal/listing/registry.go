package listing

import (
	"context"
	"fmt"

	"github.com/polysign/mirsinn/internal/domain"
)

// Strategy captures a single listing-fetch implementation (HTML page, RSS feed).
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, source domain.Source) (string, error)
}

// Registry keeps a mapping from strategy tags to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by tag or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("listing strategy %s is not registered", name)
}

// Package scoring provides bullishness score providers for strategy configuration.
package scoring

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/aristath/momentum/internal/domain"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrUnknownTicker is returned when a static provider has no score for a ticker
var ErrUnknownTicker = errors.New("no score for ticker")

// StaticProvider serves fixed scores, typically loaded from the strategy file
type StaticProvider struct {
	scores map[string]float64
}

// NewStaticProvider copies the given scores, normalizing ticker symbols
func NewStaticProvider(scores map[string]float64) *StaticProvider {
	p := &StaticProvider{scores: make(map[string]float64, len(scores))}
	for ticker, score := range scores {
		p.scores[domain.NormalizeTicker(ticker)] = score
	}
	return p
}

// Score implements domain.ScoreProvider
func (p *StaticProvider) Score(ticker string) (float64, error) {
	score, ok := p.scores[domain.NormalizeTicker(ticker)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	return score, nil
}

// UniformProvider draws each ticker's score once from a seeded uniform distribution.
// It stands in for an external model score; the same seed yields the same
// scores for the same request order.
type UniformProvider struct {
	mu     sync.Mutex
	dist   distuv.Uniform
	scores map[string]float64
}

// NewUniformProvider creates a provider drawing from [min, max]
func NewUniformProvider(min, max float64, seed uint64) (*UniformProvider, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("invalid uniform score range [%v, %v]", min, max)
	}
	return &UniformProvider{
		dist: distuv.Uniform{
			Min: min,
			Max: max,
			Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
		},
		scores: make(map[string]float64),
	}, nil
}

// Score implements domain.ScoreProvider; repeated calls return the first draw
func (p *UniformProvider) Score(ticker string) (float64, error) {
	ticker = domain.NormalizeTicker(ticker)

	p.mu.Lock()
	defer p.mu.Unlock()

	if score, ok := p.scores[ticker]; ok {
		return score, nil
	}
	score := p.dist.Rand()
	p.scores[ticker] = score
	return score, nil
}

// FuncProvider adapts a function to domain.ScoreProvider
type FuncProvider func(ticker string) (float64, error)

// Score implements domain.ScoreProvider
func (f FuncProvider) Score(ticker string) (float64, error) {
	return f(ticker)
}

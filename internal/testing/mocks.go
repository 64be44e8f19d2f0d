package testing

import (
	"context"
	"sync"

	"github.com/aristath/momentum/internal/domain"
)

// MockMarketDataSource is a mock implementation of domain.MarketDataSource for testing
type MockMarketDataSource struct {
	mu       sync.RWMutex
	data     domain.MarketData
	err      error
	requests [][]string
}

// NewMockMarketDataSource creates a new mock market data source
func NewMockMarketDataSource(data domain.MarketData) *MockMarketDataSource {
	return &MockMarketDataSource{data: data}
}

// SetError sets the error to return
func (m *MockMarketDataSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// LoadBundle returns the configured series for the requested tickers, trimmed to lookback bars
func (m *MockMarketDataSource) LoadBundle(_ context.Context, tickers []string, lookback int) (domain.MarketData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, append([]string(nil), tickers...))
	if m.err != nil {
		return nil, m.err
	}

	out := make(domain.MarketData, len(tickers))
	for _, ticker := range tickers {
		series, ok := m.data[ticker]
		if !ok {
			continue
		}
		if lookback > 0 && len(series) > lookback {
			series = series[len(series)-lookback:]
		}
		out[ticker] = series
	}
	return out, nil
}

// Requests returns the ticker lists passed to LoadBundle
func (m *MockMarketDataSource) Requests() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

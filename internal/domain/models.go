// Package domain provides core domain models and types.
package domain

import (
	"sort"
	"strings"
)

// Bar represents a single daily OHLCV bar
type Bar struct {
	Date   string  `json:"date" msgpack:"date"` // YYYY-MM-DD
	Open   float64 `json:"open" msgpack:"open"`
	High   float64 `json:"high" msgpack:"high"`
	Low    float64 `json:"low" msgpack:"low"`
	Close  float64 `json:"close" msgpack:"close"`
	Volume float64 `json:"volume" msgpack:"volume"`
}

// Series is an OHLCV time series ordered oldest first
type Series []Bar

// Len returns the number of bars
func (s Series) Len() int {
	return len(s)
}

// Closes extracts closing prices, oldest first
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}
	return closes
}

// Latest returns the most recent bar, or false for an empty series
func (s Series) Latest() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// SortByDate orders the series oldest first in place
func (s Series) SortByDate() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date < s[j].Date
	})
}

// MarketData is the per-invocation bundle of OHLCV series keyed by ticker.
// Consumers treat it as read-only.
type MarketData map[string]Series

// Get returns the series for a ticker and whether the bundle has an entry for it
func (m MarketData) Get(ticker string) (Series, bool) {
	series, ok := m[ticker]
	return series, ok
}

// Tickers returns the bundle's tickers in sorted order
func (m MarketData) Tickers() []string {
	tickers := make([]string, 0, len(m))
	for ticker := range m {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// NormalizeTicker trims and upper-cases a symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

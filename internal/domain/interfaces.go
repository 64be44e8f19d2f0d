package domain

import "context"

// ScoreProvider supplies the bullishness score for a ticker.
// Scores are requested once per ticker when a strategy configuration is built.
type ScoreProvider interface {
	Score(ticker string) (float64, error)
}

// MarketDataSource assembles a market data bundle for a set of tickers.
// Tickers without stored data are left out of the bundle.
type MarketDataSource interface {
	LoadBundle(ctx context.Context, tickers []string, lookback int) (MarketData, error)
}

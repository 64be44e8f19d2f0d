// Package historical provides access to stored daily price history.
package historical

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aristath/momentum/internal/database"
	"github.com/aristath/momentum/internal/domain"
	"github.com/rs/zerolog"
)

// ErrInvalidBar is returned when a bar fails validation on write
var ErrInvalidBar = errors.New("invalid price bar")

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// HistoryDB provides access to historical price data
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// UpsertBars inserts or replaces daily bars for a symbol in a single transaction
func (h *HistoryDB) UpsertBars(ctx context.Context, symbol string, bars []domain.Bar) error {
	symbol = domain.NormalizeTicker(symbol)
	if symbol == "" {
		return fmt.Errorf("%w: symbol is blank", ErrInvalidBar)
	}
	for _, bar := range bars {
		if err := validateBar(bar); err != nil {
			return err
		}
	}
	if len(bars) == 0 {
		return nil
	}

	now := time.Now().Unix()
	err := database.WithTransaction(h.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO daily_prices (symbol, date, open, high, low, close, volume, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare price upsert: %w", err)
		}
		defer stmt.Close()

		for _, bar := range bars {
			if _, err := stmt.ExecContext(ctx, symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, now); err != nil {
				return fmt.Errorf("failed to upsert %s %s: %w", symbol, bar.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Stored daily prices")
	return nil
}

// GetSeries fetches the most recent limit bars for a symbol, ordered oldest first
func (h *HistoryDB) GetSeries(ctx context.Context, symbol string, limit int) (domain.Series, error) {
	if limit <= 0 {
		return domain.Series{}, nil
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume
		FROM daily_prices
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?
	`, domain.NormalizeTicker(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	series := make(domain.Series, 0, limit)
	for rows.Next() {
		var bar domain.Bar
		if err := rows.Scan(&bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		series = append(series, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	// Query is newest first; bundles are oldest first
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}

	return series, nil
}

// LoadBundle implements domain.MarketDataSource.
// Symbols without stored bars are left out so the strategy reports them as missing.
func (h *HistoryDB) LoadBundle(ctx context.Context, tickers []string, lookback int) (domain.MarketData, error) {
	bundle := make(domain.MarketData, len(tickers))
	for _, ticker := range tickers {
		series, err := h.GetSeries(ctx, ticker, lookback)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", ticker, err)
		}
		if len(series) == 0 {
			h.log.Debug().Str("symbol", ticker).Msg("No stored prices")
			continue
		}
		bundle[ticker] = series
	}
	return bundle, nil
}

// Symbols returns every symbol with stored prices and its bar count
func (h *HistoryDB) Symbols(ctx context.Context) (map[string]int, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT symbol, COUNT(*) FROM daily_prices GROUP BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var symbol string
		var count int
		if err := rows.Scan(&symbol, &count); err != nil {
			return nil, fmt.Errorf("failed to scan symbol count: %w", err)
		}
		counts[symbol] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return counts, nil
}

func validateBar(bar domain.Bar) error {
	if !dateFormat.MatchString(bar.Date) {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidBar, bar.Date)
	}
	if _, err := time.Parse("2006-01-02", bar.Date); err != nil {
		return fmt.Errorf("%w: date %q: %v", ErrInvalidBar, bar.Date, err)
	}
	if bar.Close <= 0 {
		return fmt.Errorf("%w: %s close must be positive", ErrInvalidBar, bar.Date)
	}
	if bar.High < bar.Low {
		return fmt.Errorf("%w: %s high below low", ErrInvalidBar, bar.Date)
	}
	if bar.Volume < 0 {
		return fmt.Errorf("%w: %s negative volume", ErrInvalidBar, bar.Date)
	}
	return nil
}

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aristath/momentum/internal/domain"
)

var errBundleRequired = errors.New("--bundle is required")

func newRunCmd(opts *rootOptions) *cobra.Command {
	var bundlePath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the strategy against a JSON OHLCV bundle",
		Long: `Reads a JSON object mapping tickers to bar arrays and prints the target weights.

Bundle format:
  {"NVDA": [{"date": "2025-01-02", "open": 1, "high": 1, "low": 1, "close": 1, "volume": 0}]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bundlePath == "" {
				return errBundleRequired
			}

			strategy, err := opts.strategy()
			if err != nil {
				return err
			}

			data, err := readBundle(bundlePath)
			if err != nil {
				return err
			}

			log := opts.logger(cmd)
			log.Info().Int("tickers", len(data)).Str("bundle", bundlePath).Msg("Evaluating bundle")

			return printResult(cmd.OutOrStdout(), strategy.Run(data))
		},
	}

	cmd.Flags().StringVar(&bundlePath, "bundle", "", "path to the JSON bundle")

	return cmd
}

func readBundle(path string) (domain.MarketData, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var raw map[string]domain.Series
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}

	data := make(domain.MarketData, len(raw))
	for ticker, series := range raw {
		key := domain.NormalizeTicker(ticker)
		if key == "" {
			return nil, fmt.Errorf("bundle contains a blank ticker")
		}
		if _, dup := data[key]; dup {
			return nil, fmt.Errorf("bundle contains duplicate ticker %s", key)
		}
		series.SortByDate()
		data[key] = series
	}
	return data, nil
}

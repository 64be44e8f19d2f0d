package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aristath/momentum/internal/config"
	"github.com/aristath/momentum/internal/database"
	"github.com/aristath/momentum/internal/domain"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/aristath/momentum/internal/modules/historical"
)

var errDBRequired = errors.New("--db is required")

func openHistory(path string) (*database.DB, error) {
	if path == "" {
		return nil, errDBRequired
	}
	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileStandard,
		Name:    database.NameHistory,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}
	return db, nil
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		dbPath   string
		lookback int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Evaluate the strategy against bars stored in a history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := opts.strategy()
			if err != nil {
				return err
			}

			db, err := openHistory(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			log := opts.logger(cmd)
			service := allocation.NewService(allocation.ServiceDeps{
				Strategy: strategy,
				Source:   historical.NewHistoryDB(db.Conn(), log),
				Lookback: lookback,
			}, log)

			run, err := service.EvaluateFromHistory(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), run.Result)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to history.db")
	cmd.Flags().IntVar(&lookback, "lookback", config.DefaultHistoryLookback, "bars loaded per ticker")

	return cmd
}

type importOutput struct {
	Symbol   string `json:"symbol"`
	Imported int    `json:"imported"`
	Stored   int    `json:"stored"`
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		dbPath   string
		symbol   string
		filePath string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a JSON array of daily bars into a history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol = domain.NormalizeTicker(symbol)
			if symbol == "" {
				return errors.New("--symbol is required")
			}

			content, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read bars: %w", err)
			}
			var bars []domain.Bar
			if err := json.Unmarshal(content, &bars); err != nil {
				return fmt.Errorf("failed to parse bars: %w", err)
			}

			db, err := openHistory(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			store := historical.NewHistoryDB(db.Conn(), opts.logger(cmd))
			if err := store.UpsertBars(cmd.Context(), symbol, bars); err != nil {
				return err
			}

			counts, err := store.Symbols(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), importOutput{
				Symbol:   symbol,
				Imported: len(bars),
				Stored:   counts[symbol],
			})
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to history.db")
	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker symbol")
	cmd.Flags().StringVar(&filePath, "file", "", "path to a JSON array of bars")

	return cmd
}

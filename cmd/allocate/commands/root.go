// Package commands implements the allocate CLI.
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/momentum/internal/di"
	"github.com/aristath/momentum/internal/modules/allocation"
	"github.com/aristath/momentum/pkg/logger"
)

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	strategyFile string
	logLevel     string
}

// NewRootCmd builds the allocate command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "allocate",
		Short: "Momentum allocation CLI",
		Long: `Evaluates the RSI/MACD momentum strategy outside the service.

Examples:
  allocate assets
  allocate run --bundle bundle.json
  allocate import --db data/history.db --symbol NVDA --file nvda.json
  allocate history --db data/history.db --lookback 120`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.strategyFile, "strategy", "", "strategy YAML file (default: built-in strategy)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(newAssetsCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newHistoryCmd(opts))

	return root
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  o.logLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})
}

func (o *rootOptions) strategy() (*allocation.Strategy, error) {
	def, err := di.LoadStrategy(o.strategyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load strategy: %w", err)
	}
	cfg, err := def.Build()
	if err != nil {
		return nil, err
	}
	return allocation.NewStrategy(cfg, nil), nil
}

// evaluationOutput is the document printed by run and history
type evaluationOutput struct {
	Weights map[string]float64 `json:"weights"`
	Result  *allocation.Result `json:"result"`
}

func printResult(w io.Writer, result *allocation.Result) error {
	return printJSON(w, evaluationOutput{
		Weights: result.Weights(),
		Result:  result,
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

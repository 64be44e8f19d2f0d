package commands

import (
	"github.com/spf13/cobra"
)

type assetsOutput struct {
	Strategy string             `json:"strategy"`
	Interval string             `json:"interval"`
	Assets   []string           `json:"assets"`
	Scores   map[string]float64 `json:"scores"`
	MinBars  int                `json:"min_bars"`
}

func newAssetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "Print the strategy universe and its scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := opts.strategy()
			if err != nil {
				return err
			}
			cfg := strategy.Config()
			return printJSON(cmd.OutOrStdout(), assetsOutput{
				Strategy: cfg.Name(),
				Interval: cfg.Interval(),
				Assets:   cfg.Assets(),
				Scores:   cfg.Scores(),
				MinBars:  cfg.Indicators().MinBars(),
			})
		},
	}
}

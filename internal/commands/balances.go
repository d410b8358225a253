package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/silverbooks-dev/silverbooks/internal/runlog"
	"github.com/silverbooks-dev/silverbooks/internal/silver"
	"github.com/silverbooks-dev/silverbooks/internal/store"
)

func newBalancesCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Manage account balances",
	}

	cmd.AddCommand(newBalancesRecomputeCommand(configPath))

	return cmd
}

func newBalancesRecomputeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild the balance grid from the stored journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			dsn, err := cfg.DSN()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pg, err := store.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer pg.Close()

			table, err := loadTable(cfg)
			if err != nil {
				return err
			}
			loader := silver.NewLoader(pg, table, loaderOptions(cfg), log)
			result, err := loader.RecomputeBalances(ctx)
			if err != nil {
				return err
			}

			logErr := runlog.Append(".", []runlog.Entry{{
				Timestamp: time.Now().UTC(),
				BatchID:   result.BatchID,
				Command:   "balances recompute",
				Status:    result.Status,
				Details:   fmt.Sprintf("%d balances", result.Balances),
			}})
			if logErr != nil {
				log.Warn().Err(logErr).Msg("could not append run log")
			}

			fmt.Printf("Batch %s: recomputed %d balances\n", result.BatchID, result.Balances)
			return nil
		},
	}
}

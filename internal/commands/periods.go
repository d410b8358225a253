package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/silverbooks-dev/silverbooks/internal/runlog"
	"github.com/silverbooks-dev/silverbooks/internal/silver"
	"github.com/silverbooks-dev/silverbooks/internal/store"
)

func newPeriodsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Manage fiscal periods",
	}

	cmd.AddCommand(newPeriodsListCommand(configPath))
	cmd.AddCommand(newPeriodsCloseCommand(configPath))

	return cmd
}

func newPeriodsListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List fiscal periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configPath)
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

			periods, err := pg.Periods(ctx)
			if err != nil {
				return err
			}
			for _, p := range periods {
				state := "open"
				if p.IsClosed {
					state = "closed"
				}
				fmt.Printf("%s  Q%d  %s\n", p.PeriodName, p.PeriodQuarter, state)
			}
			return nil
		},
	}
}

func newPeriodsCloseCommand(configPath *string) *cobra.Command {
	var year int
	var month int

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a fiscal period",
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
			if err := loader.CloseFiscalPeriod(ctx, year, month); err != nil {
				return err
			}

			logErr := runlog.Append(".", []runlog.Entry{{
				Timestamp: time.Now().UTC(),
				Command:   "periods close",
				Status:    "completed",
				Details:   fmt.Sprintf("%04d-%02d", year, month),
			}})
			if logErr != nil {
				log.Warn().Err(logErr).Msg("could not append run log")
			}

			fmt.Printf("Closed fiscal period %04d-%02d\n", year, month)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "period year (required)")
	cmd.Flags().IntVar(&month, "month", 0, "period month (required)")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")

	return cmd
}

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/silverbooks-dev/silverbooks/internal/bronze"
	"github.com/silverbooks-dev/silverbooks/internal/model"
	"github.com/silverbooks-dev/silverbooks/internal/runlog"
	"github.com/silverbooks-dev/silverbooks/internal/silver"
	"github.com/silverbooks-dev/silverbooks/internal/store"
)

func newLoadCommand(configPath *string) *cobra.Command {
	var accountsPath string
	var ledgerPath string
	var fullRefresh bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load bronze extracts into the silver layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			accounts, err := readAccountsFile(accountsPath)
			if err != nil {
				return err
			}
			ledger, err := readLedgerFile(ledgerPath)
			if err != nil {
				return err
			}
			if accounts == nil && ledger == nil {
				return fmt.Errorf("nothing to load: pass --accounts and/or --ledger")
			}

			table, err := loadTable(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var st silver.Store
			if dryRun {
				st = silver.NewMemoryStore()
			} else {
				dsn, err := cfg.DSN()
				if err != nil {
					return err
				}
				pg, err := store.Open(ctx, dsn)
				if err != nil {
					return err
				}
				defer pg.Close()
				st = pg
			}

			loader := silver.NewLoader(st, table, loaderOptions(cfg), log)
			result, err := loader.Run(ctx, silver.Input{
				Accounts:    accounts,
				Ledger:      ledger,
				FullRefresh: fullRefresh,
			})
			if err != nil {
				return err
			}

			if !dryRun {
				logErr := runlog.Append(".", []runlog.Entry{{
					Timestamp: time.Now().UTC(),
					BatchID:   result.BatchID,
					Command:   "load",
					Status:    result.Status,
					Details: fmt.Sprintf("%d accounts, %d entries, %d lines, %d balances",
						result.Accounts, result.Entries, result.Lines, result.Balances),
				}})
				if logErr != nil {
					log.Warn().Err(logErr).Msg("could not append run log")
				}
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountsPath, "accounts", "", "accounts.csv bronze extract")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "dailyledger.csv bronze extract")
	cmd.Flags().BoolVar(&fullRefresh, "full-refresh", false, "truncate silver tables before loading")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without writing to the database")

	return cmd
}

func readAccountsFile(path string) ([]model.Account, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening accounts extract: %w", err)
	}
	defer f.Close()

	accounts, err := bronze.ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return accounts, nil
}

func readLedgerFile(path string) ([]model.RawLedgerLine, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger extract: %w", err)
	}
	defer f.Close()

	lines, err := bronze.ReadLedger(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

func printResult(result *silver.BatchResult) {
	fmt.Printf("Batch %s: %s\n", result.BatchID, result.Status)
	fmt.Printf("  accounts: %d  periods: %d  entries: %d  lines: %d  balances: %d\n",
		result.Accounts, result.Periods, result.Entries, result.Lines, result.Balances)
	if result.HeldLines > 0 {
		fmt.Printf("  held lines: %d\n", result.HeldLines)
	}
	for _, a := range result.Anomalies {
		fmt.Printf("  anomaly: %s\n", a)
	}
}

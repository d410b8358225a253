package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/silverbooks-dev/silverbooks/internal/buildinfo"
	"github.com/silverbooks-dev/silverbooks/internal/config"
	"github.com/silverbooks-dev/silverbooks/internal/logger"
	"github.com/silverbooks-dev/silverbooks/internal/pgc"
	"github.com/silverbooks-dev/silverbooks/internal/silver"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "silverbooks",
		Short:   "Bronze-to-silver accounting data pipeline",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "silverbooks.yaml", "path to config file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newLoadCommand(&configPath))
	rootCmd.AddCommand(newPeriodsCommand(&configPath))
	rootCmd.AddCommand(newBalancesCommand(&configPath))
	rootCmd.AddCommand(newSchemaCommand(&configPath))

	return rootCmd
}

func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.Logging.Level), nil
}

func loadTable(cfg *config.Config) (*pgc.Table, error) {
	if cfg.PGC.TablePath == "" {
		return pgc.DefaultTable(), nil
	}
	table, err := pgc.LoadTable(cfg.PGC.TablePath)
	if err != nil {
		return nil, fmt.Errorf("loading PGC table: %w", err)
	}
	return table, nil
}

func loaderOptions(cfg *config.Config) silver.Options {
	return silver.Options{
		Tolerance: decimal.NewFromFloat(cfg.Pipeline.BalanceTolerance),
		TagSlots:  cfg.Pipeline.TagSlots,
		Workers:   cfg.Pipeline.Workers,
	}
}

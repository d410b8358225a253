package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silverbooks-dev/silverbooks/internal/store"
)

func newSchemaCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the silver database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the silver tables and views",
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

			if err := pg.InitSchema(ctx); err != nil {
				return err
			}
			fmt.Println("Silver schema applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the silver DDL",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(store.Schema)
		},
	})

	return cmd
}

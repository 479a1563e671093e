package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	sqlassets "github.com/inkpress/inkpress/database"
	"github.com/inkpress/inkpress/platform/go/persistence"
)

// Command groups bootstrap helpers (schema init, future seed steps).
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap platform resources",
		Long:  "Bootstrap platform resources such as the blogs schema. Statements are idempotent, so re-running is safe.",
	}

	cmd.AddCommand(schemaCommand())
	return cmd
}

func schemaCommand() *cobra.Command {
	var databaseURL string

	c := &cobra.Command{
		Use:   "schema",
		Short: "Apply the blogs schema to the target database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			for _, statement := range strings.Split(sqlassets.BlogsSQL, ";") {
				statement = strings.TrimSpace(statement)
				if statement == "" {
					continue
				}
				if _, err := pool.Exec(ctx, statement); err != nil {
					return fmt.Errorf("apply schema statement: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "blogs schema applied")
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string")
	_ = c.MarkFlagRequired("database-url")

	return c
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowq/internal/config"
	"flowq/internal/queue"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check queue database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()

				db, err := store.CheckDatabase(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Database:        %s\n", db.DBPath)
				fmt.Fprintf(out, "Exists:          %s\n", yesNo(db.DatabaseExists))
				fmt.Fprintf(out, "Readable:        %s\n", yesNo(db.DatabaseReadable))
				fmt.Fprintf(out, "Table present:   %s\n", yesNo(db.TableExists))
				fmt.Fprintf(out, "Integrity:       %s\n", yesNo(db.IntegrityCheck))
				if len(db.MissingColumns) > 0 {
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(db.MissingColumns, ", "))
				}

				summary, err := store.Health(cmd.Context(), cfg.Queue.MaxRetries)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Records:         %d total, %d pending, %d processing, %d completed, %d failed (%d terminal)\n",
					summary.Total, summary.Pending, summary.Processing,
					summary.Completed, summary.Failed, summary.FailedTerminal)
				return nil
			})
		},
	}
}

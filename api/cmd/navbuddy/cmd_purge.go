package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"navbuddy/api/internal/store"
)

func purgeCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete hazard audit rows older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, "navbuddy-cli")
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			db, err := store.Open(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			a.db = db

			n, err := store.NewHazardRepo(db).PurgeOlderThan(ctx, olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d rows older than %s\n", n, olderThan)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of rows to delete")
	return cmd
}

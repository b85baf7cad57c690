package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"navbuddy/api/internal/store"
)

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <detection-id>",
		Short: "Print one audited hazard detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid detection id %q: %w", args[0], err)
			}
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

			ev, err := store.NewHazardRepo(db).Find(ctx, id.String())
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no audited detection %s", id)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ev)
		},
	}
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"navbuddy/api/internal/handle"
	"navbuddy/api/internal/httpserver"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, "navbuddy")
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if a.cfg.APIKey == "" {
				a.log.Info.Printf("warning: API_KEY not set, any X-API-Key is accepted")
			}

			rec, err := a.recorder(ctx)
			if err != nil {
				return err
			}
			det, err := a.detector(rec)
			if err != nil {
				return err
			}
			pl, err := a.places()
			if err != nil {
				return err
			}
			dir, err := a.directions()
			if err != nil {
				return err
			}

			h := handle.New(det, a.reader(), pl, dir, a.log)
			gate := &handle.Gate{APIKey: a.cfg.APIKey, Log: a.log}
			return httpserver.Run(ctx, ":"+a.cfg.Port, httpserver.Routes(h, gate), a.log)
		},
	}
}

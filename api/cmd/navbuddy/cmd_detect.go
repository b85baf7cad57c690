package main

import (
	"strings"

	"github.com/spf13/cobra"

	"navbuddy/api/internal/logging"
)

func detectCmd() *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "detect <image-file|->",
		Short: "Detect hazards in one image and print the spoken response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithRequestID(cmd.Context(), "cli")
			a, err := newApp(ctx, "navbuddy-cli")
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.Require(a.cfg.VisionKey()); err != nil {
				return err
			}
			if variant != "" {
				a.cfg.HazardVariant = variant
			}

			img, err := imagePayload(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			rec, err := a.recorder(ctx)
			if err != nil {
				return err
			}
			det, err := a.detector(rec)
			if err != nil {
				return err
			}
			out, err := det.Detect(ctx, img)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "prompt variant: structured or text (default from config)")
	return cmd
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <image-file|-> [command...]",
		Short: "Answer a spoken command about an image (read text, find items, describe scene)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithRequestID(cmd.Context(), "cli")
			a, err := newApp(ctx, "navbuddy-cli")
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.Require(a.cfg.VisionKey()); err != nil {
				return err
			}

			img, err := imagePayload(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			out, err := a.reader().Read(ctx, img, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"navbuddy/api/internal/config"
	"navbuddy/api/internal/directions"
	"navbuddy/api/internal/logging"
	"navbuddy/api/internal/places"
)

func searchCmd() *cobra.Command {
	var (
		q      places.Query
		fields string
	)
	cmd := &cobra.Command{
		Use:   "search <text query...>",
		Short: "Search nearby places and annotate the closest with travel distance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithRequestID(cmd.Context(), "cli")
			a, err := newApp(ctx, "navbuddy-cli")
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.Require(config.KeyMaps); err != nil {
				return err
			}
			svc, err := a.places()
			if err != nil {
				return err
			}

			q.TextQuery = strings.Join(args, " ")
			if fields != "" {
				q.Fields = strings.Split(fields, ",")
			}
			found, err := svc.Search(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"places": found})
		},
	}
	f := cmd.Flags()
	f.Float64Var(&q.Origin.Latitude, "lat", 0, "origin latitude")
	f.Float64Var(&q.Origin.Longitude, "lng", 0, "origin longitude")
	f.Float64Var(&q.Radius, "radius", places.DefaultRadius, "search bias radius in meters")
	f.StringVar(&q.RankPreference, "rank", places.DefaultRankPreference, "DISTANCE or RELEVANCE")
	f.StringVar(&q.Mode, "mode", places.DefaultMode, "travel mode for distances")
	f.StringVar(&fields, "fields", "", "comma separated field mask (default displayName,formattedAddress,location)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func directionsCmd() *cobra.Command {
	var in directions.Request
	cmd := &cobra.Command{
		Use:   "directions",
		Short: "Print turn-by-turn directions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithRequestID(cmd.Context(), "cli")
			a, err := newApp(ctx, "navbuddy-cli")
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.Require(config.KeyMaps); err != nil {
				return err
			}
			svc, err := a.directions()
			if err != nil {
				return err
			}
			route, err := svc.Get(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), route)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Origin, "from", "", "origin address or \"lat,lng\"")
	f.StringVar(&in.Destination, "to", "", "destination address or \"lat,lng\"")
	f.StringVar(&in.Mode, "mode", directions.DefaultMode, "walking, driving, bicycling or transit")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

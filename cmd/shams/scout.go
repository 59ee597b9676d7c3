package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/service"
)

func waiverCmd() *cobra.Command {
	var (
		mode, agg, sortBy, asOf string
		count                   int
		asJSON                  bool
	)
	cmd := &cobra.Command{
		Use:   "waiver",
		Short: "Rank the league's free agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := optionalDate(asOf)
			if err != nil {
				return err
			}
			return withLoadedApp(func(ctx context.Context, a *app) error {
				r, err := a.service.Waiver(ctx, service.WaiverOptions{Mode: mode, Agg: agg, Count: count, Sort: sortBy, AsOf: date})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), r)
				}
				fmt.Fprint(cmd.OutOrStdout(), service.FormatWaiver(r))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Stats window: season, last, lastN, lastNd")
	cmd.Flags().StringVar(&agg, "agg", "avg", "Aggregation: avg or sum")
	cmd.Flags().IntVar(&count, "count", 25, "Number of players to list")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort column: rank, minutes, trend, games or a category")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Rank as of this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the ranking as JSON")
	return cmd
}

func playerCmd() *cobra.Command {
	var (
		mode, agg, asOf string
		asJSON          bool
	)
	cmd := &cobra.Command{
		Use:   "player <name>",
		Short: "Show a player's recent stats",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := optionalDate(asOf)
			if err != nil {
				return err
			}
			return withLoadedApp(func(ctx context.Context, a *app) error {
				r, err := a.service.Player(ctx, service.PlayerOptions{Name: strings.Join(args, " "), Mode: mode, Agg: agg, AsOf: date})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), r)
				}
				fmt.Fprint(cmd.OutOrStdout(), service.FormatPlayer(r))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Stats window: season, last, lastN, lastNd")
	cmd.Flags().StringVar(&agg, "agg", "avg", "Aggregation: avg or sum")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Summarize as of this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func boxScoreCmd() *cobra.Command {
	var (
		date   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "boxscore",
		Short: "List the cached box scores for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := optionalDate(date)
			if err != nil {
				return err
			}
			return withLoadedApp(func(ctx context.Context, a *app) error {
				if d.IsZero() {
					d = models.Today(a.location).AddDays(-1)
				}
				lines, err := a.service.BoxScores(ctx, d)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), lines)
				}
				fmt.Fprint(cmd.OutOrStdout(), service.FormatBoxScores(d, lines))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD, default yesterday)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the box scores as JSON")
	return cmd
}

// withLoadedApp runs fn against the live stack with the stats cache loaded.
func withLoadedApp(fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.refresher.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func optionalDate(s string) (models.Date, error) {
	if s == "" {
		return "", nil
	}
	return models.ParseDate(s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Command shams projects fantasy basketball category matchups.
//
// Usage:
//
//	shams serve
//	shams project --team "joker club" --mode last7d --optimize
//	shams project --fixture week.yaml --json
//	shams refresh --full
//	shams waiver --mode last7d --agg sum --count 10
//	shams player nikola jokic --mode last5
//	shams boxscore --date 2025-01-07
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yonasstephen/shams-sub000/internal/api/bdl"
	"github.com/yonasstephen/shams-sub000/internal/api/espn"
	"github.com/yonasstephen/shams-sub000/internal/api/fantasy"
	"github.com/yonasstephen/shams-sub000/internal/config"
	"github.com/yonasstephen/shams-sub000/internal/league"
	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
	"github.com/yonasstephen/shams-sub000/internal/refresh"
	"github.com/yonasstephen/shams-sub000/internal/repository"
	"github.com/yonasstephen/shams-sub000/internal/repository/file"
	"github.com/yonasstephen/shams-sub000/internal/repository/memory"
	"github.com/yonasstephen/shams-sub000/internal/repository/postgres"
	"github.com/yonasstephen/shams-sub000/internal/service"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	slog.SetDefault(logger)
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}

	root := &cobra.Command{
		Use:           "shams",
		Short:         "Fantasy basketball matchup projections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(projectCmd())
	root.AddCommand(refreshCmd())
	root.AddCommand(waiverCmd())
	root.AddCommand(playerCmd())
	root.AddCommand(boxScoreCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func projectCmd() *cobra.Command {
	var (
		team, mode, fixture, asOf string
		optimize, asJSON          bool
		period                    int
	)
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a matchup for the current week",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var (
				p   *projection.MatchupProjection
				err error
			)
			if fixture != "" {
				p, err = projectFixture(fixture, mode)
			} else {
				opts := service.MatchupOptions{Team: team, Mode: mode, Period: period}
				if cmd.Flags().Changed("optimize") {
					opts.Optimize = &optimize
				}
				if asOf != "" {
					if opts.AsOf, err = models.ParseDate(asOf); err != nil {
						return err
					}
				}
				p, err = projectLive(ctx, opts)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprint(cmd.OutOrStdout(), service.FormatMatchup(p))
			return nil
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "Team name or abbreviation (default TEAM_ID)")
	cmd.Flags().StringVar(&mode, "mode", "", "Projection window: season, last, lastN, lastNd")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "Re-optimize daily lineups")
	cmd.Flags().IntVar(&period, "period", 0, "Matchup period (default: the current one)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Project as of this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&fixture, "fixture", "", "Project an offline YAML fixture instead of the live league")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the projection as JSON")
	return cmd
}

func projectFixture(path, mode string) (*projection.MatchupProjection, error) {
	f, err := league.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	req, err := f.Request(mode)
	if err != nil {
		return nil, err
	}
	repo := memory.NewRepository()
	repo.SetSnapshot(f.Snapshot())
	return projection.NewEngine(repo, logger).ProjectMatchup(req)
}

func projectLive(ctx context.Context, opts service.MatchupOptions) (*projection.MatchupProjection, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, err
	}
	defer a.close()
	if err := a.refresher.Load(ctx); err != nil {
		return nil, err
	}
	return a.service.ProjectMatchup(ctx, opts)
}

func refreshCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Pull box scores and schedules into the stats cache",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			summary, err := a.refresher.Refresh(ctx, full)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refreshed season %d: %d players, %d games in %s\n",
				summary.Season, summary.Players, summary.Games, summary.Duration.Round(time.Second))
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Rebuild the whole season instead of the last few days")
	return cmd
}

// app wires the live league and stats stack shared by every command.
type app struct {
	cfg       *config.Config
	repo      *memory.Repository
	refresher *refresh.Refresher
	service   *service.FantasyService
	location  *time.Location
	closeFn   func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, err
	}
	seasonStart, err := models.ParseDate(cfg.ESPNAPI.SeasonStart)
	if err != nil {
		return nil, err
	}

	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repo := memory.NewRepository()
	bdlClient := bdl.NewClient(cfg.BallDontLie.BaseURL, cfg.BallDontLie.APIKey, cfg.BallDontLie.RequestsPerMinute, logger)
	refresher := refresh.NewRefresher(bdlClient, store, repo, cfg.Season(), logger)

	espnAPI := espn.NewAPI(espn.NewClient(cfg.ESPNAPI), seasonStart)
	fantasyAPI := fantasy.NewAPI(espnAPI)
	engine := projection.NewEngine(repo, logger)
	fantasyService := service.NewFantasyService(fantasyAPI, repo, engine, service.Defaults{
		TeamID:   cfg.ESPNAPI.TeamID,
		Mode:     cfg.Projection.Mode,
		Optimize: cfg.Projection.Optimize,
		Location: location,
	}, logger)

	return &app{
		cfg:       cfg,
		repo:      repo,
		refresher: refresher,
		service:   fantasyService,
		location:  location,
		closeFn:   closeFn,
	}, nil
}

func (a *app) close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.SnapshotStore, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		store, err := postgres.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return file.NewStore(cfg.Store.CacheDir), nil, nil
	}
}

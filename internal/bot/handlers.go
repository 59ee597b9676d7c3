package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yonasstephen/shams-sub000/internal/insights"
	"github.com/yonasstephen/shams-sub000/internal/projection"
	"github.com/yonasstephen/shams-sub000/internal/refresh"
	"github.com/yonasstephen/shams-sub000/internal/service"
)

const helpText = "Available commands:\n" +
	"/matchup [team] [mode] [optimize] - Project a matchup for this week\n" +
	"/league [mode] [optimize] - Project every matchup this week\n" +
	"/waiver [mode] [avg|sum] [N] [sort] - Rank the best free agents\n" +
	"/player <name> [mode] [avg|sum] - Show a player's recent stats\n" +
	"/refresh - Pull the latest box scores\n\n" +
	"Modes: season, last, lastN (games), lastNd (days)"

type Reporter interface {
	GetMatchupReport(ctx context.Context, opts service.MatchupOptions) (string, error)
	GetLeagueReport(ctx context.Context, opts service.MatchupOptions) (string, error)
	GetWaiverReport(ctx context.Context, opts service.WaiverOptions) (string, error)
	GetPlayerReport(ctx context.Context, opts service.PlayerOptions) (string, error)
}

type Refresher interface {
	Refresh(ctx context.Context, full bool) (refresh.Summary, error)
}

type Handler struct {
	reporter  Reporter
	refresher Refresher
}

func NewHandler(reporter Reporter, refresher Refresher) *Handler {
	return &Handler{reporter: reporter, refresher: refresher}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := update.Message.CommandArguments()
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to Shams! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "matchup":
		h.handleMatchup(ctx, &msg, args)
	case "league":
		h.handleLeague(ctx, &msg, args)
	case "waiver":
		h.handleWaiver(ctx, &msg, args)
	case "player":
		h.handlePlayer(ctx, &msg, args)
	case "refresh":
		h.handleRefresh(ctx, &msg, args)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleMatchup(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	report, err := h.reporter.GetMatchupReport(ctx, ParseMatchupArgs(args))
	if err != nil {
		msg.Text = errorText("Error projecting matchup", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleLeague(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	opts := ParseMatchupArgs(args)
	opts.Team = ""
	report, err := h.reporter.GetLeagueReport(ctx, opts)
	if err != nil {
		msg.Text = errorText("Error projecting league", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleWaiver(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	report, err := h.reporter.GetWaiverReport(ctx, ParseWaiverArgs(args))
	if err != nil {
		msg.Text = errorText("Error ranking free agents", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handlePlayer(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	opts := ParsePlayerArgs(args)
	if opts.Name == "" {
		msg.Text = "Usage: /player <name> [mode] [avg|sum]"
		return
	}
	report, err := h.reporter.GetPlayerReport(ctx, opts)
	if err != nil {
		msg.Text = errorText("Error looking up player", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleRefresh(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	full := strings.EqualFold(strings.TrimSpace(args), "full")
	summary, err := h.refresher.Refresh(ctx, full)
	if err != nil {
		msg.Text = errorText("Error refreshing stats", err)
		return
	}
	msg.Text = fmt.Sprintf("✅ Stats refreshed: %d players, %d games (%s)", summary.Players, summary.Games, summary.Duration.Round(time.Millisecond))
}

// ParseMatchupArgs reads "[team words] [mode] [optimize]". The mode and the
// optimize flag are only recognized as trailing words.
func ParseMatchupArgs(args string) service.MatchupOptions {
	var opts service.MatchupOptions
	words := strings.Fields(args)
	if n := len(words); n > 0 {
		switch strings.ToLower(words[n-1]) {
		case "optimize", "optimized", "opt":
			optimize := true
			opts.Optimize = &optimize
			words = words[:n-1]
		case "actual", "noopt":
			optimize := false
			opts.Optimize = &optimize
			words = words[:n-1]
		}
	}
	if n := len(words); n > 0 {
		if _, err := projection.ParseWindow(words[n-1]); err == nil {
			opts.Mode = strings.ToLower(words[n-1])
			words = words[:n-1]
		}
	}
	opts.Team = strings.Join(words, " ")
	return opts
}

// ParseWaiverArgs reads mode, aggregation, count and sort column in any
// order. A word that is none of the first three is taken as the sort column.
func ParseWaiverArgs(args string) service.WaiverOptions {
	var opts service.WaiverOptions
	for _, w := range strings.Fields(args) {
		lower := strings.ToLower(w)
		if n, err := strconv.Atoi(w); err == nil {
			opts.Count = n
		} else if isAggregation(lower) {
			opts.Agg = lower
		} else if _, err := projection.ParseWindow(lower); err == nil {
			opts.Mode = lower
		} else {
			opts.Sort = w
		}
	}
	return opts
}

// ParsePlayerArgs reads "<name words> [mode] [avg|sum]", peeling the
// options off the end.
func ParsePlayerArgs(args string) service.PlayerOptions {
	var opts service.PlayerOptions
	words := strings.Fields(args)
	for len(words) > 1 {
		last := strings.ToLower(words[len(words)-1])
		if opts.Agg == "" && isAggregation(last) {
			opts.Agg = last
		} else if _, err := projection.ParseWindow(last); opts.Mode == "" && err == nil {
			opts.Mode = last
		} else {
			break
		}
		words = words[:len(words)-1]
	}
	opts.Name = strings.Join(words, " ")
	return opts
}

func isAggregation(word string) bool {
	if word == "" {
		return false
	}
	_, err := insights.ParseAggregation(word)
	return err == nil
}

func errorText(prefix string, err error) string {
	switch {
	case errors.Is(err, projection.ErrNoStatsData):
		return "No stats loaded yet. Run /refresh first."
	case errors.Is(err, refresh.ErrRefreshInProgress):
		return "A refresh is already running, try again shortly."
	case errors.Is(err, service.ErrTeamNotFound):
		return fmt.Sprintf("%s: %v. Check the team name.", prefix, err)
	case errors.Is(err, service.ErrPlayerNotFound):
		return fmt.Sprintf("%s: %v. Check the spelling.", prefix, err)
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}

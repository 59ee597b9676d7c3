package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"

	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/projection"
)

type Config struct {
	TelegramBot TelegramBot
	ESPNAPI     ESPNAPI
	BallDontLie BallDontLie
	Store       Store
	Server      Server
	Schedule    Schedule
	Projection  Projection
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

type ESPNAPI struct {
	Year        string `envconfig:"YEAR" required:"true"`
	LeagueID    string `envconfig:"LEAGUE_ID" required:"true"`
	SWID        string `envconfig:"SWID" required:"true"`
	ESPNS2      string `envconfig:"ESPN_S2" required:"true"`
	TeamID      int    `envconfig:"TEAM_ID"`
	SeasonStart string `envconfig:"SEASON_START" required:"true"`
}

type BallDontLie struct {
	APIKey            string `envconfig:"BALLDONTLIE_API_KEY"`
	BaseURL           string `envconfig:"BDL_BASE_URL" default:"https://api.balldontlie.io/v1"`
	RequestsPerMinute int    `envconfig:"BDL_REQUESTS_PER_MINUTE" default:"60"`
	Season            int    `envconfig:"BDL_SEASON"`
}

type Store struct {
	Driver      string `envconfig:"STORE_DRIVER" default:"file"`
	CacheDir    string `envconfig:"CACHE_DIR" default:".cache"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

type Server struct {
	Addr              string        `envconfig:"API_ADDR" default:":8080"`
	CORSAllowOrigins  []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

type Schedule struct {
	Timezone    string `envconfig:"TIMEZONE" default:"America/New_York"`
	RefreshCron string `envconfig:"REFRESH_CRON" default:"0 6 * * *"`
	ReportCron  string `envconfig:"REPORT_CRON" default:"30 7 * * *"`
}

type Projection struct {
	Mode     string `envconfig:"PROJECTION_MODE" default:"season"`
	Optimize bool   `envconfig:"PROJECTION_OPTIMIZE" default:"false"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if _, err := models.ParseDate(c.ESPNAPI.SeasonStart); err != nil {
		return fmt.Errorf("SEASON_START: %w", err)
	}
	if _, err := projection.ParseWindow(c.Projection.Mode); err != nil {
		return fmt.Errorf("PROJECTION_MODE: %w", err)
	}
	for name, expr := range map[string]string{"REFRESH_CRON": c.Schedule.RefreshCron, "REPORT_CRON": c.Schedule.ReportCron} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	switch c.Store.Driver {
	case "file":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER: unknown driver %q", c.Store.Driver)
	}
	return nil
}

// Season returns the stats-provider season, which starts in the fall of
// the year before the fantasy year.
func (c *Config) Season() int {
	if c.BallDontLie.Season != 0 {
		return c.BallDontLie.Season
	}
	var year int
	fmt.Sscanf(c.ESPNAPI.Year, "%d", &year)
	return year - 1
}

// Package config loads and validates harvester configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/JakeFAU/filmcast/internal/crawler"
	"github.com/JakeFAU/filmcast/internal/wiki"
	"github.com/JakeFAU/filmcast/internal/wikitext"
)

// EnvPrefix prefixes every environment override, e.g. FILMCAST_API_USER_AGENT.
const EnvPrefix = "FILMCAST"

// FirstFilmYear is the earliest year with a film category.
const FirstFilmYear = 1888

// Config captures all harvester configuration knobs loaded via Viper.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Harvest HarvestConfig `mapstructure:"harvest"`
	Cast    CastConfig    `mapstructure:"cast"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig configures the MediaWiki client.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	BackoffInitial time.Duration `mapstructure:"backoff_initial"`
	BackoffMax     time.Duration `mapstructure:"backoff_max"`
}

// HarvestConfig governs the year range and crawl fan-out.
type HarvestConfig struct {
	StartYear int `mapstructure:"start_year"`
	// EndYear is inclusive; zero means the current year.
	EndYear      int      `mapstructure:"end_year"`
	Concurrency  int      `mapstructure:"concurrency"`
	TitleFilters []string `mapstructure:"title_filters"`
	FailFast     bool     `mapstructure:"fail_fast"`
}

// CastConfig tunes the cast-line heuristic.
type CastConfig struct {
	Separators  []string `mapstructure:"separators"`
	SplitPolicy string   `mapstructure:"split_policy"`
}

// OutputConfig names the artifact locations: paths, gs://bucket/object or
// memory://object URIs.
type OutputConfig struct {
	Movies string `mapstructure:"movies"`
	Actors string `mapstructure:"actors"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"user-agent":   "api.user_agent",
	"start-year":   "harvest.start_year",
	"end-year":     "harvest.end_year",
	"concurrency":  "harvest.concurrency",
	"fail-fast":    "harvest.fail_fast",
	"split-policy": "cast.split_policy",
	"movies":       "output.movies",
	"actors":       "output.actors",
	"metrics-addr": "metrics.addr",
	"log-level":    "logging.level",
}

// Load builds a Config from defaults, an optional file, the environment and
// any changed flags, in increasing order of precedence.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", wiki.DefaultBaseURL)
	// Registered so the environment override is seen by Unmarshal.
	v.SetDefault("api.user_agent", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.max_retries", 2)
	v.SetDefault("api.backoff_initial", 250*time.Millisecond)
	v.SetDefault("api.backoff_max", 5*time.Second)
	v.SetDefault("harvest.start_year", FirstFilmYear)
	v.SetDefault("harvest.end_year", 0)
	v.SetDefault("harvest.concurrency", 1)
	v.SetDefault("harvest.title_filters", crawler.DefaultFilters)
	v.SetDefault("harvest.fail_fast", false)
	v.SetDefault("cast.separators", wikitext.DefaultSeparators)
	v.SetDefault("cast.split_policy", string(wikitext.SplitFirst))
	v.SetDefault("output.movies", "data/all_movies.json")
	v.SetDefault("output.actors", "data/all_actors.json")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
	v.SetDefault("metrics.addr", "")
}

// Validate enforces the settings every command depends on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Output.Movies) == "" {
		return fmt.Errorf("output.movies must be set")
	}
	if strings.TrimSpace(c.Output.Actors) == "" {
		return fmt.Errorf("output.actors must be set")
	}
	if c.Output.Movies == c.Output.Actors {
		return fmt.Errorf("output.movies and output.actors must differ")
	}
	return nil
}

// ValidateHarvest additionally checks the API, crawl and parser settings.
func (c Config) ValidateHarvest(now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.API.UserAgent) == "" {
		return errors.New("api.user_agent must be set (MediaWiki rejects anonymous clients)")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must be >= 0")
	}
	if c.API.BackoffInitial <= 0 {
		return fmt.Errorf("api.backoff_initial must be > 0")
	}
	if c.API.BackoffMax < c.API.BackoffInitial {
		return fmt.Errorf("api.backoff_max must be >= api.backoff_initial")
	}
	if c.Harvest.Concurrency <= 0 {
		return fmt.Errorf("harvest.concurrency must be > 0")
	}
	if _, _, err := c.Harvest.YearRange(now); err != nil {
		return err
	}
	if _, err := crawler.NewTitleFilters(c.Harvest.TitleFilters); err != nil {
		return fmt.Errorf("harvest.title_filters: %w", err)
	}
	if _, err := wikitext.NewCastParser(c.Cast.Separators, wikitext.SplitPolicy(c.Cast.SplitPolicy)); err != nil {
		return fmt.Errorf("cast: %w", err)
	}
	return nil
}

// YearRange resolves the inclusive year range against now.
func (h HarvestConfig) YearRange(now time.Time) (int, int, error) {
	end := h.EndYear
	if end == 0 {
		end = now.Year()
	}
	if h.StartYear < FirstFilmYear {
		return 0, 0, fmt.Errorf("harvest.start_year must be >= %d", FirstFilmYear)
	}
	if end < h.StartYear {
		return 0, 0, fmt.Errorf("harvest.end_year %d is before harvest.start_year %d", end, h.StartYear)
	}
	return h.StartYear, end, nil
}

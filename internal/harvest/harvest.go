// Package harvest drives a full run: it walks the configured years, lists each
// year's films, looks up their casts with bounded concurrency and assembles
// the year-indexed dataset.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/filmcast/internal/crawler"
	"github.com/JakeFAU/filmcast/internal/film"
	"github.com/JakeFAU/filmcast/internal/metrics"
)

// ErrPartial is returned alongside a usable dataset when some years or titles
// were skipped.
var ErrPartial = errors.New("harvest completed with skipped items")

// Skip kinds recorded in metrics.
const (
	SkipYear  = "year"
	SkipTitle = "title"
)

// Lister lists the films of a year.
type Lister interface {
	Crawl(ctx context.Context, year int) ([]crawler.Member, error)
}

// CastSource returns the actors credited on a film page.
type CastSource interface {
	ExtractCast(ctx context.Context, pageTitle string) ([]string, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Config bounds a run. Years are inclusive.
type Config struct {
	StartYear   int
	EndYear     int
	Concurrency int
	FailFast    bool
}

// Skip records an item dropped by skip-and-continue. Title is empty when the
// whole year was skipped.
type Skip struct {
	Year  int    `json:"year"`
	Title string `json:"title,omitempty"`
	Err   string `json:"error"`
}

// MarshalLogObject lets skips be logged with zap.Objects.
func (s Skip) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("year", s.Year)
	if s.Title != "" {
		enc.AddString("title", s.Title)
	}
	enc.AddString("error", s.Err)
	return nil
}

// Report summarizes a run.
type Report struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Years         int       `json:"years"`
	Films         int       `json:"films"`
	Credits       int       `json:"credits"`
	SkippedYears  []Skip    `json:"skipped_years,omitempty"`
	SkippedTitles []Skip    `json:"skipped_titles,omitempty"`
}

// Partial reports whether anything was skipped.
func (r Report) Partial() bool {
	return len(r.SkippedYears) > 0 || len(r.SkippedTitles) > 0
}

// Harvester runs harvests.
type Harvester struct {
	lister Lister
	cast   CastSource
	cfg    Config
	clock  Clock
	ids    IDGenerator
	logger *zap.Logger
}

// New builds a Harvester.
func New(lister Lister, cast CastSource, cfg Config, clock Clock, ids IDGenerator, logger *zap.Logger) (*Harvester, error) {
	if lister == nil || cast == nil {
		return nil, errors.New("lister and cast source are required")
	}
	if clock == nil || ids == nil {
		return nil, errors.New("clock and id generator are required")
	}
	if cfg.EndYear < cfg.StartYear {
		return nil, fmt.Errorf("end year %d is before start year %d", cfg.EndYear, cfg.StartYear)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{
		lister: lister,
		cast:   cast,
		cfg:    cfg,
		clock:  clock,
		ids:    ids,
		logger: logger,
	}, nil
}

// Run harvests every configured year in ascending order. Skipped years are
// absent from the dataset and skipped titles from their year. When anything
// was skipped the dataset is complete otherwise and ErrPartial is returned.
// Any other error aborts the run.
func (h *Harvester) Run(ctx context.Context) (film.MovieDataset, Report, error) {
	runID, err := h.ids.NewID()
	if err != nil {
		return nil, Report{}, fmt.Errorf("run id: %w", err)
	}
	logger := h.logger.With(zap.String("run_id", runID))
	report := Report{RunID: runID, StartedAt: h.clock.Now()}
	dataset := make(film.MovieDataset, h.cfg.EndYear-h.cfg.StartYear+1)

	logger.Info("harvest started",
		zap.Int("start_year", h.cfg.StartYear),
		zap.Int("end_year", h.cfg.EndYear),
		zap.Int("concurrency", h.cfg.Concurrency),
		zap.Bool("fail_fast", h.cfg.FailFast),
	)

	for year := h.cfg.StartYear; year <= h.cfg.EndYear; year++ {
		entries, skipped, err := h.harvestYear(ctx, logger, year)
		if err != nil {
			if ctx.Err() != nil || h.cfg.FailFast {
				report.FinishedAt = h.clock.Now()
				return nil, report, fmt.Errorf("harvest %d: %w", year, err)
			}
			logger.Warn("skipping year", zap.Int("year", year), zap.Error(err))
			metrics.ObserveSkip(SkipYear)
			metrics.ObserveYear("skipped")
			report.SkippedYears = append(report.SkippedYears, Skip{Year: year, Err: err.Error()})
			continue
		}
		dataset[year] = entries
		report.Years++
		report.Films += len(entries)
		for _, e := range entries {
			report.Credits += len(e.Actors)
		}
		report.SkippedTitles = append(report.SkippedTitles, skipped...)
		metrics.ObserveYear("done")
	}

	report.FinishedAt = h.clock.Now()
	logger.Info("harvest finished",
		zap.Int("years", report.Years),
		zap.Int("films", report.Films),
		zap.Int("credits", report.Credits),
		zap.Int("skipped_years", len(report.SkippedYears)),
		zap.Int("skipped_titles", len(report.SkippedTitles)),
		zap.Duration("dur", report.FinishedAt.Sub(report.StartedAt)),
	)
	if report.Partial() {
		return dataset, report, ErrPartial
	}
	return dataset, report, nil
}

type castResult struct {
	actors []string
	err    error
}

// harvestYear lists the year completely, then resolves casts concurrently.
// Results land in their listing slot so output order does not depend on
// scheduling.
func (h *Harvester) harvestYear(ctx context.Context, logger *zap.Logger, year int) (film.YearResult, []Skip, error) {
	members, err := h.lister.Crawl(ctx, year)
	if err != nil {
		return nil, nil, err
	}

	results := make([]castResult, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.Concurrency)
	for i, m := range members {
		g.Go(func() error {
			actors, err := h.cast.ExtractCast(gctx, m.PageTitle)
			if err != nil && (h.cfg.FailFast || gctx.Err() != nil) {
				return fmt.Errorf("cast of %q: %w", m.PageTitle, err)
			}
			results[i] = castResult{actors: actors, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	entries := make(film.YearResult, 0, len(members))
	var skipped []Skip
	for i, m := range members {
		if err := results[i].err; err != nil {
			logger.Warn("skipping title",
				zap.Int("year", year),
				zap.String("page", m.PageTitle),
				zap.Error(err),
			)
			metrics.ObserveSkip(SkipTitle)
			skipped = append(skipped, Skip{Year: year, Title: m.PageTitle, Err: err.Error()})
			continue
		}
		entry := film.NewFilmEntry(m.Title, results[i].actors)
		metrics.ObserveFilm(len(entry.Actors))
		entries = append(entries, entry)
	}
	logger.Info("year harvested",
		zap.Int("year", year),
		zap.Int("films", len(entries)),
		zap.Int("skipped_titles", len(skipped)),
	)
	return entries, skipped, nil
}

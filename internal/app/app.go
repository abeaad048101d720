// Package app builds the long-lived services of a run from configuration and
// owns their shutdown.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/filmcast/internal/cast"
	"github.com/JakeFAU/filmcast/internal/clock/system"
	"github.com/JakeFAU/filmcast/internal/config"
	"github.com/JakeFAU/filmcast/internal/crawler"
	collyfetcher "github.com/JakeFAU/filmcast/internal/fetcher/colly"
	"github.com/JakeFAU/filmcast/internal/film"
	"github.com/JakeFAU/filmcast/internal/harvest"
	"github.com/JakeFAU/filmcast/internal/hash/sha256"
	"github.com/JakeFAU/filmcast/internal/id/uuid"
	"github.com/JakeFAU/filmcast/internal/metrics"
	"github.com/JakeFAU/filmcast/internal/storage"
	"github.com/JakeFAU/filmcast/internal/wiki"
	"github.com/JakeFAU/filmcast/internal/wikitext"
)

const jsonContentType = "application/json; charset=utf-8"

// App holds the services shared by the commands.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *storage.Resolver
	metrics *metrics.Server
	clock   harvest.Clock
	fetcher wiki.Fetcher
	hasher  *sha256.Hasher
}

// Option customizes an App.
type Option func(*App)

// WithFetcher replaces the colly fetcher, e.g. with a test double.
func WithFetcher(f wiki.Fetcher) Option {
	return func(a *App) {
		a.fetcher = f
	}
}

// WithResolver replaces the storage resolver.
func WithResolver(r *storage.Resolver) Option {
	return func(a *App) {
		a.store = r
	}
}

// WithClock replaces the wall clock.
func WithClock(c harvest.Clock) Option {
	return func(a *App) {
		a.clock = c
	}
}

// New initializes the services every command needs and starts the metrics
// endpoint when configured.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		clock:  system.New(),
		hasher: sha256.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = storage.NewResolver()
	}
	metrics.Init()
	if cfg.Metrics.Addr != "" {
		srv, err := metrics.Serve(cfg.Metrics.Addr, logger.Named("metrics"))
		if err != nil {
			return nil, fmt.Errorf("start metrics server: %w", err)
		}
		a.metrics = srv
	}
	return a, nil
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Harvester assembles the crawl pipeline: fetcher, API client, category
// crawler, cast extractor and driver.
func (a *App) Harvester() (*harvest.Harvester, error) {
	cfg := a.cfg
	if err := cfg.ValidateHarvest(a.clock.Now()); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	startYear, endYear, err := cfg.Harvest.YearRange(a.clock.Now())
	if err != nil {
		return nil, err
	}

	fetcher := a.fetcher
	if fetcher == nil {
		fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.API.UserAgent,
			Timeout:   cfg.API.Timeout,
		})
	}
	client, err := wiki.NewClient(
		wiki.Config{BaseURL: cfg.API.BaseURL, UserAgent: cfg.API.UserAgent, Timeout: cfg.API.Timeout},
		fetcher,
		wiki.NewExponentialRetryPolicy(cfg.API.MaxRetries, cfg.API.BackoffInitial, cfg.API.BackoffMax),
		a.logger.Named("wiki"),
	)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	filters, err := crawler.NewTitleFilters(cfg.Harvest.TitleFilters)
	if err != nil {
		return nil, fmt.Errorf("init title filters: %w", err)
	}
	lister, err := crawler.New(client, crawler.WithFilters(filters), crawler.WithLogger(a.logger.Named("crawler")))
	if err != nil {
		return nil, fmt.Errorf("init crawler: %w", err)
	}

	parser, err := wikitext.NewCastParser(cfg.Cast.Separators, wikitext.SplitPolicy(cfg.Cast.SplitPolicy))
	if err != nil {
		return nil, fmt.Errorf("init cast parser: %w", err)
	}
	extractor, err := cast.NewExtractor(client, parser, a.logger.Named("cast"))
	if err != nil {
		return nil, fmt.Errorf("init cast extractor: %w", err)
	}

	h, err := harvest.New(lister, extractor, harvest.Config{
		StartYear:   startYear,
		EndYear:     endYear,
		Concurrency: cfg.Harvest.Concurrency,
		FailFast:    cfg.Harvest.FailFast,
	}, a.clock, uuid.New(), a.logger.Named("harvest"))
	if err != nil {
		return nil, fmt.Errorf("init harvester: %w", err)
	}
	return h, nil
}

// WriteDataset stores the dataset at output.movies.
func (a *App) WriteDataset(ctx context.Context, dataset film.MovieDataset) (string, error) {
	return a.writeJSON(ctx, a.cfg.Output.Movies, dataset)
}

// WriteIndex stores the actor index at output.actors.
func (a *App) WriteIndex(ctx context.Context, index film.ActorIndex) (string, error) {
	return a.writeJSON(ctx, a.cfg.Output.Actors, index)
}

// ReadDataset loads the dataset stored at output.movies.
func (a *App) ReadDataset(ctx context.Context) (film.MovieDataset, error) {
	data, err := a.store.Read(ctx, a.cfg.Output.Movies)
	if err != nil {
		return nil, err
	}
	dataset, err := film.DecodeDataset(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.Output.Movies, err)
	}
	return dataset, nil
}

func (a *App) writeJSON(ctx context.Context, location string, v any) (string, error) {
	data, err := film.EncodeJSON(v)
	if err != nil {
		return "", err
	}
	uri, err := a.store.Write(ctx, location, jsonContentType, data)
	if err != nil {
		return "", err
	}
	a.logger.Info("artifact written",
		zap.String("uri", uri),
		zap.Int("bytes", len(data)),
		zap.String("sha256", a.hasher.Hash(data)),
	)
	return uri, nil
}

// Close stops the metrics endpoint and releases storage clients.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

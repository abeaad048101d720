package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/JakeFAU/filmcast/internal/film"
	"github.com/JakeFAU/filmcast/internal/wiki"
)

// CategoryLister returns one page of a category listing.
type CategoryLister interface {
	CategoryMembers(ctx context.Context, query wiki.CategoryQuery) (wiki.CategoryPage, error)
}

// Member is a film found in a year's category.
type Member struct {
	// Title is the display title with any "(YYYY film)" suffix removed.
	Title string
	// PageTitle is the unmodified page title used for cast lookups.
	PageTitle string
}

// Crawler lists the films of a year.
type Crawler struct {
	lister  CategoryLister
	filters []TitleFilter
	limit   int
	logger  *zap.Logger
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithFilters replaces the default title filters. An empty slice keeps every
// member.
func WithFilters(filters []TitleFilter) Option {
	return func(c *Crawler) {
		c.filters = filters
	}
}

// WithPageLimit overrides the number of members requested per page.
func WithPageLimit(limit int) Option {
	return func(c *Crawler) {
		c.limit = limit
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a Crawler over lister.
func New(lister CategoryLister, opts ...Option) (*Crawler, error) {
	if lister == nil {
		return nil, errors.New("category lister is required")
	}
	defaults, err := NewTitleFilters(DefaultFilters)
	if err != nil {
		return nil, err
	}
	c := &Crawler{
		lister:  lister,
		filters: defaults,
		limit:   wiki.DefaultCategoryLimit,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Crawl returns the films of year in listing order. It follows continuation
// tokens until a page arrives without one; there is no page cap, so a server
// that never stops paginating is only bounded by ctx.
func (c *Crawler) Crawl(ctx context.Context, year int) ([]Member, error) {
	query := wiki.CategoryQuery{Category: wiki.YearCategory(year), Limit: c.limit}
	var members []Member
	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("crawl %d: %w", year, err)
		}
		page, err := c.lister.CategoryMembers(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("crawl %d page %d: %w", year, pageNum, err)
		}
		films := c.collect(page.Members)
		members = append(members, films...)
		c.logger.Debug("category page",
			zap.Int("year", year),
			zap.Int("page", pageNum),
			zap.Int("members", len(page.Members)),
			zap.Int("films", len(films)),
		)
		if page.Continue == "" {
			return members, nil
		}
		query = query.Next(page.Continue)
	}
}

func (c *Crawler) collect(raw []wiki.Member) []Member {
	kept := lo.Reject(raw, func(m wiki.Member, _ int) bool {
		return lo.ContainsBy(c.filters, func(f TitleFilter) bool {
			return f.Rejects(m.Title)
		})
	})
	return lo.FilterMap(kept, func(m wiki.Member, _ int) (Member, bool) {
		title := film.CleanTitle(m.Title)
		return Member{Title: title, PageTitle: m.Title}, title != ""
	})
}

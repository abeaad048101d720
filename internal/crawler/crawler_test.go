package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/filmcast/internal/wiki"
)

type pagedLister struct {
	pages   map[string]wiki.CategoryPage
	err     error
	queries []wiki.CategoryQuery
}

func (l *pagedLister) CategoryMembers(_ context.Context, q wiki.CategoryQuery) (wiki.CategoryPage, error) {
	l.queries = append(l.queries, q)
	if l.err != nil {
		return wiki.CategoryPage{}, l.err
	}
	page, ok := l.pages[q.Continue]
	if !ok {
		return wiki.CategoryPage{}, errors.New("unexpected continuation token " + q.Continue)
	}
	return page, nil
}

func titles(names ...string) []wiki.Member {
	out := make([]wiki.Member, len(names))
	for i, n := range names {
		out[i] = wiki.Member{PageID: int64(i + 1), Title: n}
	}
	return out
}

func TestCrawlFollowsContinuationTokens(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{pages: map[string]wiki.CategoryPage{
		"":   {Members: titles("Rebecca (1940 film)", "Category:1940 comedy films"), Continue: "p2"},
		"p2": {Members: titles("List of American films of 1940", "Fantasia (1940 film)"), Continue: "p3"},
		"p3": {Members: titles("The Great Dictator")},
	}}
	c, err := New(lister)
	require.NoError(t, err)

	members, err := c.Crawl(context.Background(), 1940)
	require.NoError(t, err)

	assert.Equal(t, []Member{
		{Title: "Rebecca", PageTitle: "Rebecca (1940 film)"},
		{Title: "Fantasia", PageTitle: "Fantasia (1940 film)"},
		{Title: "The Great Dictator", PageTitle: "The Great Dictator"},
	}, members)

	require.Len(t, lister.queries, 3, "one request per page")
	assert.Equal(t, []string{"", "p2", "p3"}, []string{
		lister.queries[0].Continue, lister.queries[1].Continue, lister.queries[2].Continue,
	})
	for _, q := range lister.queries {
		assert.Equal(t, "Category:1940_films", q.Category)
		assert.Equal(t, wiki.DefaultCategoryLimit, q.Limit)
	}
}

func TestCrawlSinglePage(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{pages: map[string]wiki.CategoryPage{
		"": {Members: titles("Roundhay Garden Scene")},
	}}
	c, err := New(lister)
	require.NoError(t, err)

	members, err := c.Crawl(context.Background(), 1888)
	require.NoError(t, err)
	assert.Equal(t, []Member{{Title: "Roundhay Garden Scene", PageTitle: "Roundhay Garden Scene"}}, members)
	assert.Len(t, lister.queries, 1)
}

func TestCrawlEmptyYear(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{pages: map[string]wiki.CategoryPage{"": {}}}
	c, err := New(lister)
	require.NoError(t, err)

	members, err := c.Crawl(context.Background(), 1889)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestCrawlDropsEmptyTitles(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{pages: map[string]wiki.CategoryPage{
		"": {Members: titles("(1999 film)", "Magnolia (film)")},
	}}
	c, err := New(lister)
	require.NoError(t, err)

	members, err := c.Crawl(context.Background(), 1999)
	require.NoError(t, err)
	assert.Equal(t, []Member{{Title: "Magnolia", PageTitle: "Magnolia (film)"}}, members)
}

func TestCrawlWithoutFilters(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{pages: map[string]wiki.CategoryPage{
		"": {Members: titles("Category:1950 films by country", "List of 1950 films")},
	}}
	c, err := New(lister, WithFilters(nil), WithPageLimit(50))
	require.NoError(t, err)

	members, err := c.Crawl(context.Background(), 1950)
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, 50, lister.queries[0].Limit)
}

func TestCrawlPropagatesErrors(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{err: &wiki.MalformedResponseError{Endpoint: "categorymembers", Field: "query.categorymembers"}}
	c, err := New(lister)
	require.NoError(t, err)

	_, err = c.Crawl(context.Background(), 1960)
	require.ErrorIs(t, err, wiki.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "crawl 1960 page 1")
}

func TestCrawlHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lister := &pagedLister{pages: map[string]wiki.CategoryPage{"": {}}}
	c, err := New(lister)
	require.NoError(t, err)

	_, err = c.Crawl(ctx, 1970)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, lister.queries)
}

func TestNewRequiresLister(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)
}

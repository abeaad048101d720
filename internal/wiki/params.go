package wiki

import (
	"fmt"
	"net/url"
	"strconv"
)

// DefaultCategoryLimit is the largest page size anonymous clients may ask for.
const DefaultCategoryLimit = 500

// CategoryQuery is one request against list=categorymembers. It is a value:
// each page of a crawl builds a fresh query carrying its continuation token.
type CategoryQuery struct {
	Category string
	Limit    int
	Continue string
}

// YearCategory returns the film category name for a year.
func YearCategory(year int) string {
	return fmt.Sprintf("Category:%d_films", year)
}

// Next returns a copy of q that resumes from token.
func (q CategoryQuery) Next(token string) CategoryQuery {
	q.Continue = token
	return q
}

// Values encodes the query parameters.
func (q CategoryQuery) Values() url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultCategoryLimit
	}
	v := url.Values{}
	v.Set("action", "query")
	v.Set("list", "categorymembers")
	v.Set("cmtitle", q.Category)
	v.Set("cmlimit", strconv.Itoa(limit))
	v.Set("format", "json")
	if q.Continue != "" {
		v.Set("cmcontinue", q.Continue)
	}
	return v
}

func sectionsValues(page string) url.Values {
	v := url.Values{}
	v.Set("action", "parse")
	v.Set("page", page)
	v.Set("prop", "sections")
	v.Set("format", "json")
	return v
}

func wikitextValues(page string, section SectionIndex) url.Values {
	v := url.Values{}
	v.Set("action", "parse")
	v.Set("prop", "wikitext")
	v.Set("section", string(section))
	v.Set("page", page)
	v.Set("format", "json")
	return v
}

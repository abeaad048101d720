package crawler

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Names accepted by NewTitleFilters.
const (
	FilterCategory = "category"
	FilterListOf   = "list_of"
)

// DefaultFilters drops subcategories and list articles.
var DefaultFilters = []string{FilterCategory, FilterListOf}

// TitleFilter rejects category members that are not films.
type TitleFilter struct {
	Name   string
	prefix string
}

// Rejects reports whether the raw member title is dropped.
func (f TitleFilter) Rejects(title string) bool {
	return strings.HasPrefix(title, f.prefix)
}

var knownFilters = map[string]TitleFilter{
	FilterCategory: {Name: FilterCategory, prefix: "Category:"},
	FilterListOf:   {Name: FilterListOf, prefix: "List of "},
}

// NewTitleFilters resolves filter names. Blank and repeated names are ignored;
// unknown names are an error.
func NewTitleFilters(names []string) ([]TitleFilter, error) {
	cleaned := lo.Uniq(lo.FilterMap(names, func(raw string, _ int) (string, bool) {
		name := strings.ToLower(strings.TrimSpace(raw))
		return name, name != ""
	}))
	filters := make([]TitleFilter, 0, len(cleaned))
	for _, name := range cleaned {
		f, ok := knownFilters[name]
		if !ok {
			return nil, fmt.Errorf("unknown title filter %q", name)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

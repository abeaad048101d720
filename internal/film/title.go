package film

import (
	"regexp"
	"strings"
)

var filmSuffix = regexp.MustCompile(`\([0-9]{0,4}\s?film\)`)

// CleanTitle strips disambiguation suffixes such as "(2013 film)" or "(film)",
// right-most first, until none is left, so cleaning a clean title is a no-op.
// Other parentheses are left alone and the text around a removed suffix is
// joined by a single space.
func CleanTitle(title string) string {
	for {
		locs := filmSuffix.FindAllStringIndex(title, -1)
		if len(locs) == 0 {
			return strings.TrimSpace(title)
		}
		last := locs[len(locs)-1]
		before := strings.TrimRight(title[:last[0]], " \t")
		after := strings.TrimLeft(title[last[1]:], " \t")
		if before != "" && after != "" {
			title = before + " " + after
		} else {
			title = before + after
		}
	}
}

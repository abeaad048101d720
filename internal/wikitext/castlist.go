// Package wikitext turns the raw markup of a cast section into actor names.
//
// Cast sections are free-form: bullet lists, tables, templates and prose all
// occur. The parser works line by line and keeps only the text that precedes
// the first portrayal separator ("Tom Hanks as Forrest Gump" -> "Tom Hanks").
package wikitext

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SplitPolicy selects which separator occurrence ends the actor name.
type SplitPolicy string

const (
	// SplitFirst cuts the line at the earliest match of any separator.
	SplitFirst SplitPolicy = "first"
	// SplitLast applies the separators in order, cutting each at its last match.
	// It keeps hyphenated names intact when "-" is a separator, at the cost of
	// keeping descriptive text that itself contains a separator.
	SplitLast SplitPolicy = "last"
)

// DefaultSeparators is the ordered portrayal separator set. Spaces match any
// run of whitespace, so " as " also matches "\tas\t".
var DefaultSeparators = []string{" as ", " - ", " – ", " — ", "...", "…", "|"}

// leadingMarkup covers list and table-cell prefixes left after stripping bullets.
const leadingMarkup = "#:;|! "

// noiseMarkers reject a line outright. Inline templates are stripped before
// the check, so any "{{" or "}}" left over belongs to a template that spans
// lines.
var noiseMarkers = []string{
	"==",
	"png", "jpg", "gif",
	"{{", "}}", "{|", "|}",
	"<!--",
}

var (
	castWord     = regexp.MustCompile(`\bCast\b`)
	inlineRef    = regexp.MustCompile(`(?i)<ref[^>]*/>|<ref[^>]*>.*?</ref>`)
	inlineNote   = regexp.MustCompile(`<!--.*?-->`)
	lineBreak    = regexp.MustCompile(`(?i)<br\s*/?>`)
	emphasis     = regexp.MustCompile(`'{2,}`)
	parenthetics = regexp.MustCompile(`\s+\([^()]*\)`)
	layout       = regexp.MustCompile(`(?i)\{\{\s*(div col|col-begin|col-end|col-break|columns-list|refbegin|refend)`)
	interlang    = regexp.MustCompile(`(?i)\{\{\s*(?:ill|interlanguage link)\s*\|\s*([^|{}]*?)\s*(?:\|[^{}]*)?\}\}`)
	sortName     = regexp.MustCompile(`(?i)\{\{\s*sortname\s*\|\s*([^|{}]*?)\s*\|\s*([^|{}]*?)\s*(?:\|[^{}]*)?\}\}`)
	template     = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	whitespace   = regexp.MustCompile(`\s+`)
	structural   = strings.NewReplacer("[", "", "]", "", "*", "")
)

// CastParser extracts actor names from cast section wikitext.
type CastParser struct {
	separators []*regexp.Regexp
	policy     SplitPolicy
}

// NewCastParser compiles the separators. An empty separator list falls back
// to DefaultSeparators and an empty policy to SplitFirst.
func NewCastParser(separators []string, policy SplitPolicy) (*CastParser, error) {
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	switch policy {
	case "":
		policy = SplitFirst
	case SplitFirst, SplitLast:
	default:
		return nil, fmt.Errorf("unknown split policy %q", policy)
	}
	compiled := make([]*regexp.Regexp, 0, len(separators))
	for _, sep := range separators {
		re, err := compileSeparator(sep)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &CastParser{separators: compiled, policy: policy}, nil
}

// Policy reports the configured split policy.
func (p *CastParser) Policy() SplitPolicy {
	return p.policy
}

// Parse returns the actor names found in text, in source order. Duplicates
// are kept; lines that clean to nothing are dropped.
func (p *CastParser) Parse(text string) []string {
	actors := []string{}
	for _, line := range strings.Split(text, "\n") {
		if actor := p.CleanActor(line); actor != "" {
			actors = append(actors, actor)
		}
	}
	return actors
}

// CleanActor reduces a single cast line to an actor name, or "" when the line
// carries no actor.
func (p *CastParser) CleanActor(line string) string {
	if layout.MatchString(line) {
		return ""
	}
	line = inlineRef.ReplaceAllString(line, "")
	line = inlineNote.ReplaceAllString(line, "")
	line = stripTemplates(line)
	if isNoise(line) {
		return ""
	}
	line = structural.Replace(line)
	line = strings.TrimLeft(strings.TrimSpace(line), leadingMarkup)
	line = lineBreak.ReplaceAllString(line, " ")
	line = emphasis.ReplaceAllString(line, "")
	line = p.truncate(line)
	line = replaceAllRepeated(parenthetics, line, "")
	line = whitespace.ReplaceAllString(strings.TrimSpace(line), " ")
	return norm.NFC.String(line)
}

func (p *CastParser) truncate(line string) string {
	if p.policy == SplitLast {
		for _, sep := range p.separators {
			locs := sep.FindAllStringIndex(line, -1)
			if len(locs) > 0 {
				line = line[:locs[len(locs)-1][0]]
			}
		}
		return line
	}
	cut := len(line)
	for _, sep := range p.separators {
		if loc := sep.FindStringIndex(line); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return line[:cut]
}

// stripTemplates unwraps name templates and drops every other inline template,
// innermost first.
func stripTemplates(line string) string {
	line = interlang.ReplaceAllString(line, "$1")
	line = sortName.ReplaceAllString(line, "$1 $2")
	return replaceAllRepeated(template, line, "")
}

func replaceAllRepeated(re *regexp.Regexp, s, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}

func isNoise(line string) bool {
	for _, marker := range noiseMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return castWord.MatchString(line)
}

func compileSeparator(sep string) (*regexp.Regexp, error) {
	core := strings.TrimSpace(sep)
	if core == "" {
		return nil, errors.New("separator must contain a non-space character")
	}
	var b strings.Builder
	if strings.TrimLeftFunc(sep, unicode.IsSpace) != sep {
		b.WriteString(`\s+`)
	}
	b.WriteString(strings.Join(quoteFields(core), `\s+`))
	if strings.TrimRightFunc(sep, unicode.IsSpace) != sep {
		b.WriteString(`\s+`)
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile separator %q: %w", sep, err)
	}
	return re, nil
}

func quoteFields(s string) []string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return fields
}

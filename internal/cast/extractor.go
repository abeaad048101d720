// Package cast finds a film page's cast section and turns its wikitext into
// an ordered list of actor names.
package cast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/filmcast/internal/wiki"
	"github.com/JakeFAU/filmcast/internal/wikitext"
)

// SectionMarker is matched case-sensitively against section headings.
const SectionMarker = "Cast"

// SectionReader reads a page's outline and section wikitext.
type SectionReader interface {
	Sections(ctx context.Context, page string) ([]wiki.Section, error)
	SectionWikitext(ctx context.Context, page string, section wiki.SectionIndex) (string, error)
}

// Extractor resolves cast lists for film pages.
type Extractor struct {
	reader SectionReader
	parser *wikitext.CastParser
	logger *zap.Logger
}

// NewExtractor builds an Extractor.
func NewExtractor(reader SectionReader, parser *wikitext.CastParser, logger *zap.Logger) (*Extractor, error) {
	if reader == nil {
		return nil, errors.New("section reader is required")
	}
	if parser == nil {
		return nil, errors.New("cast parser is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{reader: reader, parser: parser, logger: logger}, nil
}

// ExtractCast returns the actors credited on pageTitle, in page order. A page
// without a cast section yields an empty, non-nil slice.
func (e *Extractor) ExtractCast(ctx context.Context, pageTitle string) ([]string, error) {
	sections, err := e.reader.Sections(ctx, pageTitle)
	if err != nil {
		return nil, fmt.Errorf("sections of %q: %w", pageTitle, err)
	}
	section, ok := FindCastSection(sections)
	if !ok {
		e.logger.Debug("no cast section", zap.String("page", pageTitle))
		return []string{}, nil
	}
	text, err := e.reader.SectionWikitext(ctx, pageTitle, section.Index)
	if err != nil {
		return nil, fmt.Errorf("wikitext of %q section %s: %w", pageTitle, section.Index, err)
	}
	return e.parser.Parse(text), nil
}

// FindCastSection returns the first section whose heading contains
// SectionMarker.
func FindCastSection(sections []wiki.Section) (wiki.Section, bool) {
	for _, s := range sections {
		if strings.Contains(s.Line, SectionMarker) {
			return s, true
		}
	}
	return wiki.Section{}, false
}

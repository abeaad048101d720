package wiki

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Member is one entry of a category listing.
type Member struct {
	PageID int64
	Title  string
}

// CategoryPage is one page of a category listing. Continue is empty on the
// last page.
type CategoryPage struct {
	Members  []Member
	Continue string
}

// SectionIndex identifies a section within a page. The API sends it as a
// string, but numbers are accepted too.
type SectionIndex string

// UnmarshalJSON accepts a JSON string or number.
func (s *SectionIndex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("section index: %w", err)
		}
		*s = SectionIndex(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("section index: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("section index %s: %w", n, err)
	}
	*s = SectionIndex(n.String())
	return nil
}

// Section is a heading in a page's outline.
type Section struct {
	Line  string
	Index SectionIndex
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) detail() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error %s: %s", e.Code, e.Info)
}

type categoryResponse struct {
	Error *apiError `json:"error"`
	Query *struct {
		CategoryMembers *[]struct {
			PageID int64   `json:"pageid"`
			Title  *string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
	Continue *struct {
		CMContinue string `json:"cmcontinue"`
	} `json:"continue"`
}

func (r categoryResponse) page() (CategoryPage, error) {
	if r.Query == nil || r.Query.CategoryMembers == nil {
		return CategoryPage{}, &MalformedResponseError{
			Endpoint: endpointCategory,
			Field:    "query.categorymembers",
			Detail:   r.Error.detail(),
		}
	}
	raw := *r.Query.CategoryMembers
	page := CategoryPage{Members: make([]Member, 0, len(raw))}
	for i, m := range raw {
		if m.Title == nil {
			return CategoryPage{}, &MalformedResponseError{
				Endpoint: endpointCategory,
				Field:    fmt.Sprintf("query.categorymembers[%d].title", i),
			}
		}
		page.Members = append(page.Members, Member{PageID: m.PageID, Title: *m.Title})
	}
	if r.Continue != nil {
		page.Continue = r.Continue.CMContinue
	}
	return page, nil
}

type sectionsResponse struct {
	Error *apiError `json:"error"`
	Parse *struct {
		Sections *[]struct {
			Line  *string       `json:"line"`
			Index *SectionIndex `json:"index"`
		} `json:"sections"`
	} `json:"parse"`
}

func (r sectionsResponse) sections() ([]Section, error) {
	if r.Parse == nil || r.Parse.Sections == nil {
		return nil, &MalformedResponseError{
			Endpoint: endpointSections,
			Field:    "parse.sections",
			Detail:   r.Error.detail(),
		}
	}
	raw := *r.Parse.Sections
	out := make([]Section, 0, len(raw))
	for i, s := range raw {
		if s.Line == nil || s.Index == nil {
			return nil, &MalformedResponseError{
				Endpoint: endpointSections,
				Field:    fmt.Sprintf("parse.sections[%d].line/index", i),
			}
		}
		out = append(out, Section{Line: *s.Line, Index: *s.Index})
	}
	return out, nil
}

type wikitextResponse struct {
	Error *apiError `json:"error"`
	Parse *struct {
		Wikitext *struct {
			Content *string `json:"*"`
		} `json:"wikitext"`
	} `json:"parse"`
}

func (r wikitextResponse) text() (string, error) {
	if r.Parse == nil || r.Parse.Wikitext == nil || r.Parse.Wikitext.Content == nil {
		return "", &MalformedResponseError{
			Endpoint: endpointWikitext,
			Field:    "parse.wikitext.*",
			Detail:   r.Error.detail(),
		}
	}
	return *r.Parse.Wikitext.Content, nil
}

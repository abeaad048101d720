// Package wiki is a typed client for the MediaWiki action API endpoints used
// by the harvester: category listings, section outlines, and section wikitext.
package wiki

import (
	"context"
	"net/http"
	"time"
)

// FetchRequest describes a single HTTP GET.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the completed HTTP exchange, whatever its status code.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Fetcher performs HTTP GETs. Implementations return an error only when no
// response was received.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

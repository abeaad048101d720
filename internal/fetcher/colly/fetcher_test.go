package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/filmcast/internal/wiki"
)

func TestFetcherBuildCollector(t *testing.T) {
	t.Parallel()

	f := New(Config{UserAgent: "filmcast-test/1.0", Timeout: time.Second})
	collector := f.buildCollector(context.Background(), wiki.FetchRequest{URL: "https://example.com"},
		time.Unix(0, 0), &wiki.FetchResponse{}, new(error))
	if collector.UserAgent != "filmcast-test/1.0" {
		t.Fatalf("expected user agent override, got %q", collector.UserAgent)
	}
	if !collector.IgnoreRobotsTxt || !collector.AllowURLRevisit || !collector.ParseHTTPErrorResponse {
		t.Fatal("expected robots ignored, revisits allowed and error responses parsed")
	}
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	req := wiki.FetchRequest{
		URL:     "https://example.com",
		Headers: http.Header{"User-Agent": {"filmcast-test/1.0"}},
	}
	var result wiki.FetchResponse
	var fetchErr error

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, req, time.Unix(0, 0), &result, &fetchErr)
	if hooks.onRequest == nil || hooks.onResponse == nil || hooks.onError == nil {
		t.Fatal("expected hooks to be registered")
	}

	collyReq := &colly.Request{Headers: &http.Header{"User-Agent": {"colly"}}}
	hooks.onRequest(collyReq)
	if got := collyReq.Headers.Values("User-Agent"); len(got) != 1 || got[0] != "filmcast-test/1.0" {
		t.Fatalf("expected user agent replaced, got %v", got)
	}

	hooks.onResponse(&colly.Response{
		StatusCode: http.StatusServiceUnavailable,
		Body:       []byte("busy"),
		Headers:    &http.Header{"Retry-After": {"5"}},
		Request:    &colly.Request{URL: mustParseURL(t, "https://example.com")},
	})
	if result.StatusCode != http.StatusServiceUnavailable || string(result.Body) != "busy" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Headers.Get("Retry-After") != "5" {
		t.Fatalf("expected headers copied, got %+v", result.Headers)
	}

	hooks.onError(nil, errors.New("boom"))
	if fetchErr == nil || fetchErr.Error() != "boom" {
		t.Fatalf("expected fetchErr set, got %v", fetchErr)
	}
}

func TestCopyHeadersHandlesNil(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	collyReq := &colly.Request{Headers: &http.Header{}}
	f.copyHeaders(wiki.FetchRequest{}, collyReq)
	if len(*collyReq.Headers) != 0 {
		t.Fatalf("expected no headers to be copied, got %+v", *collyReq.Headers)
	}
}

func TestFetchAgainstServer(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	var userAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		userAgent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"parse":{"sections":[]}}`))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "collector-default", Timeout: time.Second})
	req := wiki.FetchRequest{
		URL:     srv.URL + "/w/api.php?action=parse&format=json",
		Headers: http.Header{"User-Agent": {"filmcast-test/1.0"}},
	}

	for i := 0; i < 2; i++ {
		resp, err := f.Fetch(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"parse":{"sections":[]}}`, string(resp.Body))
	}
	assert.Equal(t, int32(2), hits.Load(), "same url is fetched again")
	assert.Equal(t, "filmcast-test/1.0", userAgent.Load())
}

func TestFetchReturnsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "filmcast-test/1.0", Timeout: time.Second})
	resp, err := f.Fetch(context.Background(), wiki.FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "maintenance")
}

func TestFetchCanceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := New(Config{UserAgent: "filmcast-test/1.0", Timeout: 5 * time.Second})
	_, err := f.Fetch(ctx, wiki.FetchRequest{URL: srv.URL})
	require.Error(t, err)
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url %q: %v", raw, err)
	}
	return u
}

type stubHooks struct {
	onRequest  colly.RequestCallback
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnRequest(cb colly.RequestCallback) {
	s.onRequest = cb
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}

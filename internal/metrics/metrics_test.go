package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	Init()

	require.NotNil(t, apiRequestsTotal)
	require.NotNil(t, skippedTotal)
	require.NotNil(t, httpRequestsTotal)
}

func TestObserveAPIRequest(t *testing.T) {
	Init()
	before := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("sections", OutcomeOK))
	ObserveAPIRequest("sections", OutcomeOK, 120*time.Millisecond)
	after := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("sections", OutcomeOK))

	assert.Equal(t, before+1, after)
	assert.Positive(t, testutil.CollectAndCount(apiRequestDurationSeconds))
}

func TestObserveFilmAndSkip(t *testing.T) {
	Init()
	films := testutil.ToFloat64(filmsTotal)
	actors := testutil.ToFloat64(actorsTotal)
	skips := testutil.ToFloat64(skippedTotal.WithLabelValues("title"))

	ObserveFilm(3)
	ObserveFilm(0)
	ObserveSkip("title")

	assert.Equal(t, films+2, testutil.ToFloat64(filmsTotal))
	assert.Equal(t, actors+3, testutil.ToFloat64(actorsTotal))
	assert.Equal(t, skips+1, testutil.ToFloat64(skippedTotal.WithLabelValues("title")))
}

func TestRouterRecordsRequests(t *testing.T) {
	Init()
	ts := httptest.NewServer(Router())
	defer ts.Close()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "200"))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Contains(t, string(body), "http_requests_total")

	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "200")), before+2)
}

func TestServeAndShutdown(t *testing.T) {
	srv, err := Serve("127.0.0.1:0", zap.NewNop())
	require.NoError(t, err)

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}

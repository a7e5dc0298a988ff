package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTPRequest(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest("POST", "/transcribe", 200, 150*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/transcribe", 200, 250*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/transcribe", 400, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/transcribe", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/transcribe", "400")))
}

func TestObserveTranscription(t *testing.T) {
	m := New()

	m.ObserveTranscription("whisper_cpp", nil, 2*time.Second)
	m.ObserveTranscription("whisper_cpp", errors.New("boom"), time.Second)
	m.ObserveTranscription("openai", nil, 3*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transcriptionsTotal.WithLabelValues("whisper_cpp", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transcriptionsTotal.WithLabelValues("whisper_cpp", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transcriptionsTotal.WithLabelValues("openai", "success")))
}

func TestObserveCacheLookup(t *testing.T) {
	m := New()

	m.ObserveCacheLookup(CacheHit)
	m.ObserveCacheLookup(CacheMiss)
	m.ObserveCacheLookup(CacheMiss)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues(CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues(CacheMiss)))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(recorder, request)

	require.Equal(t, 200, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "audioscribe_http_requests_total")
}

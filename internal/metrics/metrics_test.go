package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Event(EventKill)
		r.Rejected(EventKill)
		r.PersistRetry()
		r.PersistResult(time.Millisecond, errors.New("boom"))
		r.Roster(1, 2)
		r.HTTPRequest(http.MethodGet, "/api/players", http.StatusOK, time.Millisecond)
	})

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.Event(EventKill)
	r.Event(EventKill)
	r.Event(EventDeath)
	r.Rejected(EventKill)
	r.PersistRetry()
	r.PersistResult(time.Millisecond, nil)
	r.PersistResult(time.Millisecond, errors.New("disk full"))
	r.Roster(3, 4)

	assert.InDelta(t, 2, testutil.ToFloat64(r.events.WithLabelValues(EventKill)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.events.WithLabelValues(EventDeath)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.rejected.WithLabelValues(EventKill)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.persistRetries), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.persistFailures), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(r.roster.WithLabelValues("team1")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(r.roster.WithLabelValues("team2")), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.Event(EventRegister)
	r.HTTPRequest(http.MethodPost, "/api/register", http.StatusOK, 5*time.Millisecond)

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `blaze_match_events_total{event="register"} 1`))
	assert.True(t, strings.Contains(body, `blaze_http_requests_total{method="POST",route="/api/register",status="200"} 1`))
}

package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"layledger/events"
	"layledger/models"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HandleEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ctx := context.Background()

	m.handleEvent(ctx, events.BetPlacedEvent{})
	m.handleEvent(ctx, events.BetStatusChangedEvent{OldStatus: models.BetStatusPending, NewStatus: models.BetStatusApproved})
	m.handleEvent(ctx, events.BetStatusChangedEvent{OldStatus: models.BetStatusPending, NewStatus: models.BetStatusApproved})
	m.handleEvent(ctx, events.BalanceChangeEvent{TransactionType: models.TransactionTypeBetStake})
	m.handleEvent(ctx, events.DepositAddressIssuedEvent{})
	m.handleEvent(ctx, events.WithdrawRequestedEvent{})
	m.handleEvent(ctx, events.WeeklyRewardPaidEvent{})
	m.handleEvent(ctx, events.RolloverCompletedEvent{Failures: 3})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.betsPlaced))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.betTransitions.WithLabelValues("pending", "approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.balanceTransactions.WithLabelValues("bet_stake")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.depositAddressesIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.withdrawRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.weeklyRewardsPaid))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rolloverFailures))
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/lays/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lays/abc", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))

	expected := `layledger_http_request_duration_seconds_count{method="GET",route="/lays/{id}",status="418"} 1`
	body := scrape(t, reg)
	assert.Contains(t, body, expected)
}

func TestServer_Health(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	healthy := NewServer(":0", reg, func(ctx context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	unhealthy := NewServer(":0", reg, func(ctx context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	unhealthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	srv := NewServer(":0", reg, func(ctx context.Context) error { return nil })
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return strings.TrimSpace(rec.Body.String())
}

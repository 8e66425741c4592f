package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"layledger/events"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Metrics holds the Prometheus collectors of the ledger
type Metrics struct {
	betTransitions         *prometheus.CounterVec
	betsPlaced             prometheus.Counter
	balanceTransactions    *prometheus.CounterVec
	depositAddressesIssued prometheus.Counter
	withdrawRequests       prometheus.Counter
	weeklyRewardsPaid      prometheus.Counter
	rolloverFailures       prometheus.Counter
	httpDuration           *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		betTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: BetTransitionsTotal,
			Help: "Lay status transitions applied",
		}, []string{LabelFrom, LabelTo}),
		betsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: BetsPlacedTotal,
			Help: "Lays created",
		}),
		balanceTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: BalanceTransactionsTotal,
			Help: "Wallet adjustments by transaction type",
		}, []string{LabelType}),
		depositAddressesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: DepositAddressesIssuedTotal,
			Help: "Deposit addresses handed out by the rotation",
		}),
		withdrawRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: WithdrawRequestsTotal,
			Help: "Withdraw requests recorded",
		}),
		weeklyRewardsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: WeeklyRewardsPaidTotal,
			Help: "Weekly rewards credited by the rollover",
		}),
		rolloverFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: RolloverFailuresTotal,
			Help: "Weekly records the rollover failed to process",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    HTTPRequestDurationSeconds,
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{LabelMethod, LabelRoute, LabelStatus}),
	}

	reg.MustRegister(
		m.betTransitions,
		m.betsPlaced,
		m.balanceTransactions,
		m.depositAddressesIssued,
		m.withdrawRequests,
		m.weeklyRewardsPaid,
		m.rolloverFailures,
		m.httpDuration,
	)

	return m
}

// Attach counts committed ledger events from the bus
func (m *Metrics) Attach(bus *events.Bus) {
	bus.SubscribeAll(m.handleEvent)
	log.Debug("Metrics subscribed to ledger events")
}

func (m *Metrics) handleEvent(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case events.BetPlacedEvent:
		m.betsPlaced.Inc()
	case events.BetStatusChangedEvent:
		m.betTransitions.WithLabelValues(string(e.OldStatus), string(e.NewStatus)).Inc()
	case events.BalanceChangeEvent:
		m.balanceTransactions.WithLabelValues(string(e.TransactionType)).Inc()
	case events.DepositAddressIssuedEvent:
		m.depositAddressesIssued.Inc()
	case events.WithdrawRequestedEvent:
		m.withdrawRequests.Inc()
	case events.WeeklyRewardPaidEvent:
		m.weeklyRewardsPaid.Inc()
	case events.RolloverCompletedEvent:
		m.rolloverFailures.Add(float64(e.Failures))
	}
}

// Middleware records request latency labelled by the matched chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of requests by path, method and status_code.",
	}, []string{"path", "method", "status_code"})
	HttpRequestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current requests being served.",
	}, []string{"path", "method"})
	HttpRequestsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_requests_duration",
		Help: "Duration of HTTP requests in seconds by path and method.",
	}, []string{"path", "method"})

	Deposits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_deposits_total",
		Help: "Total number of deposits appended to the ledger by asset kind.",
	}, []string{"asset_kind"})
	Overrides = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_overrides_total",
		Help: "Total number of newly set skip and cancel flags.",
	}, []string{"type"})
	Withdrawals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_withdrawals_total",
		Help: "Total number of withdraw calls by outcome.",
	}, []string{"status"})
	WithdrawnAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_withdrawn_amount_total",
		Help: "Total amount transferred to beneficiaries by asset.",
	}, []string{"asset"})
	ReplayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_replay_duration",
		Help:    "Time it took to replay the pending range of a beneficiary.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 6),
	})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Total number of errors by component.",
	}, []string{"component"})
)

// HttpMiddleware implements mux.MiddlewareFunc.
// It uses the path template as label so that /v1/deposits/{id} doesn't
// explode into one series per deposit.
func HttpMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := "UNDEFINED"
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		method := strings.ToUpper(r.Method)
		HttpRequestsInFlight.WithLabelValues(path, method).Inc()
		defer HttpRequestsInFlight.WithLabelValues(path, method).Dec()
		d := &responseWriterDelegator{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(d, r)
		status := strconv.Itoa(d.status)
		HttpRequestsTotal.WithLabelValues(path, method, status).Inc()
		HttpRequestsDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
	})
}

type responseWriterDelegator struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (r *responseWriterDelegator) WriteHeader(code int) {
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseWriterDelegator) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

package proxygw

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the proxy's Prometheus instrumentation.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	ForbiddenTotal   prometheus.Counter
	RateLimitedTotal prometheus.Counter
	AuthFailureTotal prometheus.Counter
	UnsupportedTotal prometheus.Counter
	UpstreamErrors   prometheus.Counter
	ForbidSetSize    prometheus.GaugeFunc
}

// NewMetrics creates and registers all metrics with reg. A nil reg yields a
// fresh private registry, so tests (and multiple Gateway instances in the
// same process) never collide over the global default registerer.
// forbidCount is polled on every /metrics scrape to report the live size of
// the session's forbid set; pass a func returning 0 when unavailable.
func NewMetrics(reg prometheus.Registerer, forbidCount func() float64) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if forbidCount == nil {
		forbidCount = func() float64 { return 0 }
	}
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fbgate",
				Name:      "requests_total",
				Help:      "Total number of requests handled by the proxy gateway",
			},
			[]string{"method", "status"},
		),
		ForbiddenTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fbgate",
			Name:      "forbidden_total",
			Help:      "Requests rejected by the origin firewall or an active block",
		}),
		RateLimitedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fbgate",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		AuthFailureTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fbgate",
			Name:      "auth_failures_total",
			Help:      "Login attempts that received a 403 from the child",
		}),
		UnsupportedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fbgate",
			Name:      "unsupported_browser_total",
			Help:      "Requests short-circuited by the browser sniffer",
		}),
		UpstreamErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "fbgate",
			Name:      "upstream_errors_total",
			Help:      "Requests that failed to reach the child process",
		}),
		ForbidSetSize: promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "fbgate",
			Name:      "forbid_set_size",
			Help:      "Current number of hosts in the forbid fast-path set",
		}, forbidCount),
	}
}

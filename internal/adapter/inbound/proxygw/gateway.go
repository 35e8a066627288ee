// Package proxygw implements the hardening reverse proxy that sits in front
// of the child file-browsing server: origin firewall, auth-failure lockouts,
// rate limiting, browser-compatibility warnings, and the login Authorization
// rewrite.
package proxygw

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thevickypedia/fbgate/internal/adapter/outbound/pageviews"
	"github.com/thevickypedia/fbgate/internal/config"
	"github.com/thevickypedia/fbgate/internal/domain/auth"
	"github.com/thevickypedia/fbgate/internal/domain/browsersniff"
	"github.com/thevickypedia/fbgate/internal/domain/ratelimit"
	"github.com/thevickypedia/fbgate/internal/domain/session"
)

// Gateway is the http.Handler fronting the child process.
type Gateway struct {
	cfg         *config.EnvConfig
	destination *url.URL
	creds       auth.CredentialMap
	sess        *session.Session
	limiter     ratelimit.Limiter
	tracker     *auth.FailureTracker
	renderer    *pageviews.Renderer
	unsupported map[string]struct{}
	client      *http.Client
	metrics     *Metrics
	logger      *slog.Logger
}

// NewGateway builds a Gateway. destination is the child's base URL, e.g.
// "http://127.0.0.1:8080". Pass prometheus.DefaultRegisterer to register
// the metrics in the process-wide default registry, or nil for a private
// registry (tests construct many Gateways and must not collide). The
// Gateway itself serves no /metrics route.
func NewGateway(
	cfg *config.EnvConfig,
	destination *url.URL,
	creds auth.CredentialMap,
	sess *session.Session,
	limiter ratelimit.Limiter,
	tracker *auth.FailureTracker,
	renderer *pageviews.Renderer,
	logger *slog.Logger,
	reg ...prometheus.Registerer,
) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	var registerer prometheus.Registerer
	if len(reg) > 0 {
		registerer = reg[0]
	}
	return &Gateway{
		cfg:         cfg,
		destination: destination,
		creds:       creds,
		sess:        sess,
		limiter:     limiter,
		tracker:     tracker,
		renderer:    renderer,
		unsupported: browsersniff.NormalizeList(cfg.UnsupportedBrowsers),
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		metrics: NewMetrics(registerer, func() float64 { return float64(sess.ForbidCount()) }),
		logger:  logger,
	}
}

// hostOf strips scheme/port/path from a raw Origin or Host header value.
func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// identifierFor returns the rate-limit identifier for r: the first value of
// X-Forwarded-For if present, else the peer address, per spec.md §4.5.
func identifierFor(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}

// peerHost extracts the bare host from r.RemoteAddr (which is host:port).
func peerHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

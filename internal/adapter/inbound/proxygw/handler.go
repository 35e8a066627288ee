package proxygw

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/thevickypedia/fbgate/internal/domain/auth"
	"github.com/thevickypedia/fbgate/internal/domain/browsersniff"
	"github.com/thevickypedia/fbgate/internal/domain/ratelimit"
)

const cookieName = "pyproxy"

// ServeHTTP implements the nine-step hardening pipeline fronting the child
// process, per spec.md §4.8. Each request gets its own correlation id
// attached to every log line it produces.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := g.logger.With("request_id", uuid.NewString())

	g.applyCORS(w, r)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	peer := peerHost(r)

	// Step 1: first-contact logging and browser compatibility check.
	if g.sess.MarkSeen(peer) {
		logger.Info("first contact",
			"peer", peer,
			"host", r.Host,
			"forwarded_host", r.Header.Get("X-Forwarded-Host"),
			"user_agent", r.UserAgent(),
		)
	}
	ua := browsersniff.Parse(r.UserAgent())
	if browsersniff.IsUnsupported(ua, g.unsupported) {
		g.metrics.UnsupportedTotal.Inc()
		page, err := g.renderer.UnsupportedBrowser(ua)
		if err != nil {
			logger.Error("render unsupported browser page", "error", err)
			http.Error(w, "unsupported browser", http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
		return
	}

	// Step 2: origin firewall.
	origin := r.Header.Get("Origin")
	checkHost := hostOf(origin)
	if checkHost == "" {
		checkHost = hostOf(r.Host)
	}
	if checkHost != "" && !g.sess.IsAllowedOrigin(checkHost) {
		g.metrics.ForbiddenTotal.Inc()
		g.writeForbidden(w, logger, checkHost)
		return
	}

	// Step 3: active-block check.
	if g.sess.IsForbidden(peer) {
		blocked, err := g.tracker.IsBlocked(r.Context(), peer)
		if err != nil {
			logger.Error("block store lookup", "error", err, "peer", peer)
		}
		if blocked {
			g.metrics.ForbiddenTotal.Inc()
			g.writeForbidden(w, logger, peer)
			return
		}
	}

	// Step 4: rate limiting, applied per spec.md §4.5.
	if g.limiter != nil {
		identifier := identifierFor(r)
		for _, rule := range g.cfg.RateLimit {
			key := ratelimit.FormatKey(identifier, r.URL.Path)
			result, err := g.limiter.Allow(r.Context(), key, rule)
			if err != nil {
				logger.Error("rate limiter", "error", err, "identifier", identifier)
				continue
			}
			if !result.Allowed {
				g.metrics.RateLimitedTotal.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
		}
	}

	// Step 5: de-duplicated request log.
	methodPath := r.Method + " " + r.URL.Path
	if g.sess.LastLoggedPath(peer) != methodPath {
		g.sess.SetLastLoggedPath(peer, methodPath)
		logger.Info("request", "peer", peer, "method", r.Method, "path", r.URL.Path)
	}

	// Step 6: authorization rewriting.
	cookieMarker := ""
	isLogin := r.Method == http.MethodPost && r.URL.Path == "/api/login"
	if isLogin {
		if result, ok := auth.Verify(r.Header.Get("Authorization"), g.creds); ok {
			cookieMarker = "delete"
			if body, err := result.JSON(); err == nil {
				r.Header.Set("Authorization", string(body))
			}
		}
	} else if r.Method == http.MethodGet && (r.URL.Path == "/" || r.URL.Path == "/login") {
		cookieMarker = "set"
	}

	// Step 9 (set before the header is flushed by forward): cookie marker.
	switch cookieMarker {
	case "set":
		http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "on", Path: "/"})
	case "delete":
		http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	}

	// Step 7: forward to the child.
	rec := newStatusRecorder(w)
	if err := g.forward(rec, r); err != nil {
		g.metrics.UpstreamErrors.Inc()
		g.writeServiceUnavailable(w, logger)
		return
	}
	g.metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()

	// Step 8: auth bookkeeping for login responses.
	if isLogin {
		var err error
		if rec.status == http.StatusForbidden {
			g.metrics.AuthFailureTotal.Inc()
			err = g.tracker.RecordFailure(r.Context(), peer)
		} else {
			err = g.tracker.RecordSuccess(r.Context(), peer)
		}
		if err != nil {
			logger.Error("auth bookkeeping", "error", err, "peer", peer)
		}
	}
}

func (g *Gateway) writeForbidden(w http.ResponseWriter, logger *slog.Logger, origin string) {
	page, err := g.renderer.Forbidden(origin)
	if err != nil {
		logger.Error("render forbidden page", "error", err)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(page))
}

// writeServiceUnavailable handles the failure branch of step 7: any failure
// reaching the child becomes a 503 with a 5-minute cache hint.
func (g *Gateway) writeServiceUnavailable(w http.ResponseWriter, logger *slog.Logger) {
	page, err := g.renderer.ServiceUnavailable()
	w.Header().Set("Cache-Control", "max-age=300")
	w.Header().Set("Expires", time.Now().Add(5*time.Minute).UTC().Format(http.TimeFormat))
	if err != nil {
		logger.Error("render service unavailable page", "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(page))
}

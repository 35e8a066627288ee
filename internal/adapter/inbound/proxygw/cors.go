package proxygw

import "net/http"

const corsAllowedMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS, HEAD"

// applyCORS advertises Access-Control-Allow-Origin from the static origins
// list, allows credentials, and caches preflight responses for 300 seconds,
// per spec.md §6 ("CORS").
func (g *Gateway) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	host := hostOf(origin)
	allowed := false
	for _, static := range g.cfg.Origins {
		if static == host {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
	h.Set("Access-Control-Allow-Headers", "*")
	h.Set("Access-Control-Max-Age", "300")
}

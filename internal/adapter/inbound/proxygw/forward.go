package proxygw

import (
	"io"
	"net"
	"net/http"
	"strings"
)

// hopByHopHeaders lists headers meaningful only for a single transport-level
// connection; they must not be forwarded to the child (RFC 2616 §13.5.1).
var hopByHopHeaders = []string{
	"Connection",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// forward issues r against the child at g.destination and copies the
// response back to w, per spec.md §4.8 step 6.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request) error {
	target := *g.destination
	target.Path = r.URL.Path
	target.RawQuery = r.URL.RawQuery

	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		return err
	}

	for key, values := range r.Header {
		for _, v := range values {
			outReq.Header.Add(key, v)
		}
	}
	for _, h := range hopByHopHeaders {
		outReq.Header.Del(h)
	}

	clientIP, _, _ := net.SplitHostPort(r.RemoteAddr)
	if clientIP == "" {
		clientIP = r.RemoteAddr
	}
	if prior := outReq.Header.Get("X-Forwarded-For"); prior != "" {
		outReq.Header.Set("X-Forwarded-For", prior+", "+clientIP)
	} else {
		outReq.Header.Set("X-Forwarded-For", clientIP)
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	outReq.Header.Set("X-Forwarded-Proto", scheme)
	outReq.Header.Set("X-Forwarded-Host", r.Host)

	resp, err := g.client.Do(outReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if strings.EqualFold(key, "Content-Encoding") {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text") || strings.Contains(contentType, "javascript") {
		w.Header().Del("Content-Length")
	}

	w.WriteHeader(resp.StatusCode)
	_, err = io.Copy(w, resp.Body)
	return err
}

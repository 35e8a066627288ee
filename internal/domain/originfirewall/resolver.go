// Package originfirewall computes and periodically refreshes the set of
// host identities the proxy will accept as Host / base-URL, per spec.md
// §4.6: static config plus optional dynamic private/public IP lookups.
package originfirewall

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// echoEndpoints is the rotating list of well-known public-IP echo
// services polled until one returns a well-formed IPv4 address.
var echoEndpoints = []string{
	"https://api.ipify.org",
	"https://checkip.amazonaws.com",
	"https://icanhazip.com",
}

// Config controls which dynamic sources the resolver consults.
type Config struct {
	BindHost        string
	AllowPrivateIP  bool
	AllowPublicIP   bool
	HTTPClient      *http.Client
}

// Resolve assembles the allowed-origin set: the bind host; "localhost"
// and "0.0.0.0" if the bind host resolves to localhost; the optional
// private and public IPs. Every entry is a bare host, never empty, never
// carrying a scheme/port/path.
func Resolve(ctx context.Context, cfg Config) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	if cfg.BindHost != "" {
		set[cfg.BindHost] = struct{}{}
	}

	if isLocalhost(cfg.BindHost) {
		set["localhost"] = struct{}{}
		set["0.0.0.0"] = struct{}{}
	}

	if cfg.AllowPrivateIP {
		if ip, err := privateIP(); err == nil && ip != "" {
			set[ip] = struct{}{}
		}
	}

	if cfg.AllowPublicIP {
		client := cfg.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 5 * time.Second}
		}
		if ip, err := publicIP(ctx, client); err == nil && ip != "" {
			set[ip] = struct{}{}
		}
	}

	return set, nil
}

func isLocalhost(bindHost string) bool {
	if bindHost == "" {
		return false
	}
	resolved, err := net.LookupHost("localhost")
	if err != nil {
		return bindHost == "127.0.0.1"
	}
	for _, addr := range resolved {
		if addr == bindHost {
			return true
		}
	}
	return false
}

// privateIP reads back the local address from a UDP "connection" to a
// public address; no packet is actually sent, this only resolves which
// local interface the kernel would route through.
func privateIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("resolve private ip: %w", err)
	}
	defer conn.Close()
	localAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("resolve private ip: unexpected local addr type")
	}
	return localAddr.IP.String(), nil
}

// publicIP polls the rotating echo-endpoint list, accepting the first
// well-formed IPv4 response.
func publicIP(ctx context.Context, client *http.Client) (string, error) {
	var lastErr error
	for _, endpoint := range echoEndpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			lastErr = err
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body := make([]byte, 64)
		n, _ := resp.Body.Read(body)
		resp.Body.Close()
		candidate := trimToIPv4(string(body[:n]))
		if ip := net.ParseIP(candidate); ip != nil && ip.To4() != nil {
			return candidate, nil
		}
		lastErr = fmt.Errorf("endpoint %s returned non-IPv4 body", endpoint)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no echo endpoint returned a usable address")
	}
	return "", lastErr
}

func trimToIPv4(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\n' || s[start] == '\r' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\n' || s[end-1] == '\r' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

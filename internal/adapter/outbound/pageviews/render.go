// Package pageviews renders the three HTML pages the proxy gateway serves
// directly: service-unavailable, forbidden, and unsupported-browser. Each
// page is rendered fresh from its configured on-disk template path on every
// call, mirroring the teacher's page-render idiom while swapping Jinja for
// html/template.
package pageviews

import (
	"bytes"
	"html/template"
	"net/http"
	"os"

	"github.com/thevickypedia/fbgate/internal/domain/browsersniff"
)

// Renderer reads and renders the configured error and warning page templates.
type Renderer struct {
	ErrorPagePath string
	WarnPagePath  string
}

// NewRenderer builds a Renderer for the given template paths.
func NewRenderer(errorPagePath, warnPagePath string) *Renderer {
	return &Renderer{ErrorPagePath: errorPagePath, WarnPagePath: warnPagePath}
}

type pageData struct {
	Title           string
	Summary         string
	Help            string
	RefreshInterval int
	BrowserName     string
	BrowserVersion  string
	Recommendation  string
}

func (r *Renderer) render(path string, data pageData) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New("page").Parse(string(raw))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ServiceUnavailable renders the error page for an unreachable child, with a
// 60-second auto-refresh hint.
func (r *Renderer) ServiceUnavailable() (string, error) {
	return r.render(r.ErrorPagePath, pageData{
		Title:           http.StatusText(http.StatusServiceUnavailable),
		Summary:         `Unable to connect to the server`,
		Help:            "Nothing to do here. Sit back and relax while the server is napping.",
		RefreshInterval: 60,
	})
}

// Forbidden renders the error page for a rejected origin, with a 24-hour
// auto-refresh hint.
func (r *Renderer) Forbidden(origin string) (string, error) {
	return r.render(r.ErrorPagePath, pageData{
		Title:           http.StatusText(http.StatusForbidden),
		Summary:         "Forbidden",
		Help:            "Requests from '" + origin + "' are not allowed",
		RefreshInterval: 86400,
	})
}

// UnsupportedBrowser renders the warning page for a browser family present
// in the unsupported-browser list, with a 30-second auto-refresh hint.
func (r *Renderer) UnsupportedBrowser(ua browsersniff.UserAgent) (string, error) {
	return r.render(r.WarnPagePath, pageData{
		BrowserName:     ua.Family,
		BrowserVersion:  ua.Version,
		Recommendation:  "Firefox or Safari",
		RefreshInterval: 30,
	})
}

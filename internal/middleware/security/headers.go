// Package security applies response hardening headers and resolves the
// client address behind trusted proxies.
package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Directive is one Content-Security-Policy directive.
type Directive struct {
	Name    string
	Sources []string
}

// HeadersConfig describes the headers added to every response.
type HeadersConfig struct {
	// CSP directives, emitted in order.
	CSP []Directive

	// HSTS is only sent over TLS. Zero disables it.
	HSTSMaxAge            time.Duration
	HSTSIncludeSubdomains bool

	// Private marks responses as personal ledger data: no shared caching,
	// no indexing. Handlers may still set their own Cache-Control.
	Private bool

	// Fixed holds headers sent verbatim.
	Fixed map[string]string
}

// DefaultHeadersConfig returns the policy for the dashboard: server-rendered
// HTML with no scripts, a same-origin stylesheet, inline swatch colors and
// the same-origin chart image.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: []Directive{
			{"default-src", []string{"'self'"}},
			{"script-src", []string{"'none'"}},
			{"style-src", []string{"'self'", "'unsafe-inline'"}},
			{"img-src", []string{"'self'"}},
			{"connect-src", []string{"'none'"}},
			{"object-src", []string{"'none'"}},
			{"frame-ancestors", []string{"'none'"}},
			{"base-uri", []string{"'self'"}},
			{"form-action", []string{"'self'"}},
		},
		HSTSMaxAge:            365 * 24 * time.Hour,
		HSTSIncludeSubdomains: true,
		Private:               true,
		Fixed: map[string]string{
			"X-Content-Type-Options":       "nosniff",
			"X-Frame-Options":              "DENY",
			"Referrer-Policy":              "same-origin",
			"Permissions-Policy":           "geolocation=(), microphone=(), camera=(), payment=()",
			"Cross-Origin-Opener-Policy":   "same-origin",
			"Cross-Origin-Resource-Policy": "same-origin",
		},
	}
}

// CSPString renders the directives as a header value.
func (c HeadersConfig) CSPString() string {
	parts := make([]string, 0, len(c.CSP))
	for _, d := range c.CSP {
		if len(d.Sources) == 0 {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(d.Sources, " "))
	}
	return strings.Join(parts, "; ")
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	fixed map[string]string
	hsts  string
}

// NewHeadersMiddleware renders config once; the result is shared by all requests.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	fixed := make(map[string]string, len(config.Fixed)+3)
	for k, v := range config.Fixed {
		if v != "" {
			fixed[k] = v
		}
	}
	if csp := config.CSPString(); csp != "" {
		fixed["Content-Security-Policy"] = csp
	}
	if config.Private {
		fixed["Cache-Control"] = "no-store"
		fixed["X-Robots-Tag"] = "noindex, nofollow"
	}

	var hsts string
	if secs := int64(config.HSTSMaxAge / time.Second); secs > 0 {
		hsts = fmt.Sprintf("max-age=%d", secs)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}
	return &HeadersMiddleware{fixed: fixed, hsts: hsts}
}

// Middleware returns the HTTP middleware function
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for k, v := range h.fixed {
			headers.Set(k, v)
		}
		if r.TLS != nil && h.hsts != "" {
			headers.Set("Strict-Transport-Security", h.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware lets browsers cache the embedded stylesheet for
// maxAge, overriding the private no-store default.
func StaticAssetMiddleware(maxAge time.Duration) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int64(maxAge/time.Second))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", value)
				w.Header().Del("X-Robots-Tag")
			}
			next.ServeHTTP(w, r)
		})
	}
}

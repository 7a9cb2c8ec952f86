// Package fingerprint identifies server-side technologies from HTTP
// response headers and body content.
//
// Detection is a pure function over a single response; the crawl engine
// merges per-response findings into a shared technology map, first writer
// wins. Signals are intentionally coarse: interesting headers are reported
// verbatim, plus a meta-generator tag and well-known session cookies.
package fingerprint

import (
	"net/http"
	"regexp"
	"strings"
)

// interestingHeaders maps lowercase header names to the display name used
// as the technology signal key.
var interestingHeaders = map[string]string{
	"server":           "Server",
	"x-powered-by":     "X-Powered-By",
	"x-aspnet-version": "ASP.NET Version",
	"via":              "Via (Proxies)",
	"x-runtime":        "X-Runtime (Ruby/Rails)",

	"x-cache":         "X-Cache",
	"x-cache-status":  "X-Cache-Status",
	"age":             "Age (seconds in cache)",
	"cf-cache-status": "Cloudflare Cache",

	"strict-transport-security": "HSTS Policy",
	"content-security-policy":   "Content-Security-Policy",
	"x-frame-options":           "X-Frame-Options",
	"x-content-type-options":    "X-Content-Type-Options",

	"x-generator":    "X-Generator",
	"link":           "Link Header",
	"x-drupal-cache": "X-Drupal-Cache",
}

// generatorPattern matches the content attribute of a meta generator tag.
var generatorPattern = regexp.MustCompile(`(?i)<meta\s+name=["']generator["']\s+content=["']([^"']+)["']`)

// SessionSignal is the technology key used for session cookie detection.
const SessionSignal = "Session"

// Detect inspects a response's headers and body and returns a mapping of
// technology signal names to values. The result is empty, never nil, when
// nothing is recognized.
func Detect(headers http.Header, body string) map[string]string {
	found := make(map[string]string)

	for name, display := range interestingHeaders {
		if value := headers.Get(name); value != "" {
			found[display] = strings.TrimSpace(value)
		}
	}

	if body != "" {
		if m := generatorPattern.FindStringSubmatch(body); m != nil {
			found["Generator (Meta)"] = strings.TrimSpace(m[1])
		}
	}

	cookies := strings.ToLower(strings.Join(headers.Values("Set-Cookie"), "; "))
	switch {
	case strings.Contains(cookies, "phpsessid"):
		found[SessionSignal] = "PHP (PHPSESSID cookie)"
	case strings.Contains(cookies, "jsessionid"):
		found[SessionSignal] = "Java (JSESSIONID cookie)"
	}

	return found
}

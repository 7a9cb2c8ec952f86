package module

import (
	"context"
	"strings"
	"testing"
)

func TestHeadersModule(t *testing.T) {
	t.Parallel()

	crawl := testCrawl()
	crawl.Technologies = map[string]string{
		"HSTS Policy":             "max-age=31536000",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'self'",
		"Server":                  "nginx",
	}

	var buf strings.Builder
	m := NewHeadersModule(&buf)

	result, err := m.Run(context.Background(), crawl)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := result["found_headers"]; got != 3 {
		t.Errorf("found_headers = %v, want 3", got)
	}
	if got := result["missing_headers"]; got != 4 {
		t.Errorf("missing_headers = %v, want 4", got)
	}

	score, ok := result["security_score"].(float64)
	if !ok || score <= 0 || score >= 100 {
		t.Errorf("security_score = %v, want a partial score", result["security_score"])
	}

	report := buf.String()
	for _, want := range []string{
		"Security Headers Analysis",
		"X-Frame-Options",
		"max-age=31536000",
		"Missing Headers",
		"X-Content-Type-Options",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestHeadersModuleNoSignals(t *testing.T) {
	t.Parallel()

	m := NewHeadersModule(nil)
	result, err := m.Run(context.Background(), testCrawl())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := result["security_score"]; got != 0.0 {
		t.Errorf("security_score = %v, want 0", got)
	}
	if got := result["missing_headers"]; got != len(securityHeaders) {
		t.Errorf("missing_headers = %v, want %d", got, len(securityHeaders))
	}
}

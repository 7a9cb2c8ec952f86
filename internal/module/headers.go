package module

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/b3rt1ng/octocrawl/internal/model"
)

// securityHeader describes one HTTP response header checked by the headers
// module.
type securityHeader struct {
	key         string
	name        string
	description string
	severity    string

	// aliases are extra substrings recognized in technology signal
	// names, for signals whose display name does not carry the header
	// key (e.g. HSTS).
	aliases []string
}

// severity weights for the security score.
const (
	severityHigh   = "HIGH"
	severityMedium = "MEDIUM"
	severityLow    = "LOW"
)

var securityHeaders = []securityHeader{
	{"strict-transport-security", "HSTS (Strict-Transport-Security)", "Forces HTTPS connections", severityHigh, []string{"hsts"}},
	{"content-security-policy", "Content-Security-Policy", "Prevents XSS and injection attacks", severityHigh, nil},
	{"x-frame-options", "X-Frame-Options", "Prevents clickjacking", severityMedium, nil},
	{"x-content-type-options", "X-Content-Type-Options", "Prevents MIME sniffing", severityMedium, nil},
	{"referrer-policy", "Referrer-Policy", "Controls referrer information", severityLow, nil},
	{"permissions-policy", "Permissions-Policy", "Controls browser features", severityLow, nil},
	{"x-xss-protection", "X-XSS-Protection", "Legacy XSS protection", severityLow, nil},
}

func severityWeight(severity string) int {
	switch severity {
	case severityHigh:
		return 3
	case severityMedium:
		return 2
	default:
		return 1
	}
}

// HeadersModule scores the site's security-header posture from the
// technology signals gathered during the crawl. Detection is limited to
// headers the fingerprinting stage considered interesting, so absence in
// the crawl data is treated as absence on the site.
type HeadersModule struct {
	output io.Writer
}

// NewHeadersModule creates the headers module writing its report to the
// given writer.
func NewHeadersModule(output io.Writer) *HeadersModule {
	return &HeadersModule{output: output}
}

// Metadata implements Module.
func (m *HeadersModule) Metadata() Metadata {
	return Metadata{
		Name:        "headers",
		Version:     "1.0.0",
		Description: "Analyzes security headers and provides recommendations",
		Author:      "@b3rt1ng",
		Category:    "security",
	}
}

// Run implements Module.
func (m *HeadersModule) Run(_ context.Context, crawl *model.CrawlContext) (Result, error) {
	found := make(map[string]string)
	var missing []securityHeader

	for _, header := range securityHeaders {
		value, ok := findSignal(crawl.Technologies, append([]string{header.key}, header.aliases...))
		if ok {
			found[header.key] = value
		} else {
			missing = append(missing, header)
		}
	}

	maxScore, score := 0, 0
	for _, header := range securityHeaders {
		weight := severityWeight(header.severity)
		maxScore += weight
		if _, ok := found[header.key]; ok {
			score += weight
		}
	}
	securityScore := float64(score) / float64(maxScore) * 100

	if m.output != nil {
		if err := m.writeReport(crawl, found, missing, securityScore); err != nil {
			return nil, fmt.Errorf("write headers report: %w", err)
		}
	}

	return Result{
		"security_score":  securityScore,
		"found_headers":   len(found),
		"missing_headers": len(missing),
		"total_headers":   len(securityHeaders),
	}, nil
}

// findSignal looks the header up in the technology map; fingerprint
// signal names carry display decorations, so matching is a
// case-insensitive substring check over the key and its aliases.
func findSignal(technologies map[string]string, needles []string) (string, bool) {
	for _, name := range sortedKeys(technologies) {
		lower := strings.ToLower(name)
		for _, needle := range needles {
			if strings.Contains(lower, strings.ToLower(needle)) {
				return technologies[name], true
			}
		}
	}
	return "", false
}

func (m *HeadersModule) writeReport(crawl *model.CrawlContext, found map[string]string, missing []securityHeader, score float64) error {
	md := markdown.NewMarkdown(m.output)

	md.H1("Security Headers Analysis")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + crawl.StartURL + "`"},
			{"Security Score", fmt.Sprintf("%.1f%% (%s)", score, scoreStatus(score))},
			{"Present", fmt.Sprintf("%d/%d", len(found), len(securityHeaders))},
		},
	})
	md.PlainText("")

	md.H2("Present Headers")
	md.PlainText("")
	if len(found) == 0 {
		md.PlainText("No security headers detected.")
	} else {
		var rows [][]string
		for _, header := range securityHeaders {
			value, ok := found[header.key]
			if !ok {
				continue
			}
			rows = append(rows, []string{header.name, header.severity, "`" + value + "`"})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Header", "Severity", "Value"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.H2("Missing Headers")
	md.PlainText("")
	if len(missing) == 0 {
		md.PlainText("All recommended headers are present.")
	} else {
		sorted := append([]securityHeader(nil), missing...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return severityWeight(sorted[i].severity) > severityWeight(sorted[j].severity)
		})
		var rows [][]string
		for _, header := range sorted {
			rows = append(rows, []string{header.name, header.severity, header.description})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Header", "Severity", "Description"},
			Rows:   rows,
		})
	}

	return md.Build()
}

func scoreStatus(score float64) string {
	switch {
	case score > 70:
		return "GOOD"
	case score > 40:
		return "NEEDS IMPROVEMENT"
	default:
		return "CRITICAL"
	}
}

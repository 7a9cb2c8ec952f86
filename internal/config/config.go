package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultWorkers is the number of concurrent crawl workers. The crawl
	// is I/O bound, so this is deliberately much higher than the core
	// count; 80 matches typical throughput against a single origin without
	// exhausting local sockets.
	DefaultWorkers = 80

	// DefaultTimeout is the per-request timeout. Each fetch carries its
	// own timeout; a timed-out fetch is recorded as a failed page and
	// never retried.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodySize limits the response body size read per fetch.
	// 5MB is ample for HTML/JSON while preventing memory exhaustion from
	// unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultSitemapDepth bounds recursion through sitemap-index documents
	// that reference sub-sitemaps.
	DefaultSitemapDepth = 3

	// AppName is the application name used for XDG directory paths.
	AppName = "octocrawl"
)

// Config holds all configuration options for a crawl.
// This struct is populated from CLI flags and the optional YAML config file
// and passed through the application via dependency injection rather than
// global state.
type Config struct {
	// StartURL is the seed URL for the crawl.
	StartURL string

	// Workers is the number of concurrent crawl workers.
	Workers int

	// Timeout is the per-request timeout for each HTTP fetch.
	Timeout time.Duration

	// Cookies holds cookie name/value pairs sent with every request.
	Cookies map[string]string

	// Keywords are searched case-insensitively in every fetched page;
	// occurrence counts are recorded per page.
	Keywords []string

	// RandomAgent selects a random User-Agent from the built-in list for
	// each request. Mutually exclusive with UserAgent.
	RandomAgent bool

	// UserAgent is a fixed custom User-Agent header. Empty means the
	// default agent is used (unless RandomAgent is set).
	UserAgent string

	// IgnoreExtensions filters leaves with these extensions out of the
	// tree report. Mutually exclusive with DisplayExtensions.
	IgnoreExtensions []string

	// DisplayExtensions restricts the tree report to leaves with these
	// extensions. Mutually exclusive with IgnoreExtensions.
	DisplayExtensions []string

	// ShowFullURL displays full URLs instead of path segments in the
	// tree report.
	ShowFullURL bool

	// OutputFile saves the report to a file. Format is determined by
	// extension: .json, .md, or plain text.
	OutputFile string

	// JSONReport writes the JSON report to stdout instead of the tree.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes the Markdown report to stdout instead of the
	// tree. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// SeedPaths are additional paths enqueued alongside the start URL.
	SeedPaths []string

	// SkipRobots disables robots.txt and sitemap.xml discovery.
	SkipRobots bool

	// Modules lists post-crawl modules to run after the report.
	// The special value "all" enables every registered module.
	Modules []string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// Verbose enables debug-level logging.
	Verbose bool

	// ConfigFilePath is the path to the YAML configuration file. If
	// empty, the tool searches the current directory and the XDG config
	// directory.
	ConfigFilePath string

	// SiteConfigs holds per-site settings loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a Config with default values.
// Many defaults are non-zero, so we use a constructor rather than relying
// on zero values; it also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		Workers:     DefaultWorkers,
		Timeout:     DefaultTimeout,
		Cookies:     make(map[string]string),
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGConfigDir returns the XDG config directory for octocrawl.
// On Linux: ~/.config/octocrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for octocrawl.
// On Linux: ~/.cache/octocrawl
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before the crawl begins.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	if !strings.HasPrefix(c.StartURL, "http://") && !strings.HasPrefix(c.StartURL, "https://") {
		return ErrInvalidStartURL
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if len(c.IgnoreExtensions) > 0 && len(c.DisplayExtensions) > 0 {
		return ErrConflictingFilters
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.RandomAgent && c.UserAgent != "" {
		return ErrConflictingAgents
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// ParseCookies parses a "key1=val1;key2=val2" cookie string into a map.
// Empty segments are skipped; a segment without "=" is an error.
func ParseCookies(raw string) (map[string]string, error) {
	cookies := make(map[string]string)
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, ErrInvalidCookieFormat
		}
		cookies[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return cookies, nil
}

// NormalizeExtensions trims a comma-separated extension list and ensures
// each entry carries a leading dot (both "js" and ".js" are accepted).
func NormalizeExtensions(raw string) []string {
	var exts []string
	for _, ext := range strings.Split(raw, ",") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, strings.ToLower(ext))
	}
	return exts
}

// SplitList trims a comma-separated list into its non-empty entries.
func SplitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

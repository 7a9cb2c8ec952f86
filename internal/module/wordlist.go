package module

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/b3rt1ng/octocrawl/internal/model"
)

// WordlistModule extracts fuzzing wordlists from the crawled URL space:
// path segments split into directories, filenames, and extensions, plus
// query parameter names. Each non-empty category is written as one
// newline-delimited file in the output directory.
type WordlistModule struct {
	outputDir string
}

// NewWordlistModule creates the wordlist module writing its files under
// the given directory.
func NewWordlistModule(outputDir string) *WordlistModule {
	return &WordlistModule{outputDir: outputDir}
}

// Metadata implements Module.
func (m *WordlistModule) Metadata() Metadata {
	return Metadata{
		Name:        "wordlist",
		Version:     "1.0.0",
		Description: "Generates wordlists from discovered paths and parameters",
		Author:      "@b3rt1ng",
		Category:    "security",
	}
}

// Run implements Module.
func (m *WordlistModule) Run(_ context.Context, crawl *model.CrawlContext) (Result, error) {
	categories := map[string]map[string]struct{}{
		"paths":       {},
		"parameters":  {},
		"filenames":   {},
		"extensions":  {},
		"directories": {},
	}

	for rawURL := range crawl.Pages {
		u, err := url.Parse(rawURL)
		if err != nil {
			continue
		}

		for _, part := range strings.Split(u.Path, "/") {
			if part == "" {
				continue
			}
			categories["paths"][part] = struct{}{}
			if idx := strings.LastIndex(part, "."); idx > 0 {
				categories["filenames"][part] = struct{}{}
				categories["extensions"][part[idx+1:]] = struct{}{}
			} else {
				categories["directories"][part] = struct{}{}
			}
		}

		if values, err := url.ParseQuery(u.RawQuery); err == nil {
			for param := range values {
				categories["parameters"][param] = struct{}{}
			}
		}
	}

	combined := make(map[string]struct{})
	written := make(map[string]string)
	breakdown := make(map[string]int)

	for _, name := range sortedKeys(categories) {
		words := categories[name]
		breakdown[name] = len(words)
		for w := range words {
			combined[w] = struct{}{}
		}
		if len(words) == 0 {
			continue
		}
		path, err := m.writeList(fmt.Sprintf("wordlist_%s_%s.txt", name, crawl.Domain), words)
		if err != nil {
			return nil, err
		}
		written[name] = path
	}

	if len(combined) > 0 {
		path, err := m.writeList(fmt.Sprintf("wordlist_combined_%s.txt", crawl.Domain), combined)
		if err != nil {
			return nil, err
		}
		written["combined"] = path
	}

	return Result{
		"total_words":  len(combined),
		"breakdown":    breakdown,
		"output_files": written,
	}, nil
}

// writeList writes one sorted wordlist file and returns its path.
func (m *WordlistModule) writeList(filename string, words map[string]struct{}) (string, error) {
	sorted := make([]string, 0, len(words))
	for w := range words {
		sorted = append(sorted, w)
	}
	sort.Strings(sorted)

	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create wordlist directory: %w", err)
	}
	path := filepath.Join(m.outputDir, sanitizeFilename(filename))
	if err := os.WriteFile(path, []byte(strings.Join(sorted, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write wordlist %s: %w", path, err)
	}
	return path, nil
}

// sanitizeFilename keeps domain-derived filenames portable; a host with a
// port would otherwise embed a colon.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\':
			return '_'
		default:
			return r
		}
	}, name)
}

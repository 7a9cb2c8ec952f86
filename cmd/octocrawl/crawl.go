package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/b3rt1ng/octocrawl/internal/config"
	"github.com/b3rt1ng/octocrawl/internal/crawler"
	"github.com/b3rt1ng/octocrawl/internal/fetch"
	"github.com/b3rt1ng/octocrawl/internal/log"
	"github.com/b3rt1ng/octocrawl/internal/model"
	"github.com/b3rt1ng/octocrawl/internal/module"
	"github.com/b3rt1ng/octocrawl/internal/report"
	"github.com/b3rt1ng/octocrawl/internal/robots"
)

// moduleOutputDir is where post-crawl modules write their artifacts.
const moduleOutputDir = "octocrawl_modules"

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website and build its sitemap tree",
		Long: `Crawl maps a website's URL space starting from the given URL.

It follows same-host links found in HTML, directory listings, and JSON
responses, re-probes directory URLs implied by the discovered paths, and
renders the result as a tree, JSON, or Markdown report.

Examples:
  # Crawl with defaults
  octocrawl crawl https://example.com

  # More workers, custom keywords highlighted in the tree
  octocrawl crawl -w 120 -k admin,login https://example.com

  # Save a JSON report and skip robots.txt discovery
  octocrawl crawl --no-robots -o report.json https://example.com

  # Run post-crawl modules
  octocrawl crawl --modules headers,wordlist https://example.com

Configuration file (.octocrawl) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      seeds:
        - /hidden/
      keywords:
        - admin`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent crawl workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().String("cookies", "",
		`Cookies sent with every request ("key1=val1;key2=val2")`)
	cmd.Flags().StringP("keywords", "k", "",
		"Comma-separated keywords counted in every fetched page")
	cmd.Flags().String("seed", "",
		"Comma-separated extra paths enqueued alongside the start URL")
	cmd.Flags().Bool("no-robots", false,
		"Skip robots.txt and sitemap discovery")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")

	// User-Agent flags
	cmd.Flags().Bool("random-agent", false,
		"Use a random browser User-Agent per request (mutually exclusive with --user-agent)")
	cmd.Flags().String("user-agent", "",
		"Custom User-Agent header (mutually exclusive with --random-agent)")

	// Report flags
	cmd.Flags().StringP("ignore", "i", "",
		"Extensions hidden from the tree report, comma-separated (e.g. .jpg,.png)")
	cmd.Flags().StringP("display", "d", "",
		"Extensions shown exclusively in the tree report, comma-separated (e.g. js,html)")
	cmd.Flags().Bool("fullpath", false,
		"Display full URLs instead of path segments in the tree")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file (.json and .md select the format)")
	cmd.Flags().Bool("json", false,
		"Output JSON report to stdout (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false,
		"Output Markdown report to stdout (mutually exclusive with --json)")

	// Modules and configuration
	cmd.Flags().StringP("modules", "m", "",
		`Post-crawl modules to run, comma-separated ("all" runs every module)`)
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .octocrawl in current or XDG config directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Warn("received shutdown signal, finishing with partial results...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.StartURL = strings.TrimSpace(args[0])

	var err error
	flags := cmd.Flags()

	if cfg.Workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}

	rawCookies, err := flags.GetString("cookies")
	if err != nil {
		return nil, err
	}
	if rawCookies != "" {
		if cfg.Cookies, err = config.ParseCookies(rawCookies); err != nil {
			return nil, err
		}
	}

	keywords, err := flags.GetString("keywords")
	if err != nil {
		return nil, err
	}
	cfg.Keywords = config.SplitList(keywords)

	seeds, err := flags.GetString("seed")
	if err != nil {
		return nil, err
	}
	cfg.SeedPaths = config.SplitList(seeds)

	if cfg.SkipRobots, err = flags.GetBool("no-robots"); err != nil {
		return nil, err
	}
	if cfg.RandomAgent, err = flags.GetBool("random-agent"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}

	ignore, err := flags.GetString("ignore")
	if err != nil {
		return nil, err
	}
	cfg.IgnoreExtensions = config.NormalizeExtensions(ignore)

	display, err := flags.GetString("display")
	if err != nil {
		return nil, err
	}
	cfg.DisplayExtensions = config.NormalizeExtensions(display)

	if cfg.ShowFullURL, err = flags.GetBool("fullpath"); err != nil {
		return nil, err
	}
	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}

	modules, err := flags.GetString("modules")
	if err != nil {
		return nil, err
	}
	cfg.Modules = config.SplitList(modules)

	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		cfg.SiteConfigs = file
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("config file %s: %w", cfg.ConfigFilePath, config.ErrConfigNotFound)
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// applySiteConfig fills unset config fields from the site section of the
// configuration file. CLI flags always win over file settings.
func applySiteConfig(cfg *config.Config, logger *slog.Logger) (extraHeaders map[string]string) {
	site := cfg.SiteConfigs.SiteFor(hostOf(cfg.StartURL))

	if len(cfg.Cookies) == 0 && site.Cookie != "" {
		cookies, err := config.ParseCookies(site.Cookie)
		if err != nil {
			logger.Warn("ignoring malformed cookie in config file", "error", err)
		} else {
			cfg.Cookies = cookies
		}
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = site.Keywords
	}
	if len(cfg.SeedPaths) == 0 {
		cfg.SeedPaths = site.Seeds
	}
	if cfg.UserAgent == "" && !cfg.RandomAgent {
		cfg.UserAgent = site.UserAgent
	}
	return site.Headers
}

// hostOf returns the host portion of a URL, or the URL itself when it does
// not parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// runCrawl assembles the crawl from the configuration, runs it, and writes
// the reports.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	headers := applySiteConfig(cfg, logger)

	var agent fetch.AgentPolicy = fetch.FixedAgent(fetch.DefaultUserAgent)
	switch {
	case cfg.RandomAgent:
		agent = fetch.NewRandomAgent(nil, time.Now().UnixNano())
	case cfg.UserAgent != "":
		agent = fetch.FixedAgent(cfg.UserAgent)
	}

	client := fetch.New(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithCookies(cfg.Cookies),
		fetch.WithHeaders(headers),
		fetch.WithAgentPolicy(agent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)

	seeds := resolveSeeds(cfg.StartURL, cfg.SeedPaths)
	if !cfg.SkipRobots {
		seeds = append(seeds, discoverSeeds(ctx, client, cfg, agent.UserAgent(), logger)...)
	}

	engine := crawler.NewEngine(client,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithKeywords(cfg.Keywords),
		crawler.WithLogger(logger),
	)

	result, err := engine.Run(ctx, cfg.StartURL, seeds...)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	partial := err != nil

	if err := writeReports(cfg, result, stdout); err != nil {
		return err
	}
	if partial {
		logger.Warn("crawl interrupted; report contains partial results")
	}

	if len(cfg.Modules) > 0 {
		if err := runModules(ctx, cfg, result, logger); err != nil {
			return err
		}
	}
	return nil
}

// resolveSeeds turns configured seed paths into absolute URLs on the
// start URL's host.
func resolveSeeds(startURL string, paths []string) []string {
	base, err := url.Parse(startURL)
	if err != nil {
		return nil
	}

	seeds := make([]string, 0, len(paths))
	for _, p := range paths {
		ref, err := url.Parse(p)
		if err != nil {
			continue
		}
		seeds = append(seeds, base.ResolveReference(ref).String())
	}
	return seeds
}

// discoverSeeds gathers extra seed URLs from robots.txt and sitemaps.
func discoverSeeds(ctx context.Context, fetcher robots.Fetcher, cfg *config.Config, userAgent string, logger *slog.Logger) []string {
	var seeds []string

	info := robots.FetchInfo(ctx, fetcher, cfg.StartURL, userAgent)
	if info.Found {
		logger.Info("parsed robots.txt",
			"disallowed", len(info.DisallowedPaths),
			"allowed", len(info.AllowedPaths),
			"sitemaps", len(info.Sitemaps))
		seeds = append(seeds, info.AllowedPaths...)
		if info.CrawlDelay > 0 {
			logger.Warn("site requests a crawl delay; workers do not throttle",
				"crawl_delay", info.CrawlDelay)
		}
	}

	sitemaps := info.Sitemaps
	if len(sitemaps) == 0 {
		sitemaps = robots.DiscoverSitemaps(ctx, fetcher, cfg.StartURL)
	}
	if len(sitemaps) > 0 {
		urls := robots.ResolveAll(ctx, fetcher, sitemaps, hostOf(cfg.StartURL))
		logger.Info("resolved sitemaps", "sitemaps", len(sitemaps), "urls", len(urls))
		seeds = append(seeds, urls...)
	}
	return seeds
}

// writeReports renders the crawl result to stdout and the optional output
// file.
func writeReports(cfg *config.Config, result *model.CrawlContext, stdout io.Writer) error {
	writers := []report.Writer{stdoutWriter(cfg, stdout)}

	if cfg.OutputFile != "" {
		if dir := filepath.Dir(cfg.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create report directory: %w", err)
			}
		}
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		writers = append(writers, fileWriter(cfg.OutputFile, f))
	}

	if _, err := report.NewMultiWriter(writers...).Write(result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// stdoutWriter selects the stdout report format from the flags.
func stdoutWriter(cfg *config.Config, stdout io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(stdout)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(stdout)
	default:
		return report.NewTreeWriter(stdout,
			report.WithFullURL(cfg.ShowFullURL),
			report.WithIgnoreExtensions(cfg.IgnoreExtensions),
			report.WithDisplayExtensions(cfg.DisplayExtensions),
		)
	}
}

// fileWriter selects the file report format from the file extension.
func fileWriter(path string, f io.Writer) report.Writer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return report.NewJSONWriter(f)
	case ".md":
		return report.NewMarkdownWriter(f)
	default:
		return report.NewTreeWriter(f)
	}
}

// runModules executes the selected post-crawl modules.
func runModules(ctx context.Context, cfg *config.Config, result *model.CrawlContext, logger *slog.Logger) error {
	if err := os.MkdirAll(moduleOutputDir, 0o755); err != nil {
		return fmt.Errorf("create module output directory: %w", err)
	}

	selected := make(map[string]bool, len(cfg.Modules))
	for _, name := range cfg.Modules {
		selected[name] = true
	}

	var headersOut io.Writer
	if selected["headers"] || selected["all"] {
		headersFile, err := os.Create(filepath.Join(moduleOutputDir,
			"security_headers_"+sanitizeHost(result.Domain)+".md"))
		if err != nil {
			return fmt.Errorf("create headers report file: %w", err)
		}
		defer headersFile.Close()
		headersOut = headersFile
	}

	registry := module.NewRegistry(module.WithLogger(logger))
	registry.Register(module.NewHeadersModule(headersOut))
	registry.Register(module.NewWordlistModule(moduleOutputDir))

	names := cfg.Modules
	if selected["all"] {
		names = registry.Names()
	}

	results, err := registry.Run(ctx, names, result)
	if err != nil {
		return err
	}
	for name, res := range results {
		logger.Info("module finished", "module", name, "results", len(res))
	}
	return nil
}

// sanitizeHost makes a host usable in filenames; a host with a port would
// otherwise embed a colon.
func sanitizeHost(host string) string {
	return strings.ReplaceAll(host, ":", "_")
}

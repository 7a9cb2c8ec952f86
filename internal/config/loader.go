package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".octocrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the top-level structure of the YAML configuration file.
type File struct {
	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults"`

	// Sites maps a host name to its site-specific configuration.
	Sites map[string]SiteConfig `yaml:"sites"`
}

// SiteConfig holds per-site crawl settings.
type SiteConfig struct {
	// Cookie is a "key1=val1;key2=val2" cookie string sent with requests.
	Cookie string `yaml:"cookie"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers"`

	// Seeds are additional paths enqueued alongside the start URL.
	Seeds []string `yaml:"seeds"`

	// Keywords are searched in every fetched page.
	Keywords []string `yaml:"keywords"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"user_agent"`
}

// LoadConfigFile loads site configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this based on whether the path was explicitly specified.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in order:
// 1. the explicit path, if given
// 2. .octocrawl in the current directory
// 3. .octocrawl in the XDG config directory
//
// Returns the path if found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}
	return ""
}

// SiteFor returns the merged configuration for a host: file defaults with
// site-specific values overriding them. The host is matched with and
// without a scheme prefix.
func (f *File) SiteFor(host string) SiteConfig {
	if f == nil {
		return SiteConfig{}
	}

	if site, ok := f.Sites[host]; ok {
		return mergeSiteConfig(f.Defaults, site)
	}

	clean := host
	for _, prefix := range []string{"http://", "https://"} {
		clean = strings.TrimPrefix(clean, prefix)
	}
	if site, ok := f.Sites[clean]; ok {
		return mergeSiteConfig(f.Defaults, site)
	}
	return f.Defaults
}

// mergeSiteConfig merges defaults with site-specific overrides.
func mergeSiteConfig(defaults, override SiteConfig) SiteConfig {
	result := defaults

	if override.Cookie != "" {
		result.Cookie = override.Cookie
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if len(override.Seeds) > 0 {
		result.Seeds = override.Seeds
	}
	if len(override.Keywords) > 0 {
		result.Keywords = override.Keywords
	}
	if len(override.Headers) > 0 {
		// Copy before overlaying so the shared defaults stay untouched.
		merged := make(map[string]string, len(defaults.Headers)+len(override.Headers))
		for k, v := range defaults.Headers {
			merged[k] = v
		}
		for k, v := range override.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}
	return result
}

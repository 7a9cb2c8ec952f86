// Package config provides configuration management for octocrawl.
//
// Configuration is assembled from CLI flags plus an optional YAML file
// (.octocrawl, searched in the current directory and the XDG config
// directory). The resulting Config struct is passed through the
// application via dependency injection rather than global state.
package config

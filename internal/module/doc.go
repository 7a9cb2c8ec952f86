// Package module runs pluggable post-crawl analyses over the aggregate
// crawl result. Modules are registered by name, selected on the command
// line, and executed in sequence with per-module fault containment so one
// failing analysis never blocks the rest.
package module

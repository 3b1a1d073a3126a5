// Package formatting renders conductor configurations for the inspect command
// in one of several output formats (table, JSON, YAML).
package formatting

import (
	"fmt"
	"io"

	"conductorsync/internal/conductor"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Formats lists the accepted output formats.
var Formats = []OutputFormat{FormatTable, FormatJSON, FormatYAML}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored table headers
}

// Formatter writes a configuration to w.
type Formatter interface {
	FormatConfiguration(w io.Writer, cfg *conductor.Configuration) error
}

// ParseFormat validates a user supplied format name.
func ParseFormat(raw string) (OutputFormat, error) {
	for _, f := range Formats {
		if string(f) == raw {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", raw)
}

// NewFormatter creates the appropriate formatter based on options
func NewFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatTable:
		fallthrough
	default:
		return &TableFormatter{options: options}
	}
}

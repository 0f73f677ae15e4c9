package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON output.
	FormatJSON OutputFormat = "json"
	// FormatPrometheus is the Prometheus text exposition format.
	FormatPrometheus OutputFormat = "prometheus"
)

// ParseOutputFormat parses a format name. Empty means FormatPrometheus.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatPrometheus, "":
		return FormatPrometheus, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", NewConfigError("format", fmt.Sprintf("unknown output format %q (want prometheus, json or text)", s))
	}
}

// Field is one labelled line of text output.
type Field struct {
	Name  string
	Value string
}

// Section is a titled group of fields.
type Section struct {
	Title  string
	Fields []Field
}

// WriteSections writes sections as aligned "name: value" lines, one blank
// line between sections.
func WriteSections(w io.Writer, sections []Section) error {
	width := 0
	for _, s := range sections {
		for _, f := range s.Fields {
			if len(f.Name) > width {
				width = len(f.Name)
			}
		}
	}

	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n", s.Title); err != nil {
			return err
		}
		for _, f := range s.Fields {
			if _, err := fmt.Fprintf(w, "  %-*s  %s\n", width+1, f.Name+":", f.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteJSON writes data as indented JSON followed by a newline.
func WriteJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

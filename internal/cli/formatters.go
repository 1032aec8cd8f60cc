package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// OutputFormat is a value of the --output flag
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// TableFormatter aligns service listings into columns under a ruled header
type TableFormatter struct {
	tw *tabwriter.Writer
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// Header writes the column names and a rule underneath them
func (t *TableFormatter) Header(columns ...string) {
	rules := make([]string, len(columns))
	for i, c := range columns {
		rules[i] = strings.Repeat("-", len([]rune(c)))
	}
	t.Row(columns...)
	t.Row(rules...)
}

func (t *TableFormatter) Row(values ...string) {
	fmt.Fprintln(t.tw, strings.Join(values, "\t"))
}

// Flush aligns and writes everything buffered so far
func (t *TableFormatter) Flush() {
	t.tw.Flush()
}

// OutputResults writes data as json or yaml. Text falls back to %v; commands
// render their own tables for text output.
func OutputResults(w io.Writer, format string, data interface{}) error {
	switch OutputFormat(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// TruncateString shortens s to at most maxLen runes, ending in "…" when cut
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// GroupDigits splits a code in half for readability, "123456" becomes "123 456"
func GroupDigits(code string) string {
	if len(code) < 6 {
		return code
	}
	mid := len(code) / 2
	return code[:mid] + " " + code[mid:]
}

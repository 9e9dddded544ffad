// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects how results are rendered
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --output flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", s)
	}
}

// Table is the tabular rendering of a result
type Table struct {
	Header []string
	Rows   [][]string
}

// Printer writes results in the selected format
type Printer struct {
	out    io.Writer
	format Format
}

// New creates a printer
func New(out io.Writer, format Format) *Printer {
	return &Printer{out: out, format: format}
}

// Format returns the selected format
func (p *Printer) Format() Format {
	return p.format
}

// Print renders v. In table mode table is called to build the rows; a nil
// table prints v as YAML.
func (p *Printer) Print(v any, table func() Table) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		return p.yaml(v)
	}

	if table == nil {
		return p.yaml(v)
	}
	return p.table(table())
}

// Successf prints a confirmation line. Machine formats stay silent.
func (p *Printer) Successf(format string, args ...any) {
	if p.format != FormatTable {
		return
	}
	fmt.Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Infof prints an informational line in table mode
func (p *Printer) Infof(format string, args ...any) {
	if p.format != FormatTable {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) yaml(v any) error {
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (p *Printer) table(t Table) error {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)

	if len(t.Header) > 0 {
		fmt.Fprintln(w, strings.Join(t.Header, "\t"))
		rules := make([]string, len(t.Header))
		for i, h := range t.Header {
			rules[i] = strings.Repeat("─", len([]rune(h)))
		}
		fmt.Fprintln(w, strings.Join(rules, "\t"))
	}

	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}

// KeyValues builds a two column table from alternating keys and values
func KeyValues(pairs ...string) Table {
	t := Table{}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Rows = append(t.Rows, []string{pairs[i] + ":", pairs[i+1]})
	}
	return t
}

// Package output renders API responses as JSON, aligned tables or CSV.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

type Format string

const (
	JSON  Format = "json"
	Table Format = "table"
	CSV   Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, Table, CSV:
		return f, nil
	}
	return "", fmt.Errorf("invalid output format %q: must be 'json', 'table' or 'csv'", s)
}

type Printer struct {
	w       io.Writer
	format  Format
	columns []string
	pretty  bool
}

// New returns a Printer for w. JSON is indented when w is a terminal.
func New(w io.Writer, format Format, columns []string) *Printer {
	return &Printer{
		w:       w,
		format:  format,
		columns: columns,
		pretty:  isTerminal(w),
	}
}

// SetPretty forces indented JSON on or off.
func (p *Printer) SetPretty(pretty bool) *Printer {
	p.pretty = pretty
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *Printer) Print(body json.RawMessage) error {
	switch p.format {
	case JSON, "":
		return p.printJSON(body)
	case Table:
		return p.printTable(body)
	case CSV:
		return p.printCSV(body)
	}
	return fmt.Errorf("unsupported output format %q", p.format)
}

func (p *Printer) printJSON(body json.RawMessage) error {
	var buf bytes.Buffer
	var err error
	if p.pretty {
		err = json.Indent(&buf, body, "", "  ")
	} else {
		err = json.Compact(&buf, body)
	}
	if err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	buf.WriteByte('\n')
	_, err = p.w.Write(buf.Bytes())
	return err
}

func (p *Printer) printTable(body json.RawMessage) error {
	rows, err := extractRows(body)
	if err != nil {
		return err
	}
	columns := p.columnsFor(rows)

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(upper(columns), "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = formatCell(col, row[col], true)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (p *Printer) printCSV(body json.RawMessage) error {
	rows, err := extractRows(body)
	if err != nil {
		return err
	}
	columns := p.columnsFor(rows)

	cw := csv.NewWriter(p.w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = formatCell(col, row[col], false)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// columnsFor keeps the configured columns that appear in at least one row,
// falling back to every key when none do.
func (p *Printer) columnsFor(rows []map[string]any) []string {
	present := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			present[k] = true
		}
	}

	var cols []string
	for _, c := range p.columns {
		if present[c] {
			cols = append(cols, c)
		}
	}
	if len(cols) > 0 {
		return cols
	}

	for k := range present {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func upper(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ToUpper(c)
	}
	return out
}

// extractRows pulls the list of records out of a response: the results
// array, results.values for indicators, a single results object, a top-level
// array, or the body itself.
func extractRows(body json.RawMessage) ([]map[string]any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if obj, ok := v.(map[string]any); ok {
		if results, ok := obj["results"]; ok && results != nil {
			v = results
			if inner, ok := results.(map[string]any); ok {
				if values, ok := inner["values"].([]any); ok {
					v = values
				}
			}
		}
	}

	switch t := v.(type) {
	case []any:
		rows := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
			} else {
				rows = append(rows, map[string]any{"value": item})
			}
		}
		return rows, nil
	case map[string]any:
		return []map[string]any{t}, nil
	default:
		return []map[string]any{{"value": t}}, nil
	}
}

func formatCell(column string, v any, human bool) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		if human && !isTimeColumn(column) {
			if n, err := t.Int64(); err == nil && (n >= 10000 || n <= -10000) {
				return humanize.Comma(n)
			}
		}
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		scalar := true
		for _, item := range t {
			switch item.(type) {
			case map[string]any, []any:
				scalar = false
			}
			parts = append(parts, formatCell(column, item, false))
		}
		if scalar {
			return strings.Join(parts, ",")
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func isTimeColumn(column string) bool {
	c := strings.ToLower(column)
	return c == "t" || c == "updated" || strings.Contains(c, "timestamp") || strings.Contains(c, "time")
}

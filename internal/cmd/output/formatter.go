// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/bidcompare/internal/cmd/table"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatWide is the table format with supplementary tables.
	FormatWide Format = "wide"
)

// IsTable reports whether f renders as a table.
func (f Format) IsTable() bool {
	return f == FormatTable || f == FormatWide || f == ""
}

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, any) error

// Format implements the Formatter interface.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter returns the formatter for format. Table formats share one
// formatter; unknown formats render as a table.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return FormatterFunc(writeJSON)
	case FormatYAML:
		return FormatterFunc(writeYAML)
	default:
		return FormatterFunc(writeTable)
	}
}

// Data represents data formatted for table output.
type Data = table.Data

// Write renders a command result. Table formats print rows when it has
// headers and tabulate raw otherwise; JSON and YAML always encode raw.
func Write(w io.Writer, format Format, rows Data, raw any) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, raw)
	}
	if len(rows.Headers) == 0 && raw != nil {
		return writeTable(w, raw)
	}
	return writeTable(w, rows)
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeYAML(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// writeTable renders Data directly and anything else through Tabulate,
// falling back to JSON for values that have no tabular shape.
func writeTable(w io.Writer, data any) error {
	if d, ok := data.(Data); ok {
		return render(w, d)
	}
	if d, ok := Tabulate(data); ok {
		return render(w, d)
	}
	return writeJSON(w, data)
}

func render(w io.Writer, data Data) error {
	config := tablewriter.Config{}
	if len(data.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			switch a {
			case table.AlignLeft:
				align[i] = tw.AlignLeft
			case table.AlignCenter:
				align[i] = tw.AlignCenter
			case table.AlignRight:
				align[i] = tw.AlignRight
			default:
				align[i] = tw.Skip
			}
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	t := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		t.Header(headers...)
	}
	for _, row := range data.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := t.Append(cells...); err != nil {
			return err
		}
	}
	return t.Render()
}

// Tabulate turns a struct, or a slice of structs, into table rows. A slice
// becomes one row per element; a single struct becomes Property/Value rows.
// Column names come from the `table` tag, then the json tag title-cased,
// then the field name. Fields tagged `table:"-"` are skipped, and numeric
// columns are right-aligned.
func Tabulate(v any) (Data, bool) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return Data{}, false
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		et := rv.Type().Elem()
		if et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		if et.Kind() != reflect.Struct {
			return Data{}, false
		}
		cols := columnsOf(et)
		d := Data{Headers: make([]string, len(cols)), ColumnAlignment: make([]table.Align, len(cols))}
		for i, c := range cols {
			d.Headers[i] = c.name
			d.ColumnAlignment[i] = c.align
		}
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			row := make([]string, len(cols))
			if elem.IsValid() {
				for j, c := range cols {
					row[j] = cell(elem.Field(c.index))
				}
			}
			d.Rows = append(d.Rows, row)
		}
		return d, true

	case reflect.Struct:
		d := Data{Headers: []string{"Property", "Value"}}
		for _, c := range columnsOf(rv.Type()) {
			d.Rows = append(d.Rows, []string{c.name, cell(rv.Field(c.index))})
		}
		return d, true
	}

	return Data{}, false
}

type column struct {
	index int
	name  string
	align table.Align
}

var titler = cases.Title(language.English)

func columnsOf(t reflect.Type) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name
		if tag := f.Tag.Get("table"); tag != "" {
			if tag == "-" {
				continue
			}
			name = tag
		} else if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = titler.String(strings.ReplaceAll(tag, "_", " "))
		}

		align := table.AlignLeft
		switch f.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			align = table.AlignRight
		}
		cols = append(cols, column{index: i, name: name, align: align})
	}
	return cols
}

// cell renders one value. Slices show their length, durations are rounded.
func cell(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if d, ok := v.Interface().(time.Duration); ok {
		return d.Round(time.Millisecond).String()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		if v.Len() == 0 {
			return ""
		}
		return fmt.Sprintf("%d", v.Len())
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return ""
		}
		return cell(v.Elem())
	}
	return fmt.Sprint(v.Interface())
}

// DetectFormat auto-detects format based on terminal and environment.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}

	// Tables for people, JSON for pipes and redirects
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatWide, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml, wide", s)
	}
}

package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Table is tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow adds a row. Empty cells render as "-".
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(cells))
	for i, c := range cells {
		if c == "" {
			c = "-"
		}
		row[i] = c
	}
	t.Rows = append(t.Rows, row)
}

// Records returns the rows as header-keyed maps, for JSON and YAML.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				rec[strings.ToLower(h)] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Render writes the table with aligned columns.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// TableFormatter renders tables; other values become FIELD/VALUE rows
// with nested keys joined by dots.
type TableFormatter struct {
	NoHeaders bool
}

func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	t, ok := data.(*Table)
	if !ok {
		v, err := generic(data)
		if err != nil {
			return err
		}
		t = NewTable("FIELD", "VALUE")
		flatten("", v, t)
	}
	if f.NoHeaders {
		t = &Table{Rows: t.Rows}
	}
	return t.Render(w)
}

func flatten(prefix string, v any, t *Table) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			name := k
			if prefix != "" {
				name = prefix + "." + k
			}
			flatten(name, val[k], t)
		}
	case []any:
		if len(val) == 0 {
			t.AddRow(prefix, "")
			return
		}
		for i, item := range val {
			flatten(prefix+"["+strconv.Itoa(i)+"]", item, t)
		}
	default:
		t.AddRow(prefix, Value(val))
	}
}

// Value formats a scalar for a table cell.
func Value(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return Time(val)
	default:
		return fmt.Sprint(val)
	}
}

// Time formats a timestamp for a table cell; the zero time is empty.
func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// ShortID truncates long identifiers for narrow columns.
func ShortID(id string) string {
	if len(id) <= 20 {
		return id
	}
	return id[:17] + "..."
}

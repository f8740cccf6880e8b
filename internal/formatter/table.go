// Package formatter renders command output: go-pretty tables for humans and
// JSON or YAML documents for machines.
package formatter

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls how a Table renders.
type Mode int

const (
	ASCII    Mode = iota // Box-drawn terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// Table buffers rows and renders them through go-pretty.
type Table struct {
	w        io.Writer
	writer   table.Writer
	mode     Mode
	headers  int
	rows     int
	maxWidth map[int]int // column index -> max width (0 = unlimited)
}

// NewTable creates an ASCII table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)

	return &Table{
		w:        w,
		writer:   tw,
		headers:  len(headers),
		maxWidth: make(map[int]int),
	}
}

// SetMode switches between ASCII and Markdown rendering.
func (t *Table) SetMode(m Mode) *Table {
	t.mode = m
	return t
}

// SetMaxWidth sets the maximum display width for a column (0-indexed).
// Values exceeding the limit are truncated with "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AlignRight right-aligns a column (0-indexed), for numbers.
func (t *Table) AlignRight(cols ...int) *Table {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c + 1, Align: text.AlignRight}
	}
	t.writer.SetColumnConfigs(cfgs)
	return t
}

// AddRow appends a data row. Extra values beyond the header count are ignored;
// missing values are filled with empty strings.
func (t *Table) AddRow(values ...any) {
	row := make(table.Row, t.headers)
	for i := range row {
		if i < len(values) {
			row[i] = t.truncate(i, fmt.Sprint(values[i]))
		} else {
			row[i] = ""
		}
	}
	t.writer.AppendRow(row)
	t.rows++
}

// Footer appends a footer row, e.g. totals.
func (t *Table) Footer(values ...any) {
	row := make(table.Row, len(values))
	copy(row, values)
	t.writer.AppendFooter(row)
}

// Render writes the table. A table without rows writes nothing.
func (t *Table) Render() error {
	if t.rows == 0 {
		return nil
	}
	var out string
	switch t.mode {
	case Markdown:
		out = t.writer.RenderMarkdown()
	default:
		out = t.writer.Render()
	}
	_, err := fmt.Fprintln(t.w, out)
	return err
}

func (t *Table) truncate(col int, s string) string {
	max, ok := t.maxWidth[col]
	if !ok || max <= 0 {
		return s
	}
	return Truncate(s, max)
}

// Truncate shortens s to max runes, appending "..." when there is room for it.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

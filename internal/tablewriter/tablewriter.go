// Package tablewriter renders plain ASCII tables for CLI output.
package tablewriter

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Writer accumulates rows and renders them as an ASCII table with a
// border around the header and body.
type Writer struct {
	out     io.Writer
	headers []string
	rows    [][]string
	widths  []int
	columns int
}

// NewWriter creates a table writer that renders to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

// SetHeader sets the column headers and fixes the column count.
func (t *Writer) SetHeader(headers []string) {
	t.headers = headers
	t.columns = len(headers)
	t.grow(headers)
}

// Append adds one row. Cells beyond the header column count are
// dropped; short rows are padded with empty cells at render time.
func (t *Writer) Append(row []string) {
	t.rows = append(t.rows, row)
	t.grow(row)
}

// Render writes the table. An empty table renders nothing.
func (t *Writer) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}
	t.writeBorder()
	if len(t.headers) > 0 {
		t.writeRow(t.headers)
		t.writeBorder()
	}
	for _, row := range t.rows {
		t.writeRow(row)
	}
	t.writeBorder()
}

func (t *Writer) grow(row []string) {
	limit := len(row)
	if t.columns > 0 && limit > t.columns {
		limit = t.columns
	}
	for i := 0; i < limit; i++ {
		if i >= len(t.widths) {
			t.widths = append(t.widths, 0)
		}
		if width := cellWidth(row[i]); width > t.widths[i] {
			t.widths[i] = width
		}
	}
	if t.columns == 0 && len(t.widths) > t.columns {
		t.columns = len(t.widths)
	}
}

func (t *Writer) writeBorder() {
	fmt.Fprint(t.out, "+")
	for _, width := range t.widths {
		fmt.Fprint(t.out, strings.Repeat("-", width+2), "+")
	}
	fmt.Fprintln(t.out)
}

func (t *Writer) writeRow(row []string) {
	fmt.Fprint(t.out, "|")
	for i, width := range t.widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		padding := width - cellWidth(cell)
		if padding < 0 {
			padding = 0
		}
		fmt.Fprintf(t.out, " %s%s |", cell, strings.Repeat(" ", padding))
	}
	fmt.Fprintln(t.out)
}

// cellWidth is the display width of a cell: ANSI color codes are
// stripped and wide runes count as two columns.
func cellWidth(s string) int {
	return runewidth.StringWidth(ansiRegex.ReplaceAllString(s, ""))
}

// Package csvexport writes CSV documents in which every field is quoted.
//
// Rules: each field is wrapped in double quotes, embedded double quotes are
// doubled, a nil field is written as an empty (unquoted) field, and lines are
// separated by "\n" with no trailing newline. encoding/csv only quotes fields
// that need it, so it cannot produce this shape.
package csvexport

import (
	"bufio"
	"io"
	"strings"
)

// Quote renders a single field. A nil value becomes the empty string.
func Quote(v *string) string {
	if v == nil {
		return ""
	}
	return `"` + strings.ReplaceAll(*v, `"`, `""`) + `"`
}

// Writer emits lines to an underlying io.Writer.
type Writer struct {
	w     *bufio.Writer
	lines int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the column names unquoted, comma separated.
func (cw *Writer) WriteHeader(columns []string) error {
	return cw.writeLine(strings.Join(columns, ","))
}

// WriteRecord writes one row of quoted fields.
func (cw *Writer) WriteRecord(fields []*string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = Quote(f)
	}
	return cw.writeLine(strings.Join(quoted, ","))
}

func (cw *Writer) writeLine(line string) error {
	if cw.lines > 0 {
		if err := cw.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	cw.lines++
	_, err := cw.w.WriteString(line)
	return err
}

// Flush writes any buffered data to the underlying io.Writer.
func (cw *Writer) Flush() error {
	return cw.w.Flush()
}

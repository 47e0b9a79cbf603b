package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented text lines, one level is two spaces.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

// Line writes formatted line at depth.
func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Node writes "kind: value" line with quoted value, kind alone when value is
// empty.
func (tw TreeWriter) Node(depth int, kind, value string) {
	tw.indent(depth)
	tw.w.WriteString(kind)
	if value != "" {
		tw.w.WriteString(": ")
		tw.w.WriteString(encodeText(value))
	}
	tw.w.WriteByte('\n')
}

// Pair writes "name = value" line with quoted value.
func (tw TreeWriter) Pair(depth int, name, value string) {
	tw.indent(depth)
	tw.w.WriteString(name)
	tw.w.WriteString(" = ")
	tw.w.WriteString(strconv.Quote(value))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

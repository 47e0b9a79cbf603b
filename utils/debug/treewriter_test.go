package debug

import (
	"testing"
)

func TestNewTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	if tw == nil {
		t.Fatal("NewTreeWriter() returned nil")
	}
	if tw.w == nil {
		t.Error("TreeWriter builder is nil")
	}
	if tw.String() != "" {
		t.Error("Expected empty string from new TreeWriter")
	}
}

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "test", want: "test\n"},
		{name: "depth 1", depth: 1, format: "indented", want: "  indented\n"},
		{name: "depth 2", depth: 2, format: "double indent", want: "    double indent\n"},
		{name: "with formatting", depth: 1, format: "rules: %d", args: []any{42}, want: "  rules: 42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Node(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		kind  string
		value string
		want  string
	}{
		{name: "kind only", depth: 0, kind: "stylesheet", want: "stylesheet\n"},
		{name: "quoted value", depth: 1, kind: "rule", value: ".a .b", want: "  rule: \".a .b\"\n"},
		{name: "escaped value", depth: 2, kind: "comment", value: "a\nb", want: "    comment: \"a\\nb\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Node(tt.depth, tt.kind, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("Node() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Pair(t *testing.T) {
	tw := NewTreeWriter()
	tw.Pair(1, "width", "10px")
	tw.Pair(1, "content", "")

	want := "  width = \"10px\"\n  content = \"\"\n"
	if got := tw.String(); got != want {
		t.Errorf("Pair() = %q, want %q", got, want)
	}
}

package css

import (
	"io"
	"strings"
)

// WriteTo writes the stylesheet to w in source order, implementing
// io.WriterTo. Layout: two spaces indentation, blank line between rules,
// one selector per line, style rules without declarations are omitted.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	p := &printer{w: w}
	p.rules(s.Rules, 0, "\n\n")
	return p.n, p.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// printer remembers the first write error and ignores everything after it.
type printer struct {
	w   io.Writer
	n   int64
	err error
}

func (p *printer) print(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		n, err := io.WriteString(p.w, s)
		p.n += int64(n)
		p.err = err
	}
}

func indent(level int) string {
	return strings.Repeat("  ", level)
}

func (p *printer) rules(rules []Rule, level int, sep string) {
	first := true
	for _, r := range rules {
		if sr, ok := r.(*StyleRule); ok && len(sr.Declarations) == 0 {
			continue
		}
		if !first {
			p.print(sep)
		}
		first = false
		p.rule(r, level)
	}
}

func (p *printer) rule(rule Rule, level int) {
	ind := indent(level)

	switch r := rule.(type) {
	case *Comment:
		p.print(ind, "/*", r.Text, "*/")

	case *AtStatement:
		p.print(ind, "@", r.Name)
		if r.Prelude != "" {
			p.print(" ", r.Prelude)
		}
		p.print(";")

	case *StyleRule:
		p.print(ind, strings.Join(r.Selectors, ",\n"+ind))
		p.declarations(r.Declarations, level)

	case *Keyframe:
		p.print(ind, strings.Join(r.Values, ", "))
		p.declarations(r.Declarations, level)

	case *AtDeclarations:
		p.print(ind, "@", r.Name)
		if r.Prelude != "" {
			p.print(" ", r.Prelude)
		}
		p.declarations(r.Declarations, level)

	case *MediaRule:
		p.print(ind, "@media ", r.Condition)
		p.block(r.Rules, level, "\n\n")

	case *KeyframesRule:
		p.print(ind, "@", r.Vendor, "keyframes ", r.Name)
		p.block(r.Frames, level, "\n")

	case *AtBlock:
		p.print(ind, "@", r.Name)
		if r.Prelude != "" {
			p.print(" ", r.Prelude)
		}
		p.block(r.Rules, level, "\n\n")
	}
}

// block writes braces enclosed list of nested rules.
func (p *printer) block(rules []Rule, level int, sep string) {
	if len(rules) == 0 {
		p.print(" {}")
		return
	}
	p.print(" {\n")
	p.rules(rules, level+1, sep)
	p.print("\n", indent(level), "}")
}

// declarations writes braces enclosed declaration block.
func (p *printer) declarations(decls []Declaration, level int) {
	if len(decls) == 0 {
		p.print(" {}")
		return
	}
	p.print(" {\n")
	ind := indent(level + 1)
	for i, d := range decls {
		if i > 0 {
			p.print("\n")
		}
		switch d := d.(type) {
		case *Property:
			p.print(ind, d.Name, ": ", d.Value, ";")
		case *Comment:
			p.print(ind, "/*", d.Text, "*/")
		}
	}
	p.print("\n", indent(level), "}")
}

package css

import (
	"strings"

	"adaptive/utils/debug"
)

// Dump returns indented tree representation of the stylesheet, used in
// debug reports.
func (s *Stylesheet) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "stylesheet: %d rules", len(s.Rules))
	dumpRules(tw, 1, s.Rules)
	return tw.String()
}

func dumpRules(tw *debug.TreeWriter, depth int, rules []Rule) {
	for _, rule := range rules {
		switch r := rule.(type) {
		case *Comment:
			tw.Node(depth, "comment", r.Text)
		case *StyleRule:
			tw.Node(depth, "rule", strings.Join(r.Selectors, ", "))
			dumpDeclarations(tw, depth+1, r.Declarations)
		case *Keyframe:
			tw.Node(depth, "keyframe", strings.Join(r.Values, ", "))
			dumpDeclarations(tw, depth+1, r.Declarations)
		case *MediaRule:
			tw.Node(depth, "media", r.Condition)
			dumpRules(tw, depth+1, r.Rules)
		case *KeyframesRule:
			tw.Node(depth, "@"+r.Vendor+"keyframes", r.Name)
			dumpRules(tw, depth+1, r.Frames)
		case *AtStatement:
			tw.Node(depth, "@"+r.Name, r.Prelude)
		case *AtDeclarations:
			tw.Node(depth, "@"+r.Name, r.Prelude)
			dumpDeclarations(tw, depth+1, r.Declarations)
		case *AtBlock:
			tw.Node(depth, "@"+r.Name, r.Prelude)
			dumpRules(tw, depth+1, r.Rules)
		}
	}
}

func dumpDeclarations(tw *debug.TreeWriter, depth int, decls []Declaration) {
	for _, decl := range decls {
		switch d := decl.(type) {
		case *Property:
			tw.Pair(depth, d.Name, d.Value)
		case *Comment:
			tw.Node(depth, "comment", d.Text)
		}
	}
}

package css

import (
	"strings"
)

// Rule is a single node of a rule list: top level of a stylesheet, body of
// an @media or other block at-rule, or list of frames of @keyframes.
//
// Implemented by *StyleRule, *MediaRule, *KeyframesRule, *Keyframe,
// *AtStatement, *AtDeclarations, *AtBlock and *Comment.
type Rule interface {
	rule()
}

// Declaration is a single node of a declaration block.
//
// Implemented by *Property and *Comment. Comments are kept as siblings of
// properties so their position relative to a property is preserved.
type Declaration interface {
	declaration()
}

// Comment represents /* ... */ found between rules or declarations.
type Comment struct {
	Text string // Comment body without delimiters, not trimmed
}

// Property represents "name: value" declaration.
type Property struct {
	Name  string // Property name (e.g., "border-width", "--gap")
	Value string // Raw value text with comments removed (e.g., "1px solid #000")
}

// StyleRule represents a qualified rule: selectors and declaration block.
type StyleRule struct {
	Selectors    []string // Comma separated selectors in source order
	Declarations []Declaration
}

// MediaRule represents @media block.
type MediaRule struct {
	Condition string // Media query list (e.g., "screen and (max-width: 600px)")
	Rules     []Rule
}

// KeyframesRule represents @keyframes block, possibly vendor prefixed.
type KeyframesRule struct {
	Vendor string // Vendor prefix including dashes (e.g., "-webkit-") or empty
	Name   string
	Frames []Rule // *Keyframe and *Comment nodes
}

// Keyframe is a single frame of @keyframes block.
type Keyframe struct {
	Values       []string // Frame offsets (e.g., "from", "50%")
	Declarations []Declaration
}

// AtStatement represents an at-rule without block (@import, @charset, @namespace...).
type AtStatement struct {
	Name    string // At-rule name without "@" (e.g., "import")
	Prelude string
}

// AtDeclarations represents an at-rule which body is a declaration block
// (@font-face, @page...).
type AtDeclarations struct {
	Name         string
	Prelude      string
	Declarations []Declaration
}

// AtBlock represents an at-rule which body is a list of rules (@supports,
// @document, @layer...). Its content is preserved but not interpreted.
type AtBlock struct {
	Name    string
	Prelude string
	Rules   []Rule
}

func (*Comment) rule() {}
func (*Comment) declaration() {}
func (*Property) declaration() {}
func (*StyleRule) rule() {}
func (*MediaRule) rule() {}
func (*KeyframesRule) rule() {}
func (*Keyframe) rule() {}
func (*AtStatement) rule() {}
func (*AtDeclarations) rule() {}
func (*AtBlock) rule() {}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Rules []Rule // Top-level rules in source order
}

// declarationBlockAtRules lists at-rules whose body is a declaration block
// rather than a list of rules.
var declarationBlockAtRules = map[string]bool{
	"font-face":           true,
	"page":                true,
	"viewport":            true,
	"-ms-viewport":        true,
	"counter-style":       true,
	"property":            true,
	"font-palette-values": true,
}

// keyframesVendor reports whether at-rule name is (possibly prefixed)
// "keyframes" and returns the prefix.
func keyframesVendor(name string) (string, bool) {
	if !strings.HasSuffix(name, "keyframes") {
		return "", false
	}
	vendor := strings.TrimSuffix(name, "keyframes")
	if vendor != "" && !(strings.HasPrefix(vendor, "-") && strings.HasSuffix(vendor, "-")) {
		return "", false
	}
	return vendor, true
}

// Properties returns all properties of the declaration list skipping comments.
func Properties(decls []Declaration) []*Property {
	var props []*Property
	for _, d := range decls {
		if p, ok := d.(*Property); ok {
			props = append(props, p)
		}
	}
	return props
}

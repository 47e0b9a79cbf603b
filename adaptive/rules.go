package adaptive

import (
	"go.uber.org/zap"

	"adaptive/css"
)

// processRules transforms rule list and returns a new list with hairline
// rules placed right after the rules they were derived from. Containers are
// updated in place. Inside keyframes hairline rules are never generated.
func (c *Compiler) processRules(rules []css.Rule, noHairline bool, st *Stats) []css.Rule {
	out := make([]css.Rule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, rule)

		switch r := rule.(type) {
		case *css.MediaRule:
			r.Rules = c.processRules(r.Rules, noHairline, st)

		case *css.KeyframesRule:
			r.Frames = c.processRules(r.Frames, true, st)

		case *css.StyleRule:
			st.Rules++
			var hairlines []css.Declaration
			r.Declarations, hairlines = c.processDeclarations(r.Declarations, noHairline, st)
			if len(hairlines) > 0 {
				out = append(out, &css.StyleRule{
					Selectors:    c.hairlineSelectors(r.Selectors),
					Declarations: hairlines,
				})
				st.Hairlines++
			}

		case *css.Keyframe:
			st.Rules++
			var hairlines []css.Declaration
			r.Declarations, hairlines = c.processDeclarations(r.Declarations, noHairline, st)
			if len(hairlines) > 0 {
				out = append(out, &css.Keyframe{
					Values:       c.hairlineSelectors(r.Values),
					Declarations: hairlines,
				})
				st.Hairlines++
			}
		}
	}
	return out
}

func (c *Compiler) hairlineSelectors(selectors []string) []string {
	out := make([]string, len(selectors))
	for i, sel := range selectors {
		out[i] = "." + c.opts.HairlineClass + " " + sel
	}
	return out
}

// processDeclarations converts pixel values of the declaration list. It
// returns the list with consumed directive comments removed and declarations
// for the hairline rule.
func (c *Compiler) processDeclarations(decls []css.Declaration, noHairline bool, st *Stats) ([]css.Declaration, []css.Declaration) {
	var (
		out       = make([]css.Declaration, 0, len(decls))
		hairlines []css.Declaration
	)

	for i := 0; i < len(decls); i++ {
		out = append(out, decls[i])

		prop, ok := decls[i].(*css.Property)
		if !ok || !pxPattern.MatchString(prop.Value) {
			continue
		}

		mode := c.opts.defaultMode()
		if i+1 < len(decls) {
			if comment, ok := decls[i+1].(*css.Comment); ok {
				if m, ok := parseDirective(comment.Text); ok {
					// directive comment is consumed
					i++
					st.Directives++
					mode = m
				}
			}
		}
		if mode == ModeNo {
			c.log.Debug("Conversion disabled by directive", zap.String("property", prop.Name), zap.String("value", prop.Value))
			continue
		}

		original := prop.Value
		prop.Value = c.opts.convert(mode, original, false)
		st.Converted++

		if !noHairline && c.opts.needHairline(original) {
			hairlines = append(hairlines, &css.Property{
				Name:  prop.Name,
				Value: c.opts.convert(ModePx, original, true),
			})
		}
	}
	return out, hairlines
}

package adaptive

import (
	"regexp"
	"strconv"
	"strings"
)

// pxPattern matches pixel literals: "1px", "0.5px". Compiled regexps are
// safe for concurrent use.
var pxPattern = regexp.MustCompile(`\b(\d+(\.\d+)?)px\b`)

// convert replaces every pixel literal in value according to mode. When
// hairline is set values are always scaled down by device pixel ratio and
// clamped to half a pixel.
func (o Options) convert(mode Mode, value string, hairline bool) string {
	return pxPattern.ReplaceAllStringFunc(value, func(literal string) string {
		px := literalValue(literal)
		switch {
		case px == 0:
			return "0"
		case mode == ModeRem && px/o.BaseDpr > 0.5:
			return o.format(px/o.RemUnit, "rem")
		case !hairline && px/o.BaseDpr < 1:
			return o.format(px, "px")
		default:
			return o.format(max(px/o.BaseDpr, 0.5), "px")
		}
	})
}

// needHairline reports whether any pixel literal of value is thinner than
// one device pixel.
func (o Options) needHairline(value string) bool {
	for _, literal := range pxPattern.FindAllString(value, -1) {
		if n := literalValue(literal) / o.BaseDpr; n > 0 && n < 1 {
			return true
		}
	}
	return false
}

// format rounds v to configured precision and appends unit, zero is always
// unitless.
func (o Options) format(v float64, unit string) string {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', o.RemPrecision, 64), 64)
	if rounded == 0 {
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64) + unit
}

// literalValue never fails: pxPattern only matches valid decimal numbers.
func literalValue(literal string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSuffix(literal, "px"), 64)
	return v
}

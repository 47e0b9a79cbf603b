package adaptive

import (
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestOptions_Convert(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		value    string
		hairline bool
		want     string
	}{
		{name: "zero px", mode: ModePx, value: "0px", want: "0"},
		{name: "zero rem", mode: ModeRem, value: "0px", want: "0"},
		{name: "zero hairline", mode: ModePx, value: "0px", hairline: true, want: "0"},
		{name: "zero decimal", mode: ModeRem, value: "0.0px", want: "0"},
		{name: "sub pixel kept", mode: ModePx, value: "1px", want: "1px"},
		{name: "sub pixel hairline", mode: ModePx, value: "1px", hairline: true, want: "0.5px"},
		{name: "hairline clamp", mode: ModePx, value: "0.4px", hairline: true, want: "0.5px"},
		{name: "px scaled", mode: ModePx, value: "3px", want: "1.5px"},
		{name: "px scaled large", mode: ModePx, value: "10px", want: "5px"},
		{name: "rem", mode: ModeRem, value: "10px", want: "0.133333rem"},
		{name: "rem below threshold", mode: ModeRem, value: "0.5px", want: "0.5px"},
		{name: "rem above threshold", mode: ModeRem, value: "1.5px", want: "0.02rem"},
		{name: "rem at threshold", mode: ModeRem, value: "1px", want: "1px"},
		{name: "multiple px", mode: ModePx, value: "1px 20px", want: "1px 10px"},
		{name: "multiple rem", mode: ModeRem, value: "1px 20px", want: "1px 0.266667rem"},
		{name: "hairline multiple", mode: ModePx, value: "1px 20px", hairline: true, want: "0.5px 10px"},
		{name: "with keywords", mode: ModePx, value: "1px solid #000", hairline: true, want: "0.5px solid #000"},
		{name: "negative sign kept", mode: ModePx, value: "-2px", want: "-1px"},
		{name: "not a word boundary after", mode: ModePx, value: "10pxs", want: "10pxs"},
		{name: "not a word boundary before", mode: ModePx, value: "a10px", want: "a10px"},
		{name: "case sensitive", mode: ModePx, value: "10PX", want: "10PX"},
		{name: "other units", mode: ModeRem, value: "10em 5%", want: "10em 5%"},
		{name: "inside function", mode: ModePx, value: "translate(4px, 6px)", want: "translate(2px, 3px)"},
	}

	opts := DefaultOptions()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := opts.convert(tt.mode, tt.value, tt.hairline); got != tt.want {
				t.Errorf("convert(%s, %q, %v) = %q, want %q", tt.mode, tt.value, tt.hairline, got, tt.want)
			}
		})
	}
}

func TestOptions_ConvertPrecision(t *testing.T) {
	tests := []struct {
		precision int
		value     string
		want      string
	}{
		{precision: 2, value: "10px", want: "0.13rem"},
		{precision: 1, value: "20px", want: "0.3rem"},
		{precision: 0, value: "10px", want: "0"},
		{precision: 0, value: "150px", want: "2rem"},
	}

	for _, tt := range tests {
		opts := DefaultOptions()
		opts.RemPrecision = tt.precision
		if got := opts.convert(ModeRem, tt.value, false); got != tt.want {
			t.Errorf("precision %d: convert(%q) = %q, want %q", tt.precision, tt.value, got, tt.want)
		}
	}
}

func TestOptions_ConvertBaseDpr(t *testing.T) {
	opts := DefaultOptions()
	opts.BaseDpr = 3
	opts.RemUnit = 37.5

	if got := opts.convert(ModePx, "6px", false); got != "2px" {
		t.Errorf("convert(6px) = %q, want 2px", got)
	}
	if got := opts.convert(ModePx, "2px", false); got != "2px" {
		t.Errorf("convert(2px) = %q, want 2px", got)
	}
	if got := opts.convert(ModePx, "2px", true); got != "0.666667px" {
		t.Errorf("hairline convert(2px) = %q, want 0.666667px", got)
	}
	if got := opts.convert(ModeRem, "15px", false); got != "0.4rem" {
		t.Errorf("convert(15px) = %q, want 0.4rem", got)
	}
}

func TestOptions_NeedHairline(t *testing.T) {
	tests := []struct {
		value string
		dpr   float64
		want  bool
	}{
		{value: "1px", dpr: 2, want: true},
		{value: "1px solid red", dpr: 2, want: true},
		{value: "2px", dpr: 2, want: false},
		{value: "0px", dpr: 2, want: false},
		{value: "0px 4px", dpr: 2, want: false},
		{value: "4px 0.5px", dpr: 2, want: true},
		{value: "none", dpr: 2, want: false},
		{value: "2px", dpr: 3, want: true},
		{value: "3px", dpr: 3, want: false},
	}

	for _, tt := range tests {
		opts := DefaultOptions()
		opts.BaseDpr = tt.dpr
		if got := opts.needHairline(tt.value); got != tt.want {
			t.Errorf("needHairline(%q) at dpr %v = %v, want %v", tt.value, tt.dpr, got, tt.want)
		}
	}
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		text string
		want Mode
		ok   bool
	}{
		{text: "px", want: ModePx, ok: true},
		{text: " rem ", want: ModeRem, ok: true},
		{text: "\tno\n", want: ModeNo, ok: true},
		{text: "REM", ok: false},
		{text: "no conversion", ok: false},
		{text: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := parseDirective(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseDirective(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOptions_Validate(t *testing.T) {
	if err := DefaultOptions().validate(); err != nil {
		t.Errorf("default options are invalid: %v", err)
	}

	bad := Options{BaseDpr: 0, RemUnit: -1, RemPrecision: -1, HairlineClass: " "}
	err := bad.validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Errorf("got %d errors, want 4", n)
	}
	for _, want := range []string{"base dpr", "rem unit", "rem precision", "hairline class"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

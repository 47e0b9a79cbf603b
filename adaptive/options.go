// Package adaptive rewrites pixel lengths of a stylesheet into device pixel
// ratio aware units and generates hairline rules for high density displays.
package adaptive

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// Mode is a conversion mode of a declaration.
type Mode string

const (
	ModePx  Mode = "px"  // keep pixels, scale sub-device-pixel values
	ModeRem Mode = "rem" // convert to rem units
	ModeNo  Mode = "no"  // leave declaration untouched
)

// parseDirective recognizes conversion mode in a comment following a
// declaration.
func parseDirective(text string) (Mode, bool) {
	switch m := Mode(strings.TrimSpace(text)); m {
	case ModePx, ModeRem, ModeNo:
		return m, true
	}
	return "", false
}

// Options controls conversion. It is immutable for the lifetime of a Compiler.
type Options struct {
	BaseDpr       float64 // device pixel ratio stylesheet was designed for
	RemUnit       float64 // pixels per 1rem
	RemPrecision  int     // number of fractional digits in produced values
	HairlineClass string  // class prefixed to selectors of hairline rules
	AutoRem       bool    // default mode is rem instead of px
}

// DefaultOptions returns options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		BaseDpr:       2,
		RemUnit:       75,
		RemPrecision:  6,
		HairlineClass: "hairlines",
		AutoRem:       false,
	}
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (o Options) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("base_dpr", o.BaseDpr)
	enc.AddFloat64("rem_unit", o.RemUnit)
	enc.AddInt("rem_precision", o.RemPrecision)
	enc.AddString("hairline_class", o.HairlineClass)
	enc.AddBool("auto_rem", o.AutoRem)
	return nil
}

func (o Options) validate() (err error) {
	if !(o.BaseDpr > 0) {
		err = multierr.Append(err, fmt.Errorf("base dpr must be positive, got %v", o.BaseDpr))
	}
	if !(o.RemUnit > 0) {
		err = multierr.Append(err, fmt.Errorf("rem unit must be positive, got %v", o.RemUnit))
	}
	if o.RemPrecision < 0 {
		err = multierr.Append(err, fmt.Errorf("rem precision must not be negative, got %d", o.RemPrecision))
	}
	if strings.TrimSpace(o.HairlineClass) == "" {
		err = multierr.Append(err, errors.New("hairline class must not be empty"))
	}
	return err
}

func (o Options) defaultMode() Mode {
	if o.AutoRem {
		return ModeRem
	}
	return ModePx
}

package adaptive

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adaptive/css"
)

// File is a stylesheet to be compiled.
type File struct {
	Data []byte
	Path string // used for logging only
}

// Output is the compiled stylesheet text.
type Output struct {
	Data  []byte
	Stats Stats
}

// Stats counts what has been done to a stylesheet.
type Stats struct {
	Rules      int // style rules and keyframes visited
	Converted  int // declarations with rewritten values
	Directives int // directive comments consumed
	Hairlines  int // hairline rules generated
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("rules", s.Rules)
	enc.AddInt("converted", s.Converted)
	enc.AddInt("directives", s.Directives)
	enc.AddInt("hairlines", s.Hairlines)
	return nil
}

// Compiler converts stylesheets. It keeps no mutable state and may be used
// from multiple goroutines at once.
type Compiler struct {
	opts   Options
	parser *css.Parser
	log    *zap.Logger
}

// NewCompiler validates options and creates compiler.
func NewCompiler(opts Options, log *zap.Logger) (*Compiler, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		opts:   opts,
		parser: css.NewParser(log),
		log:    log.Named("adaptive"),
	}, nil
}

// Options returns options compiler was created with.
func (c *Compiler) Options() Options {
	return c.opts
}

// Compile parses stylesheet, transforms it and writes it back to text.
// Parse errors are returned as is.
func (c *Compiler) Compile(ctx context.Context, f File) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheet, err := c.parser.Parse(f.Data, f.Path)
	if err != nil {
		return nil, err
	}

	st := c.Transform(sheet)

	var buf bytes.Buffer
	if _, err := sheet.WriteTo(&buf); err != nil {
		return nil, err
	}

	c.log.Debug("Stylesheet compiled", zap.String("path", f.Path), zap.Object("stats", st))
	return &Output{Data: buf.Bytes(), Stats: st}, nil
}

// Transform rewrites parsed stylesheet in place.
func (c *Compiler) Transform(sheet *css.Stylesheet) Stats {
	var st Stats
	sheet.Rules = c.processRules(sheet.Rules, false, &st)
	return st
}

package convert

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"adaptive/adaptive"
	"adaptive/css"
	"adaptive/state"
)

// stylesheet is a single unit of work: where to get source text from and
// what to do with the result.
type stylesheet struct {
	name   string // full location, for logging
	sort   string // relative name, defines processing order
	output string // output file, empty when result does not go to a file
	read   func() ([]byte, error)
	write  func([]byte) error
}

// compileAll processes stylesheets concurrently. Failures of individual
// stylesheets are logged and counted, only cancellation stops the batch.
func (r *runner) compileAll(ctx context.Context, sheets []*stylesheet) error {
	outputs := make(map[string]string, len(sheets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.env.Jobs, 1))

	for _, s := range sheets {
		if s.output != "" {
			if other, exists := outputs[s.output]; exists {
				r.failed.Add(1)
				r.log.Error("Unable to process stylesheet, output name collision",
					zap.String("file", s.name), zap.String("other", other), zap.String("to", s.output))
				continue
			}
			outputs[s.output] = s.name
		}

		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := r.compileOne(gctx, s)
			switch {
			case err == nil:
				r.processed.Add(1)
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				r.failed.Add(1)
				r.log.Error("Unable to process stylesheet", zap.String("file", s.name), zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// compileOne reads, compiles and writes single stylesheet.
func (r *runner) compileOne(ctx context.Context, s *stylesheet) (rerr error) {
	var stats adaptive.Stats

	r.log.Debug("Compilation starting", zap.String("from", s.name))
	defer func(start time.Time) {
		if p := recover(); p != nil {
			r.log.Error("Compilation ended with panic",
				zap.Any("panic", p), zap.Duration("elapsed", time.Since(start)), zap.String("from", s.name), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("compilation panic: %v", p)
		} else if rerr == nil {
			r.log.Info("Stylesheet compiled", zap.String("from", s.name), zap.String("to", s.output),
				zap.Duration("elapsed", time.Since(start)), zap.Object("stats", stats))
		}
	}(time.Now())

	data, err := s.read()
	if err != nil {
		return fmt.Errorf("unable to read stylesheet: %w", err)
	}
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return fmt.Errorf("not a stylesheet, content looks like %s", kind.MIME.Value)
	}

	out, err := compileStylesheet(ctx, r.env, data, s.name)
	if err != nil {
		return err
	}
	stats = out.Stats

	if err := s.write(out.Data); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}
	return nil
}

// compileStylesheet converts source text to UTF-8, compiles it and converts
// result back to the source encoding.
func compileStylesheet(ctx context.Context, env *state.LocalEnv, data []byte, name string) (*adaptive.Output, error) {
	enc, cs, err := selectEncoding(data, env.Charset)
	if err != nil {
		return nil, err
	}

	src := data
	if enc != nil {
		if src, err = enc.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("unable to decode stylesheet from %s: %w", cs, err)
		}
	}

	out, err := env.Compiler.Compile(ctx, adaptive.File{Data: src, Path: name})
	if err != nil {
		return nil, err
	}
	if env.Rpt != nil {
		storeReport(env, name, src, out.Data)
	}

	if enc != nil {
		if out.Data, err = enc.NewEncoder().Bytes(out.Data); err != nil {
			return nil, fmt.Errorf("unable to encode result to %s: %w", cs, err)
		}
	}
	return out, nil
}

// selectEncoding returns encoding declared by @charset rule or forced one
// when there is no declaration. Nil encoding means UTF-8.
func selectEncoding(data []byte, forced encoding.Encoding) (encoding.Encoding, string, error) {
	label := css.DetectCharset(data)
	if len(label) == 0 {
		if forced == nil {
			return nil, "utf-8", nil
		}
		name, err := ianaindex.IANA.Name(forced)
		if err != nil {
			name = "forced"
		}
		return forced, name, nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, "", fmt.Errorf("unknown charset %q", label)
	}
	if name == "utf-8" {
		return nil, name, nil
	}
	return enc, name, nil
}

// storeReport puts source and result text of the stylesheet along with their
// trees into debug report.
func storeReport(env *state.LocalEnv, name string, src, result []byte) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	prefix := path.Join("stylesheets", id.String(), filepath.Base(name))

	env.Rpt.StoreData(prefix, src)
	env.Rpt.StoreData(prefix+".result", result)

	p := css.NewParser(nil)
	if sheet, err := p.Parse(src, name); err == nil {
		env.Rpt.StoreData(prefix+".tree", []byte(sheet.Dump()))
	}
	if sheet, err := p.Parse(result, name); err == nil {
		env.Rpt.StoreData(prefix+".result.tree", []byte(sheet.Dump()))
	}
}

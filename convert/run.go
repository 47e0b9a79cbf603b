package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	fixzip "github.com/hidez8891/zip"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"adaptive/archive"
	"adaptive/state"
)

// Run is the action of convert command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	r, src, err := prepare(ctx, cmd)
	if err != nil {
		return err
	}
	r.env.Overwrite = cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		if r.env.CodePage, err = lookupEncoding(cp); err != nil {
			r.log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			r.env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(r.env.CodePage)
			r.log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	r.log.Info("Processing starting", zap.String("source", src), zap.String("destination", r.dst), zap.Stringer("run", r.env.RunID))
	defer func(start time.Time) {
		r.log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)),
			zap.Int64("processed", r.processed.Load()), zap.Int64("failed", r.failed.Load()))
	}(time.Now())

	if err := r.process(ctx, src); err != nil {
		return err
	}
	if n := r.failed.Load(); n > 0 {
		return fmt.Errorf("unable to process %d stylesheet(s)", n)
	}
	return nil
}

// prepare reads arguments and flags common to convert and watch commands.
func prepare(ctx context.Context, cmd *cli.Command) (*runner, string, error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return nil, "", errors.New("no input source has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return nil, "", err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return nil, "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return nil, "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs = cmd.Bool("nodirs")
	if jobs := cmd.Int("jobs"); jobs > 0 {
		env.Jobs = jobs
	}
	if cs := cmd.String("charset"); len(cs) > 0 {
		if env.Charset, err = lookupEncoding(cs); err != nil {
			return nil, "", fmt.Errorf("unknown stylesheet charset %q: %w", cs, err)
		}
	}
	if err := env.PrepareCompiler(); err != nil {
		return nil, "", fmt.Errorf("unable to prepare stylesheet compiler: %w", err)
	}
	return newRunner(env, dst, log), src, nil
}

// lookupEncoding finds encoding by IANA name.
func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("character set %q is not supported", name)
	}
	return enc, nil
}

// runner processes stylesheets writing results under dst and counts outcomes.
type runner struct {
	env *state.LocalEnv
	log *zap.Logger
	dst string

	processed atomic.Int64
	failed    atomic.Int64
}

func newRunner(env *state.LocalEnv, dst string, log *zap.Logger) *runner {
	return &runner{env: env, log: log, dst: dst}
}

// process determines the input type (directory, archive with optional path
// inside, or single file) and processes it accordingly.
func (r *runner) process(ctx context.Context, src string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := r.processDir(ctx, head); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			return nil
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := r.processArchive(ctx, head, filepath.ToSlash(tail), ""); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}

		if len(tail) == 0 && r.env.Matcher.Match(head) {
			return r.compileAll(ctx, []*stylesheet{r.fileStylesheet(head, filepath.Base(head))})
		}
		return fmt.Errorf("input was not recognized as stylesheet (%s), expected names matching %s", head, r.env.Matcher)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processDir walks directory tree finding stylesheets and archives. Archives
// are processed as they are found, stylesheets are compiled together in
// natural order of their names.
func (r *runner) processDir(ctx context.Context, dir string) error {
	var sheets []*stylesheet

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			r.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			r.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			if err := r.processArchive(ctx, path, "", filepath.Dir(rel)); err != nil {
				r.failed.Add(1)
				r.log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		if !r.env.Matcher.Match(path) {
			r.log.Debug("Skipping file, not recognized as stylesheet or archive", zap.String("file", path))
			return nil
		}
		sheets = append(sheets, r.fileStylesheet(path, rel))
		return nil
	})
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		r.log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}
	sortStylesheets(sheets)
	return r.compileAll(ctx, sheets)
}

// processArchive compiles stylesheets inside archive under "pathIn" and
// writes a copy of the archive with compiled stylesheets replaced to
// destination directory, "pathOut" is archive location relative to the
// processed directory.
func (r *runner) processArchive(ctx context.Context, path, pathIn, pathOut string) error {
	var (
		sheets       []*stylesheet
		mu           sync.Mutex
		replacements = make(map[string][]byte)
	)

	err := archive.Walk(path, pathIn, func(arc string, f *fixzip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := r.entryName(f)
		if !r.env.Matcher.Match(name) {
			r.log.Debug("Skipping file in archive, not recognized as stylesheet", zap.String("archive", arc), zap.String("file", name))
			return nil
		}

		// archive is closed when walk is done
		data, err := readEntry(f)
		if err != nil {
			r.failed.Add(1)
			r.log.Error("Unable to read file in archive", zap.String("archive", arc), zap.String("file", name), zap.Error(err))
			return nil
		}

		entry := f.Name
		sheets = append(sheets, &stylesheet{
			name: arc + ":" + name,
			sort: name,
			read: func() ([]byte, error) {
				return data, nil
			},
			write: func(data []byte) error {
				mu.Lock()
				defer mu.Unlock()
				replacements[entry] = data
				return nil
			},
		})
		return nil
	})
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		r.log.Debug("Nothing to process", zap.String("archive", path))
		return nil
	}

	sortStylesheets(sheets)
	if err := r.compileAll(ctx, sheets); err != nil {
		return err
	}
	if len(replacements) == 0 {
		r.log.Warn("Archive was not written, no stylesheets were compiled", zap.String("archive", path))
		return nil
	}

	outputName := buildOutputPath(filepath.Join(pathOut, filepath.Base(path)), r.dst, r.env)
	if err := r.prepareOutput(outputName); err != nil {
		return err
	}
	if err := archive.Rewrite(path, outputName, replacements); err != nil {
		return err
	}
	r.log.Info("Archive written", zap.String("from", path), zap.String("to", outputName), zap.Int("stylesheets", len(replacements)))
	return nil
}

func readEntry(f *fixzip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// entryName returns name of archive entry, decoding it when code page is
// forced.
func (r *runner) entryName(f *fixzip.File) string {
	name := f.FileHeader.Name
	cp := r.env.CodePage
	if cp == nil || !f.FileHeader.NonUTF8 {
		return name
	}
	n, err := cp.NewDecoder().String(name)
	if err != nil {
		cs, _ := ianaindex.IANA.Name(cp)
		r.log.Warn("Unable to convert archive name from specified encoding",
			zap.String("charset", cs), zap.String("path", name), zap.Error(err))
		return name
	}
	return n
}

// fileStylesheet prepares stylesheet read from path, "rel" is the path
// relative to the processed source used to build output name.
func (r *runner) fileStylesheet(path, rel string) *stylesheet {
	outputName := buildOutputPath(rel, r.dst, r.env)
	return &stylesheet{
		name:   path,
		sort:   rel,
		output: outputName,
		read: func() ([]byte, error) {
			return os.ReadFile(path)
		},
		write: func(data []byte) error {
			if err := r.prepareOutput(outputName); err != nil {
				return err
			}
			return os.WriteFile(outputName, data, 0644)
		},
	}
}

// prepareOutput checks if output file already exists and creates its
// directory.
func (r *runner) prepareOutput(outputName string) error {
	if _, err := os.Stat(outputName); err == nil {
		if !r.env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		r.log.Debug("Overwriting existing file", zap.String("file", outputName))
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func sortStylesheets(sheets []*stylesheet) {
	sort.SliceStable(sheets, func(i, j int) bool {
		return natural.Less(sheets[i].sort, sheets[j].sort)
	})
}

package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/maruel/natural"

	"adaptive/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{entries: make(map[string]entry), file: f}, nil
}

// entry is either a file system path (file or directory) or in-memory data.
type entry struct {
	path  string
	data  []byte
	stamp time.Time
}

func (e entry) source() string {
	if e.path != "" {
		return e.path
	}
	return fmt.Sprintf("<%d bytes>", len(e.data))
}

// Report collects files and data for debug archive written on Close. It is
// safe for concurrent use. All methods are no-op on nil Report, so callers
// do not have to check whether report was requested.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
}

// Close writes debug archive.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalize()
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store registers file or directory to be put in the archive under name.
// Content is read on Close, so logs could be stored before they are
// complete.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.path != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.path, path))
	}
	r.entries[name] = entry{path: path}
}

// StoreData puts data to the archive under name. Repeated names get numeric
// suffix, watch mode may compile the same stylesheet many times.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	unique := name
	for i := 1; ; i++ {
		if _, exists := r.entries[unique]; !exists {
			break
		}
		unique = fmt.Sprintf("%s-%d", name, i)
	}
	r.entries[unique] = entry{data: data, stamp: time.Now()}
}

func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	now := time.Now()
	manifest := new(bytes.Buffer)
	for _, name := range names {
		e := r.entries[name]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		fmt.Fprintf(manifest, "%s\t%s\t%s\n", stamp.UTC().Format(time.RFC3339), name, e.source())
	}
	if err := addFile(arc, "MANIFEST", now, manifest); err != nil {
		return err
	}

	for _, name := range names {
		if err := addEntry(arc, name, r.entries[name]); err != nil {
			return fmt.Errorf("unable to add %s to report: %w", name, err)
		}
	}
	return arc.Close()
}

func addEntry(arc *zip.Writer, name string, e entry) error {
	if e.path == "" {
		return addFile(arc, name, e.stamp, bytes.NewReader(e.data))
	}

	info, err := os.Stat(e.path)
	if err != nil {
		// absent files are listed in manifest only
		return nil
	}
	if info.IsDir() {
		return filepath.WalkDir(e.path, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.Type().IsRegular() {
				return err
			}
			rel, err := filepath.Rel(e.path, path)
			if err != nil {
				return err
			}
			return addPath(arc, filepath.ToSlash(filepath.Join(name, rel)), path)
		})
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	return addPath(arc, name, e.path)
}

func addPath(arc *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return addFile(arc, name, info.ModTime(), f)
}

func addFile(arc *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

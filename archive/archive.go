// Package archive walks and rewrites zip archives.
package archive

import (
	"fmt"
	"os"
	"path"
	"strings"

	fixzip "github.com/hidez8891/zip"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to Walk.
// If an error is returned, processing stops.
type WalkFunc func(archive string, file *fixzip.File) error

// Walk calls walkFn for every file in the archive with name starting with
// prefix. Archives with absolute entry names or names containing ".." are
// rejected.
func Walk(archive, prefix string, walkFn WalkFunc) error {
	r, err := fixzip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(archive, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rewrite copies archive src into new archive dst. Entries which names are
// keys of replacements get new content, all other entries are copied without
// recompression. Order of entries is preserved.
func Rewrite(src, dst string, replacements map[string][]byte) (err error) {
	r, err := fixzip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", src, err)
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create archive file (%s): %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	w := fixzip.NewWriter(out)
	for _, file := range r.File {
		data, ok := replacements[file.Name]
		if !ok {
			// unset data descriptor flag.
			file.Flags &= ^fixzip.FlagDataDescriptor

			if err := w.CopyFile(file); err != nil {
				return fmt.Errorf("unable to copy archive entry (%s): %w", file.Name, err)
			}
			continue
		}

		fw, err := w.CreateHeader(&fixzip.FileHeader{
			Name:     file.Name,
			Comment:  file.Comment,
			NonUTF8:  file.NonUTF8,
			Method:   fixzip.Deflate,
			Modified: file.Modified,
		})
		if err != nil {
			return fmt.Errorf("unable to create archive entry (%s): %w", file.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("unable to write archive entry (%s): %w", file.Name, err)
		}
	}
	return w.Close()
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

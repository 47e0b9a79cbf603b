package convert

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"adaptive/config"
	"adaptive/state"
)

// buildOutputPath returns output file path for the source "src" relative to
// processed input. It uses either source name or user-defined template and
// takes into account whether to preserve source directory structure on the
// output. Every path segment is cleaned up and if requested transliterated.
// Extension is never changed.
func buildOutputPath(src, dst string, env *state.LocalEnv) string {
	ext := filepath.Ext(src)

	name := strings.TrimSuffix(filepath.Base(src), ext)
	if env.Cfg.Processing.OutputNameTemplate != "" {
		if expanded := expandOutputNameTemplate(src, env); expanded != "" {
			name = expanded
		}
	}

	parts := []string{dst}
	if !env.NoDirs {
		for _, segment := range splitPath(filepath.Dir(src)) {
			parts = append(parts, cleanPathSegment(segment, env))
		}
	}

	// template may introduce subdirectories
	segments := splitPath(name)
	if len(segments) == 0 {
		segments = []string{name}
	}
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(segments[len(segments)-1], env)+ext)
	return filepath.Join(parts...)
}

func expandOutputNameTemplate(src string, env *state.LocalEnv) string {
	expanded, err := expandTemplate(env, config.OutputNameTemplateFieldName, env.Cfg.Processing.OutputNameTemplate, src)
	if err != nil {
		if env.Log != nil {
			env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		}
		return ""
	}
	return filepath.FromSlash(strings.TrimSpace(expanded))
}

// splitPath returns path segments, current directory has none.
func splitPath(path string) []string {
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." || path == "/" {
		return nil
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" && s != "." && s != ".." {
			segments = append(segments, s)
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Processing.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}

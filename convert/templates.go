package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"adaptive/config"
	"adaptive/state"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Name       string  // source file name without extension
	Ext        string  // source file extension, with leading dot
	Dir        string  // source directory relative to processed input, slash separated
	SourceFile string  // source file name
	BaseDpr    float64 // from configuration
	RemUnit    float64
	AutoRem    bool
	RunID      string
}

func expandTemplate(env *state.LocalEnv, name config.TemplateFieldName, field, src string) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	base := filepath.Base(src)
	ext := filepath.Ext(base)
	dir := filepath.ToSlash(filepath.Dir(src))
	if dir == "." {
		dir = ""
	}

	values := Values{
		Context:    string(name),
		Name:       strings.TrimSuffix(base, ext),
		Ext:        ext,
		Dir:        dir,
		SourceFile: base,
		BaseDpr:    env.Cfg.Adaptive.BaseDpr,
		RemUnit:    env.Cfg.Adaptive.RemUnit,
		AutoRem:    env.Cfg.Adaptive.AutoRem,
		RunID:      env.RunID.String(),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package convert

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"adaptive/config"
	"adaptive/state"
)

func TestBuildOutputPath(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	dst := filepath.Join("out", "dir")
	tests := []struct {
		name          string
		src           string
		noDirs        bool
		transliterate bool
		template      string
		want          string
	}{
		{name: "plain file", src: "site.css", want: filepath.Join(dst, "site.css")},
		{name: "keeps directories", src: filepath.Join("a", "b", "site.css"), want: filepath.Join(dst, "a", "b", "site.css")},
		{name: "nodirs", src: filepath.Join("a", "b", "site.css"), noDirs: true, want: filepath.Join(dst, "site.css")},
		{name: "extension kept", src: "theme.less", want: filepath.Join(dst, "theme.less")},
		{name: "transliterate", src: filepath.Join("My Styles", "Main Theme.CSS"), transliterate: true, want: filepath.Join(dst, "my-styles", "main-theme.CSS")},
		{name: "template", src: filepath.Join("a", "site.css"), template: "{{ .Name }}@{{ .BaseDpr }}x", want: filepath.Join(dst, "a", "site@2x.css")},
		{name: "template with subdirectory", src: "site.css", template: "hd/{{ .Name }}", want: filepath.Join(dst, "hd", "site.css")},
		{name: "template with nodirs", src: filepath.Join("a", "site.css"), noDirs: true, template: "{{ .Dir }}/{{ .Name }}", want: filepath.Join(dst, "a", "site.css")},
		{name: "template cannot escape destination", src: "site.css", template: "../../{{ .Name }}", want: filepath.Join(dst, "site.css")},
		{name: "broken template", src: "site.css", template: "{{ .Name", want: filepath.Join(dst, "site.css")},
		{name: "empty expansion", src: "site.css", template: "{{ if false }}x{{ end }}", want: filepath.Join(dst, "site.css")},
		{name: "no transliteration", src: filepath.Join("My Styles", "Main Theme.css"), want: filepath.Join(dst, "My Styles", "Main Theme.css")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *cfg
			c.Processing.FileNameTransliterate = tt.transliterate
			c.Processing.OutputNameTemplate = tt.template
			env := &state.LocalEnv{Cfg: &c, NoDirs: tt.noDirs}

			if got := buildOutputPath(tt.src, dst, env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{path: ".", want: nil},
		{path: "", want: nil},
		{path: "a", want: []string{"a"}},
		{path: filepath.Join("a", "b", "c"), want: []string{"a", "b", "c"}},
		{path: "a/./b/", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitPath(tt.path)); diff != "" {
			t.Errorf("splitPath(%q) mismatch (-want +got):\n%s", tt.path, diff)
		}
	}
}

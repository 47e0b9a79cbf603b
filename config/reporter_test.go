package config

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func readReport(t *testing.T, name string) map[string]string {
	t.Helper()

	r, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer r.Close()

	files := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open report entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read report entry %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport(t *testing.T) {
	dir := t.TempDir()

	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(dir, "input.css")
	if err := os.WriteFile(stored, []byte(".a { top: 1px }"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "tree", "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.css"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("input.css", stored)
	r.Store("input.css", stored) // same path again is fine
	r.Store("tree", filepath.Join(dir, "tree"))
	r.Store("absent", filepath.Join(dir, "absent.css"))
	r.StoreData("config/config.yaml", []byte("version: 1"))

	if got := r.Name(); got != conf.Destination {
		t.Errorf("Name() = %q, want %q", got, conf.Destination)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readReport(t, conf.Destination)
	if files["input.css"] != ".a { top: 1px }" {
		t.Errorf("input.css = %q", files["input.css"])
	}
	if files["tree/nested/b.css"] != "b" {
		t.Errorf("tree/nested/b.css = %q", files["tree/nested/b.css"])
	}
	if files["config/config.yaml"] != "version: 1" {
		t.Errorf("config/config.yaml = %q", files["config/config.yaml"])
	}
	if _, ok := files["absent"]; ok {
		t.Error("absent file should not be in the report")
	}
	manifest := files["MANIFEST"]
	for _, name := range []string{"input.css", "tree", "absent", "config/config.yaml"} {
		if !strings.Contains(manifest, "\t"+name+"\t") {
			t.Errorf("MANIFEST does not list %s:\n%s", name, manifest)
		}
	}
}

func TestReport_StoreConflict(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("final.log", "a.log")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when storing different path under the same name")
		}
	}()
	r.Store("final.log", "b.log")
}

func TestReport_StoreDataConcurrent(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.StoreData("stylesheets/same.css", fmt.Appendf(nil, "%d", i))
			r.StoreData(fmt.Sprintf("stylesheets/%d.css", i), []byte("x"))
		}()
	}
	wg.Wait()

	if len(r.entries) != 40 {
		t.Errorf("got %d entries, want 40", len(r.entries))
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	r.Store("a", "b")
	r.StoreData("a", nil)
	if r.Name() != "" {
		t.Error("Name() of nil report should be empty")
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

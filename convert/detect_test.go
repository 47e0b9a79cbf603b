package convert

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func zipBytes(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	fw, err := w.Create("site.css")
	if err != nil {
		t.Fatalf("Failed to create file in zip: %v", err)
	}
	if _, err := fw.Write([]byte(".a { top: 0 }")); err != nil {
		t.Fatalf("Failed to write file in zip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestIsArchiveFile(t *testing.T) {
	dir := t.TempDir()
	archive := zipBytes(t)

	tests := []struct {
		name    string
		file    string
		content []byte
		want    bool
	}{
		{name: "stylesheet", file: "site.css", content: []byte(".a { top: 0 }"), want: false},
		{name: "zip content without extension", file: "site.css", content: archive, want: false},
		{name: "zip extension invalid content", file: "bad.zip", content: []byte("not a real zip file"), want: false},
		{name: "empty zip", file: "empty.zip", content: nil, want: false},
		{name: "valid zip", file: "valid.zip", content: archive, want: true},
		{name: "extension case", file: "VALID.ZIP", content: archive, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name, tt.file)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, tt.content, 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			got, err := isArchiveFile(path)
			if err != nil {
				t.Fatalf("isArchiveFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isArchiveFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsArchiveFile_NonExistent(t *testing.T) {
	if _, err := isArchiveFile(filepath.Join(t.TempDir(), "absent.zip")); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

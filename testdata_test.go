package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// buildTestZip creates an in-memory ZIP archive from the provided files map
// (path → content) and returns a *zip.Reader over the resulting bytes.
// It calls t.Fatal on any error.
func buildTestZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("buildTestZip: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("buildTestZip: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestZip: close writer: %v", err)
	}

	data := buf.Bytes()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestZip: open reader: %v", err)
	}
	return r
}

// chapterDoc returns a minimal XHTML chapter document titled title.
func chapterDoc(title string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>` + title + `</title></head>
<body><h1>` + title + `</h1><p>Text.</p></body></html>`
}

// buildWorkDir creates a volume working directory under t.TempDir() from
// files (slash-separated relative path → content) and returns its root.
// A key ending in "/" creates an empty directory.
func buildWorkDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatalf("buildWorkDir: mkdir %s: %v", name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("buildWorkDir: mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("buildWorkDir: write %s: %v", name, err)
		}
	}
	return root
}

// buildTestArchive collects root, emits <outDir>/<name>.epub and returns its
// path together with the builder.
func buildTestArchive(t *testing.T, root, name string, opts Options) (string, *Archive) {
	t.Helper()
	assets, err := NewCollector(root, nil).Collect(true, true)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	a, err := NewArchive(name, t.TempDir(), opts)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	if err := a.Load(assets); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := a.Emit(); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return a.Path(), a
}

// openTestArchive opens the ePub at path and registers its cleanup.
func openTestArchive(t *testing.T, path string) *zip.Reader {
	t.Helper()
	zrc, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { zrc.Close() })
	return &zrc.Reader
}

// entryNames lists the entry names of zr in archive order.
func entryNames(zr *zip.Reader) []string {
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

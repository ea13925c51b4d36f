package epub

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// buildBenchWorkDir writes a volume working directory with numChapters
// chapters, a handful of side stories, and numImages illustrations.
// Uses testing.B for fatal errors.
func buildBenchWorkDir(b *testing.B, numChapters, numImages int) string {
	b.Helper()
	root := b.TempDir()
	chapters := filepath.Join(root, string(KindChapters))
	images := filepath.Join(root, string(KindIllustrations))
	for _, d := range []string{chapters, images} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			b.Fatalf("buildBenchWorkDir: mkdir: %v", err)
		}
	}

	write := func(path, content string) {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			b.Fatalf("buildBenchWorkDir: write %s: %v", path, err)
		}
	}

	write(filepath.Join(chapters, "prologue.xhtml"), chapterDoc("Prologue"))
	for i := 1; i <= numChapters; i++ {
		write(filepath.Join(chapters, fmt.Sprintf("chp%d.xhtml", i)), fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter %d</title></head>
<body>
<h1>Chapter %d</h1>
<p>This is the opening paragraph of chapter %d. It contains enough text to simulate a realistic chapter for benchmark purposes.</p>
<p>The second paragraph continues the narrative with additional details and descriptions that help establish the setting and characters.</p>
<p>Finally, the chapter concludes with a closing paragraph that wraps up the events described in this section of the book.</p>
</body>
</html>`, i, i, i))
	}
	for i := 1; i <= 3; i++ {
		write(filepath.Join(chapters, fmt.Sprintf("ss%d.xhtml", i)), chapterDoc(fmt.Sprintf("Side Story %d", i)))
	}
	write(filepath.Join(chapters, "afterword.xhtml"), chapterDoc("Afterword"))

	img := make([]byte, 64*1024)
	for i := range img {
		img[i] = byte(i * 31)
	}
	for i := 1; i <= numImages; i++ {
		write(filepath.Join(images, fmt.Sprintf("p%03d.jpg", i)), string(img))
	}
	return root
}

// BenchmarkCollect measures directory enumeration and chapter ordering.
func BenchmarkCollect(b *testing.B) {
	root := buildBenchWorkDir(b, 100, 10)
	c := NewCollector(root, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		assets, err := c.Collect(true, true)
		if err != nil {
			b.Fatalf("Collect: %v", err)
		}
		if len(assets.Chapters) != 105 {
			b.Fatalf("Collect() found %d chapters, want 105", len(assets.Chapters))
		}
	}
}

// BenchmarkBuild measures a full collect, load and emit cycle across
// different chapter counts.
func BenchmarkBuild(b *testing.B) {
	for _, n := range []int{10, 50, 100} {
		b.Run(fmt.Sprintf("chapters_%d", n), func(b *testing.B) {
			root := buildBenchWorkDir(b, n, 5)
			out := b.TempDir()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				assets, err := NewCollector(root, nil).Collect(true, true)
				if err != nil {
					b.Fatalf("Collect: %v", err)
				}
				a, err := NewArchive("bench", out, Options{TOC: true})
				if err != nil {
					b.Fatalf("NewArchive: %v", err)
				}
				if err := a.Load(assets); err != nil {
					b.Fatalf("Load: %v", err)
				}
				if err := a.Emit(); err != nil {
					b.Fatalf("Emit: %v", err)
				}
			}
		})
	}
}

// BenchmarkInspect measures reading back a finished archive.
func BenchmarkInspect(b *testing.B) {
	root := buildBenchWorkDir(b, 50, 5)
	out := b.TempDir()
	assets, err := NewCollector(root, nil).Collect(true, true)
	if err != nil {
		b.Fatalf("Collect: %v", err)
	}
	a, err := NewArchive("bench", out, Options{TOC: true})
	if err != nil {
		b.Fatalf("NewArchive: %v", err)
	}
	if err := a.Load(assets); err != nil {
		b.Fatalf("Load: %v", err)
	}
	if err := a.Emit(); err != nil {
		b.Fatalf("Emit: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		info, err := Inspect(a.Path())
		if err != nil {
			b.Fatalf("Inspect: %v", err)
		}
		if len(info.TOC) != 55 {
			b.Fatalf("Inspect() TOC = %d items, want 55", len(info.TOC))
		}
	}
}

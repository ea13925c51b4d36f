package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChapter = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>Chapter</title></head><body><p>x</p></body></html>`

// writeVolume creates a volume directory named vol1 with two chapters and
// one illustration and returns its path.
func writeVolume(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "vol1")
	files := map[string]string{
		"chapters/chp2.xhtml":     testChapter,
		"chapters/chp1.xhtml":     testChapter,
		"illustrations/cover.png": "png",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

// clearEnv removes LNEPUB_* variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LNEPUB_OUTPUT_DIR", "LNEPUB_LANGUAGE", "LNEPUB_TOC", "LNEPUB_DEBUG", "LNEPUB_LOG_FORMAT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

/*
TestRun_Build builds a volume and checks the printed path and the archive.
*/
func TestRun_Build(t *testing.T) {
	clearEnv(t)
	dir := writeVolume(t)
	out := t.TempDir()

	code, stdout, stderr := runCLI(t, "-dir", dir, "-out", out, "-title", "Volume One", "-verify")
	require.Equal(t, exitOK, code, stderr)

	path := filepath.Join(out, "vol1.epub")
	assert.Equal(t, path, strings.TrimSpace(stdout))
	assert.Contains(t, stderr, "archive verified")

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	require.NotEmpty(t, names)
	assert.Equal(t, "mimetype", names[0])
	assert.Contains(t, names, "OEBPS/Text/chp1.xhtml")
	assert.Contains(t, names, "OEBPS/Images/cover.png")
	assert.Equal(t, "OEBPS/content.opf", names[len(names)-1])
}

/*
TestRun_Exclusions checks -no-chapters and -no-illustrations.
*/
func TestRun_Exclusions(t *testing.T) {
	clearEnv(t)
	dir := writeVolume(t)
	out := t.TempDir()

	code, _, stderr := runCLI(t, "-dir", dir, "-out", out, "-name", "text-only", "-no-illustrations")
	require.Equal(t, exitOK, code, stderr)

	zr, err := zip.OpenReader(filepath.Join(out, "text-only.epub"))
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		assert.False(t, strings.HasPrefix(f.Name, "OEBPS/Images/"), "unexpected image entry %s", f.Name)
	}
}

/*
TestRun_EnvironmentDefaults checks that LNEPUB_* variables feed the flags.
*/
func TestRun_EnvironmentDefaults(t *testing.T) {
	clearEnv(t)
	dir := writeVolume(t)
	out := t.TempDir()
	t.Setenv("LNEPUB_OUTPUT_DIR", out)
	t.Setenv("LNEPUB_LOG_FORMAT", "json")
	t.Setenv("LNEPUB_DEBUG", "true")

	code, stdout, stderr := runCLI(t, "-dir", dir)
	require.Equal(t, exitOK, code, stderr)

	assert.Equal(t, filepath.Join(out, "vol1.epub"), strings.TrimSpace(stdout))
	assert.Contains(t, stderr, `"app":"lnepub"`)
	assert.Contains(t, stderr, `"level":"DEBUG"`)
}

/*
TestRun_WarningsLoggedOnce checks that collector warnings reach the log a
single time.
*/
func TestRun_WarningsLoggedOnce(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "vol2")
	p := filepath.Join(dir, "chapters", "bonus.xhtml")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(testChapter), 0o644))

	code, _, stderr := runCLI(t, "-dir", dir, "-out", t.TempDir())
	require.Equal(t, exitOK, code, stderr)

	assert.Equal(t, 1, strings.Count(stderr, "nothing to include"), stderr)
	assert.Equal(t, 1, strings.Count(stderr, "bonus.xhtml"), stderr)
}

/*
TestRun_Usage covers invalid command lines and configuration.
*/
func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want int
	}{
		{"missing_dir", nil, nil, exitUsage},
		{"unknown_flag", nil, []string{"-bogus"}, exitUsage},
		{"extra_args", nil, []string{"-dir", "x", "y"}, exitUsage},
		{"bad_config", map[string]string{"LNEPUB_LOG_FORMAT": "xml"}, []string{"-dir", "x"}, exitUsage},
		{"help", nil, []string{"-h"}, exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			code, stdout, _ := runCLI(t, tt.args...)
			assert.Equal(t, tt.want, code)
			assert.Empty(t, stdout)
		})
	}
}

/*
TestRun_BuildFailure checks that an invalid language fails the build
without writing anything.
*/
func TestRun_BuildFailure(t *testing.T) {
	clearEnv(t)
	dir := writeVolume(t)
	out := t.TempDir()

	code, stdout, stderr := runCLI(t, "-dir", dir, "-out", out, "-lang", "not a tag!")
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "build failed")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

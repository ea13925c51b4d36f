// Command lnepub packs a scraped light-novel volume directory into an ePub 3
// file.
//
//	lnepub -dir files/otomege/vol1 -name otomege-v1 -title "Otomege Vol. 1"
//
// The volume directory holds chapters/*.xhtml and illustrations/*. The
// archive is written to <out>/<name>.epub and its path printed on stdout.
// Progress and warnings are logged to stderr.
//
// Defaults for -out, -lang and -toc come from LNEPUB_OUTPUT_DIR,
// LNEPUB_LANGUAGE and LNEPUB_TOC. LNEPUB_DEBUG=true enables debug logging
// and LNEPUB_LOG_FORMAT=json switches the log output to JSON.
//
// Exit status is 0 on success, 1 when the build or verification fails and
// 2 on invalid usage or configuration.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	epub "github.com/simp-lee/lnepub"
	"github.com/simp-lee/lnepub/internal/config"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	dir             string
	name            string
	title           string
	out             string
	lang            string
	toc             bool
	noChapters      bool
	noIllustrations bool
	verify          bool
}

// run is main without the process exit, so tests can drive it.
func run(args []string, stdout, stderr io.Writer) int {
	// ── 1. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "lnepub:", err)
		return exitUsage
	}

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log := newLogger(cfg, stderr)

	// ── 3. Flags ──────────────────────────────────────────────────────────
	opts, err := parseFlags(args, cfg, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, "lnepub:", err)
		return exitUsage
	}

	// ── 4. Build ──────────────────────────────────────────────────────────
	path, err := build(opts, log)
	if err != nil {
		log.Error("build failed", slog.Any("error", err))
		return exitFailure
	}
	fmt.Fprintln(stdout, path)

	// ── 5. Verification ───────────────────────────────────────────────────
	if opts.verify {
		if err := verify(path, log); err != nil {
			log.Error("verification failed", slog.String("path", path), slog.Any("error", err))
			return exitFailure
		}
	}
	return exitOK
}

// newLogger builds the stderr logger described by cfg.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.JSONLogs() {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(h).With(slog.String("app", "lnepub"))
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("lnepub", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dir, "dir", "", "volume working directory containing chapters/ and illustrations/ (required)")
	fs.StringVar(&o.name, "name", "", "archive name without extension (default: base name of -dir)")
	fs.StringVar(&o.title, "title", "", "book title (default: archive name)")
	fs.StringVar(&o.out, "out", cfg.OutputDir, "output directory")
	fs.StringVar(&o.lang, "lang", cfg.Language, "BCP 47 language tag")
	fs.BoolVar(&o.toc, "toc", cfg.TOC, "list chapters in the navigation document")
	fs.BoolVar(&o.noChapters, "no-chapters", false, "leave chapters out of the archive")
	fs.BoolVar(&o.noIllustrations, "no-illustrations", false, "leave illustrations out of the archive")
	fs.BoolVar(&o.verify, "verify", false, "read the finished archive back and fail on structural warnings")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if o.dir == "" {
		return nil, errors.New("-dir is required")
	}
	if o.name == "" {
		o.name = filepath.Base(filepath.Clean(o.dir))
	}
	return &o, nil
}

// build collects the volume directory and emits the archive. It returns the
// path of the written file.
func build(o *options, log *slog.Logger) (string, error) {
	assets, err := epub.NewCollector(o.dir, log).Collect(!o.noChapters, !o.noIllustrations)
	if err != nil {
		return "", err
	}

	a, err := epub.NewArchive(o.name, o.out, epub.Options{
		Title:    o.title,
		Language: o.lang,
		TOC:      o.toc,
		Logger:   log,
	})
	if err != nil {
		return "", err
	}
	defer a.Close()

	if err := a.Load(assets); err != nil {
		return "", err
	}
	if err := a.Emit(); err != nil {
		return "", err
	}
	return a.Path(), nil
}

// verify inspects the archive at path and fails if it reports warnings.
func verify(path string, log *slog.Logger) error {
	info, err := epub.Inspect(path)
	if err != nil {
		return err
	}
	for _, w := range info.Warnings {
		log.Warn("archive check", slog.String("warning", w))
	}
	if n := len(info.Warnings); n > 0 {
		return fmt.Errorf("%d structural warning(s)", n)
	}

	log.Info("archive verified",
		slog.String("title", info.Title),
		slog.String("identifier", info.Identifier),
		slog.Int("manifest", len(info.Manifest)),
		slog.Int("spine", len(info.Spine)),
	)
	return nil
}

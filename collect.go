package epub

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Collector discovers chapter and illustration files in a volume working
// directory laid out as <root>/chapters and <root>/illustrations.
//
// A Collector holds no state between calls; Collect may be called any
// number of times.
type Collector struct {
	root string
	log  *slog.Logger
}

// NewCollector returns a Collector for the working directory root. A nil
// logger discards log output.
func NewCollector(root string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{root: root, log: logger}
}

// Root returns the working directory.
func (c *Collector) Root() string { return c.root }

// Collect enumerates the requested asset categories.
//
// A requested directory that does not exist is not an error: the category
// is recorded in Assets.Missing and skipped, and an error wrapping
// ErrMissingAssetDir is added to Assets.Errors. Files with unsupported
// extensions are excluded and listed in Assets.Skipped. Unreadable
// subdirectories are skipped with a warning. Every warning is also logged.
//
// The error is non-nil only when root exists but is not a directory or
// cannot be examined.
func (c *Collector) Collect(includeChapters, includeIllustrations bool) (Assets, error) {
	var a Assets

	if info, err := os.Stat(c.root); err == nil && !info.IsDir() {
		return a, fmt.Errorf("epub: working path %s is not a directory", c.root)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return a, fmt.Errorf("epub: stat working path %s: %w", c.root, err)
	}

	if includeChapters {
		c.walk(&a, KindChapters, func(path string) bool {
			ch, ok := newChapter(path)
			if ok {
				a.Chapters = append(a.Chapters, ch)
			}
			return ok
		})
		slices.SortStableFunc(a.Chapters, compareChapters)
		for _, ch := range a.Chapters {
			if ch.Role.Kind() == RoleUnknown {
				a.Warnings = append(a.Warnings, fmt.Sprintf(
					"chapter %q does not follow the naming convention (%s, %s, %s, ...); placed last",
					ch.Name, Prologue().Filename(), Numbered(1).Filename(), SideStory(1).Filename()))
				c.log.Warn("chapter placed last", slog.String("name", ch.Name))
			}
		}
	}

	if includeIllustrations {
		c.walk(&a, KindIllustrations, func(path string) bool {
			img, ok := newIllustration(path)
			if ok {
				a.Illustrations = append(a.Illustrations, img)
			}
			return ok
		})
		slices.SortStableFunc(a.Illustrations, func(x, y IllustrationAsset) int {
			return strings.Compare(x.Name, y.Name)
		})
	}

	c.log.Info("assets collected",
		slog.String("root", c.root),
		slog.Int("chapters", len(a.Chapters)),
		slog.Int("illustrations", len(a.Illustrations)),
		slog.Int("skipped", len(a.Skipped)),
	)
	return a, nil
}

// walk enumerates the regular files under <root>/<kind>. accept is called
// for each file and reports whether the file was taken; rejected files are
// recorded as skipped.
func (c *Collector) walk(a *Assets, kind AssetKind, accept func(path string) bool) {
	dir := filepath.Join(c.root, string(kind))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		a.Missing = append(a.Missing, kind)
		a.problem(fmt.Errorf("%w: %s", ErrMissingAssetDir, dir))
		c.log.Warn("nothing to include", slog.String("kind", string(kind)), slog.String("dir", dir))
		return
	}

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			a.problem(fmt.Errorf("cannot read %s: %w", path, err))
			c.log.Warn("unreadable asset path", slog.String("path", path), slog.Any("error", err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !accept(path) {
			a.Skipped = append(a.Skipped, path)
			c.log.Debug("unrecognized asset type", slog.String("kind", string(kind)), slog.String("path", path))
		}
		return nil
	})
}

// problem records a non-fatal error in both Errors and Warnings.
func (a *Assets) problem(err error) {
	a.Errors = append(a.Errors, err)
	a.Warnings = append(a.Warnings, err.Error())
}

package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// archiveExt is the extension of the finished file.
const archiveExt = ".epub"

// Options configures an Archive. The zero value is valid.
type Options struct {
	// Title is the dc:title. Defaults to the archive name.
	Title string

	// Language is a BCP 47 tag for dc:language. Defaults to DefaultLanguage.
	Language string

	// TOC fills the navigation document with one entry per chapter instead
	// of the empty list.
	TOC bool

	// Logger receives build progress. Defaults to a discarding logger.
	Logger *slog.Logger
}

type archiveState int

const (
	stateEmpty archiveState = iota
	stateLoaded
	stateFinalized
)

// Archive builds a single ePub 3 file. Create one per book or volume with
// NewArchive, add assets with Load, and write the file with Emit.
//
// The archive is written to a temporary file in the output directory and
// renamed to <name>.epub only after a successful Emit, so an aborted or
// failed build never leaves a complete-looking file behind.
//
// An Archive is not safe for concurrent use by multiple goroutines.
type Archive struct {
	name    string
	outPath string
	lang    string
	toc     bool
	log     *slog.Logger
	now     func() time.Time

	chapters      []ChapterAsset
	illustrations []IllustrationAsset
	sources       map[string]bool // cleaned source paths already loaded
	entries       map[string]bool // ZIP entry names already claimed

	file *os.File
	zw   *zip.Writer
	pkg  *PackageDescriptor

	state    archiveState
	warnings []string
}

// NewArchive prepares an archive named name (the ".epub" suffix is
// optional) in outputDir, creating the directory if needed. An empty
// outputDir means the current directory.
//
// It returns an error wrapping ErrArchiveIO when the destination cannot be
// opened for writing.
func NewArchive(name, outputDir string, opts Options) (*Archive, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), archiveExt)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("epub: invalid archive name %q", name)
	}
	if outputDir == "" {
		outputDir = "."
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	title := opts.Title
	if title == "" {
		title = name
	}

	pkg, err := newPackageSkeleton(title, opts.Language, time.Now)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("epub: create output directory %s: %w: %w", outputDir, ErrArchiveIO, err)
	}
	f, err := os.CreateTemp(outputDir, "."+name+"-*"+archiveExt+".part")
	if err != nil {
		return nil, fmt.Errorf("epub: open archive for %s: %w: %w", name, ErrArchiveIO, err)
	}

	a := &Archive{
		name:    name,
		outPath: filepath.Join(outputDir, name+archiveExt),
		lang:    pkg.Language,
		toc:     opts.TOC,
		log:     logger.With(slog.String("archive", name)),
		now:     time.Now,
		sources: make(map[string]bool),
		entries: map[string]bool{
			mimetypePath:   true,
			containerPath:  true,
			stylesheetPath: true,
			navPath:        true,
			packagePath:    true,
		},
		file: f,
		zw:   zip.NewWriter(f),
		pkg:  pkg,
	}
	return a, nil
}

// Name returns the archive name without extension.
func (a *Archive) Name() string { return a.name }

// Path returns the destination path <outputDir>/<name>.epub. The file
// exists only after a successful Emit.
func (a *Archive) Path() string { return a.outPath }

// Load adds collected assets. It may be called several times; assets whose
// source path was already loaded are ignored, and an asset whose filename
// would collide with an existing archive entry is skipped with a warning.
// Chapters are kept in reading order regardless of load order.
//
// Load returns ErrFinalized after Emit or Close.
func (a *Archive) Load(assets Assets) error {
	if a.state == stateFinalized {
		return ErrFinalized
	}

	for _, ch := range assets.Chapters {
		if a.claim(ch.Path, textDir+ch.Name) {
			a.chapters = append(a.chapters, ch)
		}
	}
	for _, img := range assets.Illustrations {
		if a.claim(img.Path, imagesDir+img.Name) {
			a.illustrations = append(a.illustrations, img)
		}
	}
	slices.SortStableFunc(a.chapters, compareChapters)

	a.state = stateLoaded
	a.log.Debug("assets loaded",
		slog.Int("chapters", len(a.chapters)),
		slog.Int("illustrations", len(a.illustrations)),
	)
	return nil
}

// claim registers a source file and its archive entry name. It reports
// false when either is already taken.
func (a *Archive) claim(source, entry string) bool {
	key := filepath.Clean(source)
	if abs, err := filepath.Abs(source); err == nil {
		key = abs
	}
	if a.sources[key] {
		return false
	}
	if a.entries[entry] {
		a.warn(fmt.Sprintf("skipping %s: archive entry %s already in use", source, entry))
		return false
	}
	a.sources[key] = true
	a.entries[entry] = true
	return true
}

// Emit writes the archive and finalizes the builder. Entries are written in
// this order: mimetype (stored), META-INF/container.xml, the stylesheet,
// the navigation document, each chapter (manifest + linear spine entry),
// each illustration (manifest only), and OEBPS/content.opf. Manifest and
// nav hrefs are percent-escaped; entry names keep the raw filename.
//
// Any failure is wrapped with ErrArchiveIO and the partial file is
// removed. A second call returns ErrFinalized.
func (a *Archive) Emit() error {
	if a.state == stateFinalized {
		return ErrFinalized
	}
	a.state = stateFinalized

	start := a.now()
	if err := a.emit(); err != nil {
		a.discard()
		a.log.Error("emit failed", slog.Any("error", err))
		return fmt.Errorf("epub: emit %s: %w: %w", a.outPath, ErrArchiveIO, err)
	}

	a.log.Info("archive written",
		slog.String("path", a.outPath),
		slog.Int("chapters", len(a.chapters)),
		slog.Int("illustrations", len(a.illustrations)),
		slog.Duration("elapsed", a.now().Sub(start)),
	)
	return nil
}

func (a *Archive) emit() error {
	modified := a.now().UTC().Truncate(time.Second)
	a.pkg.Modified = modified

	if err := writeStored(a.zw, mimetypePath, []byte(mimetype)); err != nil {
		return err
	}
	if _, err := writeDeflated(a.zw, containerPath, modified, bytes.NewReader(ContainerXML())); err != nil {
		return err
	}
	if _, err := writeDeflated(a.zw, stylesheetPath, modified, strings.NewReader(stylesheet)); err != nil {
		return err
	}

	nav, err := NavDocument(a.lang, a.navEntries())
	if err != nil {
		return err
	}
	if _, err := writeDeflated(a.zw, navPath, modified, bytes.NewReader(nav)); err != nil {
		return err
	}

	for _, ch := range a.chapters {
		if err := a.copyAsset(ch.Path, textDir+ch.Name, modified); err != nil {
			return err
		}
		id := a.pkg.addItem(ch.Name, "Text/"+url.PathEscape(ch.Name), mediaTypeXHTML, "")
		a.pkg.addSpine(id, true)
	}

	for _, img := range a.illustrations {
		if err := a.copyAsset(img.Path, imagesDir+img.Name, modified); err != nil {
			return err
		}
		cover := img.Cover && !a.pkg.hasCover()
		props := ""
		if cover {
			props = "cover-image"
		}
		id := a.pkg.addItem(img.Name, "Images/"+url.PathEscape(img.Name), img.MediaType, props)
		if cover {
			a.pkg.markCover(id)
		}
	}

	opf, err := a.pkg.Marshal()
	if err != nil {
		return err
	}
	if _, err := writeDeflated(a.zw, packagePath, modified, bytes.NewReader(opf)); err != nil {
		return err
	}

	if err := a.zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	if err := a.file.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(a.file.Name(), a.outPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// copyAsset streams the file at src into the archive entry name.
func (a *Archive) copyAsset(src, name string, modified time.Time) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	n, err := writeDeflated(a.zw, name, modified, f)
	if err != nil {
		return err
	}
	a.log.Debug("entry written", slog.String("entry", name), slog.Int64("bytes", n))
	return nil
}

// navEntries returns the table of contents for the navigation document:
// nil unless TOC is enabled, otherwise one entry per chapter in spine order.
func (a *Archive) navEntries() []NavEntry {
	if !a.toc {
		return nil
	}
	entries := make([]NavEntry, 0, len(a.chapters))
	for _, ch := range a.chapters {
		entries = append(entries, NavEntry{Title: a.chapterTitle(ch), Href: url.PathEscape(ch.Name)})
	}
	return entries
}

// chapterTitle picks the display title for ch: the document's own title,
// else the role label, else the filename stem.
func (a *Archive) chapterTitle(ch ChapterAsset) string {
	if data, err := os.ReadFile(ch.Path); err == nil {
		if t := chapterTitle(data); t != "" {
			return t
		}
	} else {
		// The copy step reports the error.
		a.log.Debug("cannot read chapter title", slog.String("path", ch.Path), slog.Any("error", err))
	}
	if l := ch.Role.Label(); l != "" {
		return l
	}
	return strings.TrimSuffix(ch.Name, filepath.Ext(ch.Name))
}

// Close abandons an archive that was never emitted and removes its
// temporary file. After Emit, Close does nothing. Close is idempotent.
func (a *Archive) Close() error {
	if a.state == stateFinalized {
		return nil
	}
	a.state = stateFinalized
	return a.discard()
}

// discard closes and removes the temporary file.
func (a *Archive) discard() error {
	_ = a.zw.Close()
	_ = a.file.Close()
	if err := os.Remove(a.file.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("epub: remove partial archive: %w", err)
	}
	return nil
}

func (a *Archive) warn(msg string) {
	a.warnings = append(a.warnings, msg)
	a.log.Warn(msg)
}

// Warnings returns the non-fatal conditions recorded while loading.
func (a *Archive) Warnings() []string {
	return append([]string(nil), a.warnings...)
}

// Chapters returns the loaded chapters in reading order.
func (a *Archive) Chapters() []ChapterAsset {
	return append([]ChapterAsset(nil), a.chapters...)
}

// Illustrations returns the loaded illustrations.
func (a *Archive) Illustrations() []IllustrationAsset {
	return append([]IllustrationAsset(nil), a.illustrations...)
}

// Manifest returns the package manifest. Before Emit it holds only the
// stylesheet and navigation document.
func (a *Archive) Manifest() []ManifestItem { return a.pkg.Manifest() }

// Spine returns the package spine. Before Emit it holds only the
// non-linear navigation document.
func (a *Archive) Spine() []SpineItem { return a.pkg.Spine() }

// Identifier returns the urn:uuid identifier of the package.
func (a *Archive) Identifier() string { return a.pkg.Identifier }

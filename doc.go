// Package epub builds ePub 3 archives from chapters and illustrations that
// a scraper has saved into a volume working directory.
//
// The working directory is expected to look like this:
//
//	<root>/chapters/prologue.xhtml
//	<root>/chapters/chp1.xhtml
//	<root>/chapters/ss1.xhtml
//	<root>/illustrations/cover.jpg
//
// Either subdirectory may be missing; the corresponding asset category is
// then skipped.
//
// # Building an archive
//
// Use a [Collector] to enumerate the assets, then an [Archive] to write
// them out:
//
//	assets, err := epub.NewCollector("work/vol1", nil).Collect(true, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, err := epub.NewArchive("vol1", "out", epub.Options{Title: "Volume 1"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//	if err := a.Load(assets); err != nil {
//	    log.Fatal(err)
//	}
//	if err := a.Emit(); err != nil {
//	    log.Fatal(err)
//	}
//
// Emit writes out/vol1.epub. Until it succeeds the output lives in a
// hidden temporary file beside the destination, which Close removes.
//
// # Chapter order
//
// Chapter filenames encode their role in the book: prologue, chpN, ssN,
// interludeN, extraN, afterword and epilogue. [ParseChapterRole] decodes
// a filename and [ChapterRole.Compare] defines the reading order.
// Files that do not follow the convention are kept and placed last.
//
// # Archive layout
//
// The mimetype entry is written first and uncompressed. The remaining
// entries follow in a fixed order: META-INF/container.xml, the stylesheet,
// the navigation document, chapters under OEBPS/Text/, illustrations under
// OEBPS/Images/, and finally OEBPS/content.opf.
//
// # Inspecting an archive
//
// [Inspect] reads back an ePub file and reports its package metadata,
// manifest, spine and table of contents, along with any structural
// warnings.
//
// # Error Handling
//
// Operations return these sentinel errors, wrapped, on failure:
//   - [ErrArchiveIO] – the output archive could not be written
//   - [ErrFinalized] – the archive was already emitted or closed
//   - [ErrInvalidEPub] – an inspected file is structurally invalid
//
// Non-fatal conditions do not fail the call. They are reported in
// [Assets].Errors and [PackageInfo].Errors, where errors.Is matches:
//   - [ErrMissingAssetDir] – an asset subdirectory does not exist
//   - [ErrFileNotFound] – a manifest item has no archive entry
package epub

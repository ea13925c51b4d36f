package epub

import "time"

// ChapterAsset is a pre-rendered XHTML chapter document on disk.
// Chapter assets are produced by the extraction pipeline and are never
// modified by this package.
type ChapterAsset struct {
	// Path is the filesystem location of the chapter document.
	Path string

	// Name is the base filename (e.g., "chp2.xhtml"). It becomes the
	// archive path OEBPS/Text/<Name>.
	Name string

	// Role is the structural role parsed from Name. It determines the
	// chapter's position in the spine.
	Role ChapterRole
}

// IllustrationAsset is a downloaded image on disk.
type IllustrationAsset struct {
	// Path is the filesystem location of the image.
	Path string

	// Name is the base filename. It becomes OEBPS/Images/<Name>.
	Name string

	// Ext is the lowercased extension, one of ".png", ".jpg", ".jpeg", ".gif".
	Ext string

	// MediaType is the MIME type derived from Ext.
	MediaType string

	// Cover reports whether the file stem is "cover" (case-insensitive).
	Cover bool
}

// AssetKind names one of the two asset categories of a volume directory.
type AssetKind string

const (
	KindChapters      AssetKind = "chapters"
	KindIllustrations AssetKind = "illustrations"
)

// Assets is the result of a collection pass over a working directory.
type Assets struct {
	// Chapters is sorted in final reading order.
	Chapters []ChapterAsset

	// Illustrations is sorted by filename.
	Illustrations []IllustrationAsset

	// Missing lists the requested categories whose directory was absent.
	Missing []AssetKind

	// Skipped lists files excluded because their extension is not
	// supported for their category.
	Skipped []string

	// Errors holds the non-fatal errors among Warnings: missing
	// directories wrap ErrMissingAssetDir, unreadable paths wrap the
	// underlying fs error.
	Errors []error

	// Warnings holds human-readable descriptions of non-fatal conditions.
	Warnings []string
}

// ManifestItem is an entry in the OPF <manifest>.
type ManifestItem struct {
	// ID is unique within the archive.
	ID string

	// Href is the path relative to the package document (OEBPS/).
	Href string

	// MediaType is the MIME type of the resource.
	MediaType string

	// Properties holds space-separated ePub 3 properties (e.g., "nav").
	Properties string
}

// SpineItem is an entry in the OPF <spine>.
type SpineItem struct {
	// IDRef references a ManifestItem.ID.
	IDRef string

	// Linear reports whether the item is part of the linear reading order.
	Linear bool
}

// NavEntry is a single table-of-contents link in the navigation document.
type NavEntry struct {
	Title string
	Href  string
}

// TOCItem is a table-of-contents entry read back from a nav document.
type TOCItem struct {
	Title string

	// Href is the ZIP-internal path of the target, fragment preserved.
	Href string

	Children []TOCItem
}

// PackageInfo is the parsed view of a finished ePub archive.
type PackageInfo struct {
	// Version is the package version attribute (e.g., "3.0").
	Version string

	// OPFPath is the ZIP-internal path of the package document.
	OPFPath string

	Title      string
	Language   string
	Identifier string

	// Modified is the dcterms:modified timestamp; zero if absent or malformed.
	Modified time.Time

	Manifest []ManifestItem
	Spine    []SpineItem
	TOC      []TOCItem

	// Landmarks holds the entries of the landmarks nav, if any.
	Landmarks []TOCItem

	// Errors holds the broken references among Warnings. A manifest item
	// with no archive entry wraps ErrFileNotFound.
	Errors []error

	// Warnings holds non-fatal structural deviations, such as a mimetype
	// entry that is compressed or not first.
	Warnings []string
}

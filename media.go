package epub

import (
	"path/filepath"
	"strings"
)

// Media types written to the manifest.
const (
	mediaTypeXHTML = "application/xhtml+xml"
	mediaTypeCSS   = "text/css"
	mediaTypePNG   = "image/png"
	mediaTypeJPEG  = "image/jpeg"
	mediaTypeGIF   = "image/gif"
)

// imageMediaTypes is the closed set of supported illustration extensions.
var imageMediaTypes = map[string]string{
	".png":  mediaTypePNG,
	".jpg":  mediaTypeJPEG,
	".jpeg": mediaTypeJPEG,
	".gif":  mediaTypeGIF,
}

// ImageMediaType returns the media type for an illustration filename,
// matching the extension case-insensitively ("photo.JPG" → image/jpeg).
// The second result is false for unsupported extensions.
func ImageMediaType(name string) (string, bool) {
	mt, ok := imageMediaTypes[strings.ToLower(filepath.Ext(name))]
	return mt, ok
}

// isChapterFile reports whether name has the chapter document extension.
func isChapterFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), chapterExt)
}

// isCoverName reports whether an illustration filename designates the
// cover image: its stem is "cover", case-insensitively.
func isCoverName(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(strings.TrimSuffix(base, filepath.Ext(base)), "cover")
}

// newIllustration builds an IllustrationAsset for path, or returns false
// when the extension is not a supported image type.
func newIllustration(path string) (IllustrationAsset, bool) {
	name := filepath.Base(path)
	mt, ok := ImageMediaType(name)
	if !ok {
		return IllustrationAsset{}, false
	}
	return IllustrationAsset{
		Path:      path,
		Name:      name,
		Ext:       strings.ToLower(filepath.Ext(name)),
		MediaType: mt,
		Cover:     isCoverName(name),
	}, true
}

// newChapter builds a ChapterAsset for path, or returns false when the
// file is not a chapter document. Names outside the naming convention are
// accepted with RoleUnknown.
func newChapter(path string) (ChapterAsset, bool) {
	name := filepath.Base(path)
	if !isChapterFile(name) {
		return ChapterAsset{}, false
	}
	role, _ := ParseChapterRole(name)
	return ChapterAsset{Path: path, Name: name, Role: role}, true
}

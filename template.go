package epub

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// mimetype is the required content of the "mimetype" entry.
const mimetype = "application/epub+zip"

// Archive paths of the fixed entries. Hrefs are relative to OEBPS/.
const (
	mimetypePath   = "mimetype"
	stylesheetPath = "OEBPS/Styles/sgc-nav.css"
	navPath        = "OEBPS/Text/nav.xhtml"
	textDir        = "OEBPS/Text/"
	imagesDir      = "OEBPS/Images/"

	stylesheetHref = "Styles/sgc-nav.css"
	navHref        = "Text/nav.xhtml"
	stylesheetName = "sgc-nav.css"
	navName        = "nav.xhtml"
)

// DefaultLanguage is the dc:language used when none is configured.
const DefaultLanguage = "en"

// stylesheet hides the landmarks and page-list navs and drops list markers
// from the table of contents.
const stylesheet = `nav#landmarks {display:none;}
nav#page-list {display:none;}
ol {list-style-type: none;}
`

// Mimetype returns the literal content of the OCF mimetype entry.
func Mimetype() string { return mimetype }

// Stylesheet returns the CSS referenced by the navigation document.
func Stylesheet() string { return stylesheet }

// NewPackageSkeleton returns a package descriptor holding the metadata and
// the two entries every archive carries: the stylesheet and the
// navigation document (properties="nav", spine linear="no").
//
// Each call generates a new urn:uuid identifier and stamps the current UTC
// time as dcterms:modified. An empty lang selects DefaultLanguage.
func NewPackageSkeleton(title, lang string) (*PackageDescriptor, error) {
	return newPackageSkeleton(title, lang, time.Now)
}

func newPackageSkeleton(title, lang string, now func() time.Time) (*PackageDescriptor, error) {
	tag, err := canonicalLanguage(lang)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("epub: generate identifier: %w", err)
	}

	p := &PackageDescriptor{
		Title:      title,
		Language:   tag,
		Identifier: id.URN(),
		Modified:   now().UTC().Truncate(time.Second),
		ids:        make(idSet),
	}
	p.addItem(stylesheetName, stylesheetHref, mediaTypeCSS, "")
	navID := p.addItem(navName, navHref, mediaTypeXHTML, "nav")
	p.addSpine(navID, false)
	return p, nil
}

// canonicalLanguage validates a BCP 47 tag and returns its canonical form
// ("EN-us" → "en-US").
func canonicalLanguage(lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLanguage, nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("epub: invalid language tag %q: %w", lang, err)
	}
	return tag.String(), nil
}

package epub

import (
	"encoding/xml"
	"fmt"
	"time"
)

// XML namespaces and fixed values of the package document.
const (
	opfNamespace     = "http://www.idpf.org/2007/opf"
	dcNamespace      = "http://purl.org/dc/elements/1.1/"
	packageVersion   = "3.0"
	uniqueIdentifier = "book_id"
	modifiedProperty = "dcterms:modified"
	modifiedLayout   = "2006-01-02T15:04:05Z"
)

// PackageDescriptor is the in-progress content.opf: metadata, manifest
// and spine. The zero value is not usable; create one with
// NewPackageSkeleton.
type PackageDescriptor struct {
	Title      string
	Language   string
	Identifier string
	Modified   time.Time

	manifest []ManifestItem
	spine    []SpineItem
	ids      idSet
	coverID  string
}

// Manifest returns a copy of the manifest items in document order.
func (p *PackageDescriptor) Manifest() []ManifestItem {
	return append([]ManifestItem(nil), p.manifest...)
}

// Spine returns a copy of the spine items in reading order.
func (p *PackageDescriptor) Spine() []SpineItem {
	return append([]SpineItem(nil), p.spine...)
}

// addItem appends a manifest item for the archive file href, allocating a
// unique ID from name. It returns the allocated ID.
func (p *PackageDescriptor) addItem(name, href, mediaType, properties string) string {
	id := p.ids.unique(name)
	p.manifest = append(p.manifest, ManifestItem{
		ID:         id,
		Href:       href,
		MediaType:  mediaType,
		Properties: properties,
	})
	return id
}

// addSpine appends an itemref to the spine.
func (p *PackageDescriptor) addSpine(idref string, linear bool) {
	p.spine = append(p.spine, SpineItem{IDRef: idref, Linear: linear})
}

// hasCover reports whether a cover image has been marked.
func (p *PackageDescriptor) hasCover() bool { return p.coverID != "" }

// markCover records the manifest ID of the cover image for the ePub 2
// <meta name="cover"> fallback.
func (p *PackageDescriptor) markCover(id string) { p.coverID = id }

// Marshal renders the package document as XML with a declaration.
func (p *PackageDescriptor) Marshal() ([]byte, error) {
	doc := opfDocument{
		Xmlns:            opfNamespace,
		Version:          packageVersion,
		UniqueIdentifier: uniqueIdentifier,
		Metadata: opfWriteMetadata{
			XmlnsDC:    dcNamespace,
			Language:   p.Language,
			Identifier: opfWriteIdentifier{ID: uniqueIdentifier, Value: p.Identifier},
			Title:      p.Title,
			Metas: []opfWriteMeta{{
				Property: modifiedProperty,
				Value:    p.Modified.UTC().Format(modifiedLayout),
			}},
		},
	}
	if p.coverID != "" {
		doc.Metadata.Metas = append(doc.Metadata.Metas, opfWriteMeta{Name: "cover", Content: p.coverID})
	}

	doc.Manifest.Items = make([]opfManifestItem, 0, len(p.manifest))
	for _, it := range p.manifest {
		doc.Manifest.Items = append(doc.Manifest.Items, opfManifestItem(it))
	}

	doc.Spine.ItemRefs = make([]opfSpineItemRef, 0, len(p.spine))
	for _, it := range p.spine {
		linear := "yes"
		if !it.Linear {
			linear = "no"
		}
		doc.Spine.ItemRefs = append(doc.Spine.ItemRefs, opfSpineItemRef{IDRef: it.IDRef, Linear: linear})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("epub: marshal package document: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// --- write model ---
//
// encoding/xml writes element and attribute names verbatim when the tag has
// no namespace part, which is how the dc: prefix and the xmlns:dc
// declaration are produced.

// opfDocument is the root <package> element as written.
type opfDocument struct {
	XMLName          xml.Name         `xml:"package"`
	Xmlns            string           `xml:"xmlns,attr"`
	Version          string           `xml:"version,attr"`
	UniqueIdentifier string           `xml:"unique-identifier,attr"`
	Metadata         opfWriteMetadata `xml:"metadata"`
	Manifest         opfManifest      `xml:"manifest"`
	Spine            opfSpine         `xml:"spine"`
}

type opfWriteMetadata struct {
	XmlnsDC    string             `xml:"xmlns:dc,attr"`
	Language   string             `xml:"dc:language"`
	Identifier opfWriteIdentifier `xml:"dc:identifier"`
	Title      string             `xml:"dc:title"`
	Metas      []opfWriteMeta     `xml:"meta"`
}

type opfWriteIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

// opfWriteMeta covers both the ePub 3 property form and the ePub 2
// name/content form used for the cover.
type opfWriteMeta struct {
	Property string `xml:"property,attr,omitempty"`
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Value    string `xml:",chardata"`
}

// --- read model ---

// opfPackage represents the root <package> element of an OPF file.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

// opfMetadata holds the raw metadata elements from the OPF file.
type opfMetadata struct {
	Titles      []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ title"`
	Languages   []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifiers []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Metas       []opfMeta      `xml:"meta"`
}

// opfDCElement holds a Dublin Core element.
type opfDCElement struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr"`
}

// opfMeta represents a <meta> element in the OPF metadata.
// ePub 2: <meta name="..." content="..."/>
// ePub 3: <meta property="...">value</meta>
type opfMeta struct {
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Property string `xml:"property,attr"`
	Value    string `xml:",chardata"`
}

// --- shared ---

// opfManifest wraps the <manifest> element.
type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

// opfManifestItem represents a single <item> in the manifest. Its field
// set mirrors ManifestItem so the two convert directly.
type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

// opfSpine wraps the <spine> element.
type opfSpine struct {
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

// opfSpineItemRef represents a single <itemref> in the spine.
type opfSpineItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr,omitempty"`
}

// parseOPF parses the OPF file content and returns the parsed package structure.
func parseOPF(data []byte) (*opfPackage, error) {
	data = preprocessHTMLEntities(data)
	data = stripBOM(data)

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse OPF: %w", err)
	}

	if pkg.Version == "" {
		// Default to 2.0 if version attribute is missing.
		pkg.Version = "2.0"
	}

	return &pkg, nil
}

// buildManifest converts the parsed manifest into ManifestItem values,
// preserving document order.
func buildManifest(manifest opfManifest) []ManifestItem {
	items := make([]ManifestItem, 0, len(manifest.Items))
	for _, it := range manifest.Items {
		items = append(items, ManifestItem(it))
	}
	return items
}

// buildSpine converts the parsed spine into SpineItem values. An absent
// linear attribute means linear="yes".
func buildSpine(spine opfSpine) []SpineItem {
	items := make([]SpineItem, 0, len(spine.ItemRefs))
	for _, ref := range spine.ItemRefs {
		items = append(items, SpineItem{
			IDRef:  ref.IDRef,
			Linear: ref.Linear != "no",
		})
	}
	return items
}

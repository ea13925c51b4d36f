package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"
)

// Inspect opens the ePub file at path and returns its parsed package.
// Structural deviations that readers commonly tolerate (mimetype entry not
// first, compressed, or with unexpected content) are reported in
// PackageInfo.Warnings rather than as errors.
func Inspect(path string) (*PackageInfo, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", path, err)
	}
	defer zrc.Close()

	return inspectZip(&zrc.Reader)
}

// InspectReader is like Inspect but reads from an io.ReaderAt of the
// given size.
func InspectReader(r io.ReaderAt, size int64) (*PackageInfo, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epub: open zip: %w", err)
	}
	return inspectZip(zr)
}

func inspectZip(zr *zip.Reader) (*PackageInfo, error) {
	info := &PackageInfo{}
	info.Warnings = checkMimetype(zr)

	opfPath, err := parseContainer(zr)
	if err != nil {
		return nil, err
	}
	info.OPFPath = opfPath

	opfFile := findFileInsensitive(zr, opfPath)
	if opfFile == nil {
		return nil, fmt.Errorf("epub: OPF file not found in archive: %s: %w", opfPath, ErrInvalidEPub)
	}
	opfData, err := readZipFile(opfFile)
	if err != nil {
		return nil, fmt.Errorf("epub: read OPF file: %w", err)
	}
	pkg, err := parseOPF(opfData)
	if err != nil {
		return nil, err
	}

	info.Version = pkg.Version
	info.Manifest = buildManifest(pkg.Manifest)
	info.Spine = buildSpine(pkg.Spine)
	extractMetadata(pkg, info)

	for _, err := range checkReferences(zr, opfPath, info) {
		info.Errors = append(info.Errors, err)
		info.Warnings = append(info.Warnings, err.Error())
	}

	if nav := navItem(info.Manifest); nav != nil {
		navPath := resolveRelativePath(opfPath, nav.Href)
		if f := findFileInsensitive(zr, navPath); f == nil {
			info.Warnings = append(info.Warnings, fmt.Sprintf("nav document %s missing", navPath))
		} else if data, err := readZipFile(f); err != nil {
			info.Warnings = append(info.Warnings, fmt.Sprintf("failed to read nav document: %v", err))
		} else if toc, landmarks, err := parseNavDocument(data, navPath); err != nil {
			info.Warnings = append(info.Warnings, fmt.Sprintf("failed to parse nav document: %v", err))
		} else {
			info.TOC = toc
			info.Landmarks = landmarks
		}
	}

	return info, nil
}

// checkMimetype verifies that the first ZIP entry is an uncompressed
// "mimetype" containing "application/epub+zip".
func checkMimetype(zr *zip.Reader) []string {
	if len(zr.File) == 0 {
		return []string{"empty ZIP archive; mimetype entry missing"}
	}

	first := zr.File[0]
	if first.Name != mimetypePath {
		return []string{`first ZIP entry is not "mimetype"`}
	}

	var warnings []string
	if first.Method != zip.Store {
		warnings = append(warnings, "mimetype entry is compressed")
	}
	data, err := readZipFile(first)
	if err != nil {
		return append(warnings, fmt.Sprintf("cannot read mimetype entry: %v", err))
	}
	if string(data) != mimetype {
		warnings = append(warnings, fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
	return warnings
}

// checkReferences reports duplicate manifest IDs, manifest hrefs with no
// archive entry, and spine itemrefs with no manifest item.
func checkReferences(zr *zip.Reader, opfPath string, info *PackageInfo) []error {
	var errs []error
	ids := make(map[string]bool, len(info.Manifest))
	for _, it := range info.Manifest {
		if ids[it.ID] {
			errs = append(errs, fmt.Errorf("duplicate manifest id %q", it.ID))
		}
		ids[it.ID] = true
		if findFileInsensitive(zr, resolveRelativePath(opfPath, it.Href)) == nil {
			errs = append(errs, fmt.Errorf("manifest item %q: %s: %w", it.ID, it.Href, ErrFileNotFound))
		}
	}
	for _, ref := range info.Spine {
		if !ids[ref.IDRef] {
			errs = append(errs, fmt.Errorf("spine itemref %q has no manifest item", ref.IDRef))
		}
	}
	return errs
}

// extractMetadata copies the first non-empty title, language and the
// unique identifier into info, and parses dcterms:modified.
func extractMetadata(pkg *opfPackage, info *PackageInfo) {
	om := &pkg.Metadata

	info.Title = firstValue(om.Titles)
	info.Language = firstValue(om.Languages)

	for _, id := range om.Identifiers {
		v := strings.TrimSpace(id.Value)
		if v == "" {
			continue
		}
		if pkg.UniqueIdentifier != "" && id.ID == pkg.UniqueIdentifier {
			info.Identifier = v
			break
		}
		if info.Identifier == "" {
			info.Identifier = v
		}
	}

	for _, m := range om.Metas {
		if m.Property != modifiedProperty {
			continue
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(m.Value)); err == nil {
			info.Modified = t.UTC()
		}
		break
	}
}

func firstValue(elems []opfDCElement) string {
	for _, e := range elems {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

// navItem returns the first manifest item with the "nav" property.
func navItem(manifest []ManifestItem) *ManifestItem {
	for i := range manifest {
		for _, prop := range strings.Fields(manifest[i].Properties) {
			if prop == "nav" {
				return &manifest[i]
			}
		}
	}
	return nil
}

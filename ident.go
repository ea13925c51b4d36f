package epub

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// idFolder strips combining marks after canonical decomposition
// ("é" → "e") so manifest IDs stay ASCII.
var idFolder = transform.Chain(norm.NFD, transform.RemoveFunc(isNonSpacingMark))

func isNonSpacingMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// manifestID turns a filename into an XML NCName usable as a manifest ID.
// Filenames that already qualify (the common "chp1.xhtml") are returned
// unchanged.
func manifestID(name string) string {
	folded, _, err := transform.String(idFolder, name)
	if err != nil {
		folded = name
	}

	var sb strings.Builder
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}

	id := sb.String()
	if id == "" {
		return "item"
	}
	// NCNames must start with a letter or underscore.
	if c := id[0]; !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		id = "id_" + id
	}
	return id
}

// idSet hands out manifest IDs that are unique within one package.
type idSet map[string]struct{}

// reserve records id as used.
func (s idSet) reserve(id string) {
	s[id] = struct{}{}
}

// unique returns the manifest ID for name, suffixing "-2", "-3", … when the
// plain ID is already taken, and reserves it.
func (s idSet) unique(name string) string {
	base := manifestID(name)
	id := base
	for n := 2; ; n++ {
		if _, taken := s[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}
	s.reserve(id)
	return id
}

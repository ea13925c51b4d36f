package epub

import (
	"cmp"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// RoleKind enumerates the structural roles a chapter document can have.
// The declaration order is the reading order of the groups.
type RoleKind int

const (
	RolePrologue RoleKind = iota
	RoleNumbered
	RoleSideStory
	RoleInterlude
	RoleExtra
	RoleAfterword
	RoleEpilogue
	// RoleUnknown is assigned to chapter files whose name does not follow
	// the naming convention. They are placed after everything else.
	RoleUnknown
)

var roleKindNames = map[RoleKind]string{
	RolePrologue:  "prologue",
	RoleNumbered:  "chp",
	RoleSideStory: "ss",
	RoleInterlude: "interlude",
	RoleExtra:     "extra",
	RoleAfterword: "afterword",
	RoleEpilogue:  "epilogue",
	RoleUnknown:   "unknown",
}

// String returns the filename prefix used for the kind.
func (k RoleKind) String() string {
	if s, ok := roleKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RoleKind(%d)", int(k))
}

// numbered reports whether roles of this kind carry an ordinal.
func (k RoleKind) numbered() bool {
	switch k {
	case RoleNumbered, RoleSideStory, RoleInterlude, RoleExtra:
		return true
	}
	return false
}

// ChapterRole is the structural role of a chapter: exactly one kind, plus
// an ordinal for the numbered kinds. Construct values with the role
// constructors or ParseChapterRole.
type ChapterRole struct {
	kind   RoleKind
	number float64
}

// Prologue returns the role of the opening chapter.
func Prologue() ChapterRole { return ChapterRole{kind: RolePrologue} }

// Numbered returns the role of main-story chapter n ("chp<n>").
func Numbered(n float64) ChapterRole { return ChapterRole{kind: RoleNumbered, number: n} }

// SideStory returns the role of side story n ("ss<n>").
func SideStory(n float64) ChapterRole { return ChapterRole{kind: RoleSideStory, number: n} }

// Interlude returns the role of interlude n.
func Interlude(n float64) ChapterRole { return ChapterRole{kind: RoleInterlude, number: n} }

// Extra returns the role of extra chapter n.
func Extra(n float64) ChapterRole { return ChapterRole{kind: RoleExtra, number: n} }

// Afterword returns the role of the author's afterword.
func Afterword() ChapterRole { return ChapterRole{kind: RoleAfterword} }

// Epilogue returns the role of the closing chapter.
func Epilogue() ChapterRole { return ChapterRole{kind: RoleEpilogue} }

func unknownRole() ChapterRole { return ChapterRole{kind: RoleUnknown} }

// Kind returns the role kind.
func (r ChapterRole) Kind() RoleKind { return r.kind }

// Number returns the ordinal of a numbered role, and false for the
// unnumbered kinds.
func (r ChapterRole) Number() (float64, bool) {
	if !r.kind.numbered() {
		return 0, false
	}
	return r.number, true
}

// Compare orders roles for the spine:
//
//	prologue < chp (ascending) < ss (ascending) < interlude (ascending)
//	  < extra (ascending) < afterword < epilogue < unknown
//
// It returns -1, 0 or +1.
func (r ChapterRole) Compare(other ChapterRole) int {
	if c := cmp.Compare(r.kind, other.kind); c != 0 {
		return c
	}
	return cmp.Compare(r.number, other.number)
}

// Filename returns the canonical filename for the role (e.g., "chp2.xhtml",
// "ss.xhtml" for an unnumbered side story).
func (r ChapterRole) Filename() string {
	if r.kind == RoleUnknown {
		return ""
	}
	if !r.kind.numbered() || (r.kind != RoleNumbered && r.number == 0) {
		return r.kind.String() + chapterExt
	}
	return r.kind.String() + formatOrdinal(r.number) + chapterExt
}

// Label returns a human-readable title for the role, used when a chapter
// document has no title of its own.
func (r ChapterRole) Label() string {
	switch r.kind {
	case RolePrologue:
		return "Prologue"
	case RoleAfterword:
		return "Afterword"
	case RoleEpilogue:
		return "Epilogue"
	case RoleNumbered:
		return "Chapter " + formatOrdinal(r.number)
	}
	var base string
	switch r.kind {
	case RoleSideStory:
		base = "Side Story"
	case RoleInterlude:
		base = "Interlude"
	case RoleExtra:
		base = "Extra"
	default:
		return ""
	}
	if r.number == 0 {
		return base
	}
	return base + " " + formatOrdinal(r.number)
}

// String implements fmt.Stringer.
func (r ChapterRole) String() string {
	if r.kind.numbered() {
		return r.kind.String() + "(" + formatOrdinal(r.number) + ")"
	}
	return r.kind.String()
}

// chapterExt is the extension of chapter documents.
const chapterExt = ".xhtml"

// chapterNamePattern matches the stem of a chapter filename. The ordinal
// may be fractional ("chp2.5") and is optional for ss/extra/interlude.
var chapterNamePattern = regexp.MustCompile(`^(prologue|epilogue|afterword|chp|ss|extra|interlude)(\d+(?:\.\d+)?)?$`)

// ParseChapterRole derives the role from a chapter filename such as
// "prologue.xhtml", "chp10.xhtml" or "ss2.xhtml". Matching is
// case-insensitive. The second result is false when the name does not
// follow the convention; the role is then RoleUnknown.
func ParseChapterRole(filename string) (ChapterRole, bool) {
	base := filepath.Base(filename)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	m := chapterNamePattern.FindStringSubmatch(stem)
	if m == nil {
		return unknownRole(), false
	}

	var n float64
	if m[2] != "" {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return unknownRole(), false
		}
		n = v
	}

	switch m[1] {
	case "prologue", "epilogue", "afterword":
		// Fixed roles take no ordinal.
		if m[2] != "" {
			return unknownRole(), false
		}
		switch m[1] {
		case "prologue":
			return Prologue(), true
		case "epilogue":
			return Epilogue(), true
		default:
			return Afterword(), true
		}
	case "chp":
		if m[2] == "" {
			return unknownRole(), false
		}
		return Numbered(n), true
	case "ss":
		return SideStory(n), true
	case "extra":
		return Extra(n), true
	case "interlude":
		return Interlude(n), true
	}
	return unknownRole(), false
}

// compareChapters is the total order used for the spine: by role, then by
// filename so that unknown names and equal ordinals stay deterministic.
func compareChapters(a, b ChapterAsset) int {
	if c := a.Role.Compare(b.Role); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// formatOrdinal renders an ordinal without a trailing ".0".
func formatOrdinal(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

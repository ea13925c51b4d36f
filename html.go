package epub

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// entityNameToNumeric maps lowercase HTML entity names to their XML numeric
// character references. encoding/xml does not recognise HTML named entities,
// so we convert them before parsing OPF files.
var entityNameToNumeric = map[string][]byte{
	"nbsp": []byte("&#160;"), "mdash": []byte("&#8212;"), "ndash": []byte("&#8211;"),
	"hellip": []byte("&#8230;"),
	"lsquo": []byte("&#8216;"), "rsquo": []byte("&#8217;"),
	"ldquo": []byte("&#8220;"), "rdquo": []byte("&#8221;"),
	"copy": []byte("&#169;"), "reg": []byte("&#174;"), "trade": []byte("&#8482;"),
	"bull": []byte("&#8226;"), "middot": []byte("&#183;"),
	"eacute": []byte("&#233;"), "egrave": []byte("&#232;"),
	"times": []byte("&#215;"), "deg": []byte("&#176;"),
	"laquo": []byte("&#171;"), "raquo": []byte("&#187;"),
}

// htmlEntityPattern matches the supported HTML named entities case-insensitively.
var htmlEntityPattern = regexp.MustCompile(
	`(?i)&(nbsp|mdash|ndash|hellip|lsquo|rsquo|ldquo|rdquo|copy|reg|trade|bull|middot|` +
		`eacute|egrave|times|deg|laquo|raquo);`)

// preprocessHTMLEntities replaces common HTML named entities with their
// numeric character references so that encoding/xml can parse the data.
func preprocessHTMLEntities(data []byte) []byte {
	return htmlEntityPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := strings.ToLower(string(match[1 : len(match)-1]))
		if replacement, ok := entityNameToNumeric[name]; ok {
			return replacement
		}
		return match
	})
}

// headingTags are searched in order when a chapter has no <title>.
var headingTags = []atom.Atom{atom.H1, atom.H2, atom.H3}

// chapterTitle returns the display title of a chapter document: its
// <title> text, else the text of the first h1, h2 or h3. It returns ""
// when none is present or the document cannot be parsed.
//
// Readability output is often served as XHTML with an XML declaration;
// html.Parse tolerates it as a bogus comment.
func chapterTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(stripBOM(data)))
	if err != nil {
		return ""
	}

	if n := findElement(doc, atom.Title); n != nil {
		if t := collapseWhitespace(nodeTextContent(n)); t != "" {
			return t
		}
	}
	for _, a := range headingTags {
		if n := findElement(doc, a); n != nil {
			if t := collapseWhitespace(nodeTextContent(n)); t != "" {
				return t
			}
		}
	}
	return ""
}

// findElement performs a depth-first search for a node with the given atom tag.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, a); result != nil {
			return result
		}
	}
	return nil
}

// collapseWhitespace replaces runs of whitespace with a single space and
// trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

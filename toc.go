package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

const (
	xhtmlNamespace = "http://www.w3.org/1999/xhtml"
	opsNamespace   = "http://www.idpf.org/2007/ops"
	xhtmlPrologue  = `<?xml version="1.0" encoding="utf-8"?>` + "\n<!DOCTYPE html>\n"
	tocHeading     = "Table of Contents"
)

// NavDocument renders the ePub 3 navigation document. The toc nav lists
// entries in order; with no entries it holds the fixed empty list. A hidden
// landmarks nav links back to the toc. An empty lang selects
// DefaultLanguage.
func NavDocument(lang string, entries []NavEntry) ([]byte, error) {
	if lang == "" {
		lang = DefaultLanguage
	}

	toc := navList{}
	for _, e := range entries {
		toc.Items = append(toc.Items, navLI{A: &navAnchor{Href: e.Href, Text: e.Title}})
	}
	if len(toc.Items) == 0 {
		toc.Items = []navLI{{}}
	}

	hidden := ""
	doc := navHTML{
		Xmlns:     xhtmlNamespace,
		XmlnsEpub: opsNamespace,
		Lang:      lang,
		XMLLang:   lang,
		Head: navHead{
			Meta: navMeta{Charset: "utf-8"},
			Link: navLink{Href: "../" + stylesheetHref, Rel: "stylesheet", Type: mediaTypeCSS},
		},
		Body: navBody{
			EpubType: "frontmatter",
			Navs: []navNav{
				{EpubType: "toc", ID: "toc", H1: tocHeading, List: toc},
				{
					EpubType: "landmarks",
					ID:       "landmarks",
					Hidden:   &hidden,
					H2:       "Landmarks",
					List: navList{Items: []navLI{{
						A: &navAnchor{EpubType: "toc", Href: "#toc", Text: tocHeading},
					}}},
				},
			},
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("epub: marshal nav document: %w", err)
	}
	return append([]byte(xhtmlPrologue), out...), nil
}

// --- nav document write model ---

type navHTML struct {
	XMLName   xml.Name `xml:"html"`
	Xmlns     string   `xml:"xmlns,attr"`
	XmlnsEpub string   `xml:"xmlns:epub,attr"`
	Lang      string   `xml:"lang,attr"`
	XMLLang   string   `xml:"xml:lang,attr"`
	Head      navHead  `xml:"head"`
	Body      navBody  `xml:"body"`
}

type navHead struct {
	Title string  `xml:"title"`
	Meta  navMeta `xml:"meta"`
	Link  navLink `xml:"link"`
}

type navMeta struct {
	Charset string `xml:"charset,attr"`
}

type navLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type navBody struct {
	EpubType string   `xml:"epub:type,attr"`
	Navs     []navNav `xml:"nav"`
}

type navNav struct {
	EpubType string  `xml:"epub:type,attr"`
	ID       string  `xml:"id,attr"`
	Hidden   *string `xml:"hidden,attr,omitempty"`
	H1       string  `xml:"h1,omitempty"`
	H2       string  `xml:"h2,omitempty"`
	List     navList `xml:"ol"`
}

type navList struct {
	Items []navLI `xml:"li"`
}

type navLI struct {
	A *navAnchor `xml:"a,omitempty"`
}

type navAnchor struct {
	EpubType string `xml:"epub:type,attr,omitempty"`
	Href     string `xml:"href,attr"`
	Text     string `xml:",chardata"`
}

// --- nav document parsing ---

// parseNavDocument parses an ePub 3 XHTML nav document and returns toc and landmarks.
// basePath is the ZIP-internal path of the nav document file (for resolving relative hrefs).
func parseNavDocument(data []byte, basePath string) (toc []TOCItem, landmarks []TOCItem, err error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("epub: parse nav document: %w", err)
	}

	var navNodes []*html.Node
	var findNavs func(*html.Node)
	findNavs = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			navNodes = append(navNodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findNavs(c)
		}
	}
	findNavs(doc)

	for _, nav := range navNodes {
		if hasEpubType(nav, "toc") {
			if ol := findFirstChildElement(nav, "ol"); ol != nil {
				toc = parseNavOL(ol, basePath)
			}
		} else if hasEpubType(nav, "landmarks") {
			if ol := findFirstChildElement(nav, "ol"); ol != nil {
				landmarks = parseNavOL(ol, basePath)
			}
		}
	}

	return toc, landmarks, nil
}

// parseNavOL processes an <ol> element and returns its <li> children as
// TOCItem entries. Placeholder items without title, link or children are
// dropped.
func parseNavOL(ol *html.Node, basePath string) []TOCItem {
	var items []TOCItem
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			item := parseNavLI(c, basePath)
			if item.Title == "" && item.Href == "" && len(item.Children) == 0 {
				continue
			}
			items = append(items, item)
		}
	}
	return items
}

// parseNavLI processes a single <li> element.
// It looks for <a> (or <span> fallback) for title/href and nested <ol> for children.
func parseNavLI(li *html.Node, basePath string) TOCItem {
	var item TOCItem

	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "a":
			if item.Href == "" {
				item.Href = resolveNavHref(basePath, navGetAttr(c, "href"))
				item.Title = strings.TrimSpace(nodeTextContent(c))
			}
		case "span":
			if item.Title == "" {
				item.Title = strings.TrimSpace(nodeTextContent(c))
			}
		case "ol":
			item.Children = parseNavOL(c, basePath)
		}
	}

	return item
}

// resolveNavHref resolves a nav link against the nav document path.
// Same-document fragments ("#toc") resolve to the nav document itself.
func resolveNavHref(basePath, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "#") {
		return basePath + href
	}
	target, frag := href, ""
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		target, frag = href[:idx], href[idx:]
	}
	resolved := resolveRelativePath(basePath, target)
	if resolved == "" {
		return ""
	}
	return resolved + frag
}

// hasEpubType checks whether n has an epub:type attribute containing the given token
// (space-separated token matching).
func hasEpubType(n *html.Node, typeName string) bool {
	val := navGetAttr(n, "epub:type")
	for _, t := range strings.Fields(val) {
		if t == typeName {
			return true
		}
	}
	return false
}

// navGetAttr returns the value of the attribute with the given key on n.
func navGetAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findFirstChildElement performs a depth-first search for the first descendant
// element with the given tag name.
func findFirstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findFirstChildElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// nodeTextContent recursively collects all text content within a node.
func nodeTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeTextContent(c))
	}
	return sb.String()
}

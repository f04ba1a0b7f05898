package epub

import (
	"bytes"
	"encoding/xml"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tocEntry is a flattened table-of-contents row before spine mapping.
type tocEntry struct {
	Title string
	Href  string
}

// buildChapters derives the reading order from the table of contents.
// Each TOC entry that resolves to a spine document becomes a chapter
// covering the spine range up to the next entry. Fragment-only entries
// pointing into an already-claimed document are dropped. Without any
// usable TOC every spine document becomes its own chapter.
func (b *Book) buildChapters(pkg *opfPackage) []Chapter {
	spineMap := make(map[string]int, len(b.spine))
	for i, href := range b.spine {
		if _, ok := spineMap[href]; !ok {
			spineMap[href] = i
		}
	}

	var entries []tocEntry
	if strings.HasPrefix(pkg.Version, "3") {
		entries = b.parseNavEntries(pkg)
	}
	if entries == nil {
		entries = b.parseNCXEntries(pkg)
	}

	type anchored struct {
		title string
		spine int
	}
	var anchors []anchored
	seen := make(map[int]bool)
	for _, e := range entries {
		idx, ok := spineMap[b.resolveOPFPath(e.Href)]
		if !ok || seen[idx] {
			continue
		}
		seen[idx] = true
		anchors = append(anchors, anchored{title: e.Title, spine: idx})
	}

	if len(anchors) == 0 {
		chapters := make([]Chapter, 0, len(b.spine))
		for i, href := range b.spine {
			chapters = append(chapters, Chapter{
				Title:      strings.TrimSuffix(path.Base(href), path.Ext(href)),
				spineStart: i,
				spineEnd:   i + 1,
			})
		}
		return chapters
	}

	sort.Slice(anchors, func(i, j int) bool { return anchors[i].spine < anchors[j].spine })

	chapters := make([]Chapter, 0, len(anchors))
	for i, a := range anchors {
		end := len(b.spine)
		if i+1 < len(anchors) {
			end = anchors[i+1].spine
		}
		chapters = append(chapters, Chapter{
			Title:      a.title,
			spineStart: a.spine,
			spineEnd:   end,
		})
	}
	return chapters
}

// ncxDoc models the EPUB 2 NCX navigation file.
type ncxDoc struct {
	XMLName xml.Name `xml:"ncx"`
	NavMap  struct {
		Points []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type ncxNavPoint struct {
	Label   string `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// parseNCXEntries reads the NCX file referenced by the spine toc
// attribute and flattens its navMap depth-first. Returns nil when the
// NCX is missing or unreadable.
func (b *Book) parseNCXEntries(pkg *opfPackage) []tocEntry {
	item, ok := pkg.manifestByID(pkg.Spine.Toc)
	if !ok {
		return nil
	}
	data, err := b.readFile(b.resolveOPFPath(item.Href))
	if err != nil {
		return nil
	}
	var doc ncxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	var entries []tocEntry
	var walk func(points []ncxNavPoint)
	walk = func(points []ncxNavPoint) {
		for _, p := range points {
			if src := strings.TrimSpace(p.Content.Src); src != "" {
				entries = append(entries, tocEntry{
					Title: strings.TrimSpace(p.Label),
					Href:  src,
				})
			}
			walk(p.Children)
		}
	}
	walk(doc.NavMap.Points)
	return entries
}

// parseNavEntries reads the EPUB 3 nav document (the manifest item with
// the "nav" property) and collects the anchors of its toc nav element.
// Returns nil when no nav document is present.
func (b *Book) parseNavEntries(pkg *opfPackage) []tocEntry {
	var navHref string
	for _, item := range pkg.Manifest.Items {
		for _, prop := range strings.Fields(item.Properties) {
			if prop == "nav" {
				navHref = item.Href
				break
			}
		}
		if navHref != "" {
			break
		}
	}
	if navHref == "" {
		return nil
	}
	data, err := b.readFile(b.resolveOPFPath(navHref))
	if err != nil {
		return nil
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	nav := findTOCNav(root)
	if nav == nil {
		return nil
	}

	var entries []tocEntry
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			href := attrValue(n, "href")
			if href != "" {
				entries = append(entries, tocEntry{Title: nodeText(n), Href: href})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(nav)
	return entries
}

// findTOCNav returns the <nav> element marked epub:type="toc", falling
// back to the first <nav> element in the document.
func findTOCNav(root *html.Node) *html.Node {
	var first, toc *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if toc != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Nav {
			if first == nil {
				first = n
			}
			if epubType(n) == "toc" {
				toc = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if toc != nil {
		return toc
	}
	return first
}

// epubType reads the epub:type attribute regardless of how the parser
// namespaced it.
func epubType(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "epub:type" || (a.Namespace == "epub" && a.Key == "type") {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// nodeText concatenates the text content of n's subtree with collapsed
// whitespace.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

package epub

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// opfPackage models the root <package> element of an OPF file, limited
// to the parts the reading order needs.
type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Titles    []string `xml:"http://purl.org/dc/elements/1.1/ title"`
		Creators  []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
		Languages []string `xml:"http://purl.org/dc/elements/1.1/ language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []opfManifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef  string `xml:"idref,attr"`
			Linear string `xml:"linear,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(stripBOM(data), &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse OPF: %w", err)
	}
	if pkg.Version == "" {
		pkg.Version = "2.0"
	}
	return &pkg, nil
}

func extractMetadata(pkg *opfPackage) Metadata {
	m := Metadata{}
	if len(pkg.Metadata.Titles) > 0 {
		m.Title = strings.TrimSpace(pkg.Metadata.Titles[0])
	}
	if len(pkg.Metadata.Creators) > 0 {
		m.Author = strings.TrimSpace(pkg.Metadata.Creators[0])
	}
	if len(pkg.Metadata.Languages) > 0 {
		m.Language = strings.TrimSpace(pkg.Metadata.Languages[0])
	}
	return m
}

func (pkg *opfPackage) manifestByID(id string) (opfManifestItem, bool) {
	for _, item := range pkg.Manifest.Items {
		if item.ID == id {
			return item, true
		}
	}
	return opfManifestItem{}, false
}

// resolveSpine returns the linear spine document paths in reading
// order, resolved relative to the OPF directory.
func resolveSpine(pkg *opfPackage, opfDir string) []string {
	hrefs := make([]string, 0, len(pkg.Spine.ItemRefs))
	for _, ref := range pkg.Spine.ItemRefs {
		if ref.Linear == "no" {
			continue
		}
		item, ok := pkg.manifestByID(ref.IDRef)
		if !ok || item.Href == "" {
			continue
		}
		href := hrefWithoutFragment(item.Href)
		if opfDir != "." {
			href = path.Join(opfDir, href)
		}
		hrefs = append(hrefs, href)
	}
	return hrefs
}

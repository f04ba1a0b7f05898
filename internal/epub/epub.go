// Package epub reads book metadata, chapter structure, and chapter text
// from ePub archives. Only what the typing session needs is exposed:
// chapters in reading order and their plain-text content.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Metadata holds the book-level fields shown in listings and headers.
type Metadata struct {
	Title    string
	Author   string
	Language string
}

// Chapter is one entry of the reading order. Chapters follow the table
// of contents; each one covers a half-open range of spine documents.
type Chapter struct {
	Title      string
	spineStart int
	spineEnd   int
}

// Book is an open ePub archive. It is not safe for concurrent use.
type Book struct {
	zip      *zip.Reader
	closer   io.Closer
	files    map[string]*zip.File
	opfDir   string
	meta     Metadata
	spine    []string
	chapters []Chapter
}

// Open opens the ePub file at the given path. The caller must call
// Close when done.
func Open(name string) (*Book, error) {
	zrc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", name, err)
	}
	b, err := initBook(&zrc.Reader, zrc)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	return b, nil
}

// NewReader creates a Book from an io.ReaderAt with the given size.
// The caller owns the lifetime of r.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epub: open zip: %w", err)
	}
	return initBook(zr, nil)
}

func initBook(zr *zip.Reader, closer io.Closer) (*Book, error) {
	b := &Book{zip: zr, closer: closer}
	b.files = make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, ok := b.files[f.Name]; !ok {
			b.files[f.Name] = f
		}
	}

	opfPath, err := findOPFPath(zr, b.files)
	if err != nil {
		return nil, err
	}
	b.opfDir = path.Dir(opfPath)

	opfData, err := b.readFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("epub: read OPF: %w", err)
	}
	pkg, err := parseOPF(opfData)
	if err != nil {
		return nil, err
	}
	b.meta = extractMetadata(pkg)
	b.spine = resolveSpine(pkg, b.opfDir)
	b.chapters = b.buildChapters(pkg)

	return b, nil
}

// Close releases resources held by the Book. It is idempotent.
func (b *Book) Close() error {
	if b.closer != nil {
		err := b.closer.Close()
		b.closer = nil
		return err
	}
	return nil
}

// Metadata returns the book-level metadata.
func (b *Book) Metadata() Metadata {
	return b.meta
}

// Chapters returns the reading order derived from the table of
// contents, or one chapter per spine document when no TOC exists.
func (b *Book) Chapters() []Chapter {
	return append([]Chapter(nil), b.chapters...)
}

// ChapterTitle returns the title of chapter i, or an empty string if i
// is out of range.
func (b *Book) ChapterTitle(i int) string {
	if i < 0 || i >= len(b.chapters) {
		return ""
	}
	return b.chapters[i].Title
}

// ChapterChunks returns the plain-text blocks of chapter i in document
// order, concatenated across the chapter's spine range. Returns
// ErrNoChapter when i is out of range.
func (b *Book) ChapterChunks(i int) ([]string, error) {
	if i < 0 || i >= len(b.chapters) {
		return nil, fmt.Errorf("epub: chapter %d: %w", i, ErrNoChapter)
	}
	ch := b.chapters[i]
	var chunks []string
	for s := ch.spineStart; s < ch.spineEnd && s < len(b.spine); s++ {
		data, err := b.readFile(b.spine[s])
		if err != nil {
			return nil, fmt.Errorf("epub: read spine document %s: %w", b.spine[s], err)
		}
		blocks, err := extractBlocks(data)
		if err != nil {
			return nil, fmt.Errorf("epub: extract text from %s: %w", b.spine[s], err)
		}
		chunks = append(chunks, blocks...)
	}
	return chunks, nil
}

// readFile reads a ZIP entry by path, falling back to a
// case-insensitive match.
func (b *Book) readFile(name string) ([]byte, error) {
	f, ok := b.files[name]
	if !ok {
		lower := strings.ToLower(name)
		for n, zf := range b.files {
			if strings.ToLower(n) == lower {
				f = zf
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrFileNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epub: open zip entry %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("epub: read zip entry %s: %w", name, err)
	}
	return stripBOM(data), nil
}

// resolveOPFPath resolves an href relative to the OPF directory.
func (b *Book) resolveOPFPath(href string) string {
	if href == "" {
		return ""
	}
	href = hrefWithoutFragment(href)
	if b.opfDir == "." {
		return href
	}
	return path.Join(b.opfDir, href)
}

const containerPath = "META-INF/container.xml"

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// findOPFPath locates the OPF via META-INF/container.xml, falling back
// to scanning the archive for a .opf entry.
func findOPFPath(zr *zip.Reader, files map[string]*zip.File) (string, error) {
	if f, ok := files[containerPath]; ok {
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("epub: open container.xml: %w", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("epub: read container.xml: %w", err)
		}
		var c containerXML
		if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
			return "", fmt.Errorf("epub: parse container.xml: %w", err)
		}
		for _, rf := range c.RootFiles {
			if p := strings.TrimSpace(rf.FullPath); p != "" {
				return p, nil
			}
		}
	}
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("epub: no OPF file found: %w", ErrInvalidEPub)
}

// stripBOM removes a leading UTF-8 BOM, if present.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func hrefWithoutFragment(href string) string {
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		return href[:idx]
	}
	return href
}

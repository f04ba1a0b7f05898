package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const testContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Moby-Dick</dc:title>
    <dc:creator>Herman Melville</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="cover" href="cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="cover"/>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

const testNCX = `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>Loomings</text></navLabel>
      <content src="ch1.xhtml"/>
    </navPoint>
    <navPoint id="n2" playOrder="2">
      <navLabel><text>The Carpet-Bag</text></navLabel>
      <content src="ch2.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`

const testCh1 = `<html><head><title>ignored</title></head><body>
<h1>Loomings</h1>
<p>Call me Ishmael.</p>
<p>Some years ago, never mind how long precisely.</p>
</body></html>`

const testCh2 = `<html><body><p>The Carpet-Bag.</p></body></html>`

func testBookFiles() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      testOPF,
		"OEBPS/toc.ncx":          testNCX,
		"OEBPS/cover.xhtml":      `<html><body><div>Cover art</div></body></html>`,
		"OEBPS/ch1.xhtml":        testCh1,
		"OEBPS/ch2.xhtml":        testCh2,
	}
}

// writeTestEPub writes a ZIP archive to a temporary file and returns
// its path.
func writeTestEPub(t *testing.T, files map[string]string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	fp := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(fp, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return fp
}

func openTestBook(t *testing.T, files map[string]string) *Book {
	t.Helper()
	b, err := Open(writeTestEPub(t, files))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestOpenReadsMetadata(t *testing.T) {
	b := openTestBook(t, testBookFiles())
	m := b.Metadata()
	if m.Title != "Moby-Dick" {
		t.Fatalf("expected title Moby-Dick, got %q", m.Title)
	}
	if m.Author != "Herman Melville" {
		t.Fatalf("expected author Herman Melville, got %q", m.Author)
	}
	if m.Language != "en" {
		t.Fatalf("expected language en, got %q", m.Language)
	}
}

func TestChaptersFollowTOC(t *testing.T) {
	b := openTestBook(t, testBookFiles())
	chapters := b.Chapters()
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].Title != "Loomings" || chapters[1].Title != "The Carpet-Bag" {
		t.Fatalf("unexpected chapter titles: %+v", chapters)
	}
}

func TestChapterChunks(t *testing.T) {
	b := openTestBook(t, testBookFiles())
	chunks, err := b.ChapterChunks(0)
	if err != nil {
		t.Fatalf("ChapterChunks: %v", err)
	}
	want := []string{"Loomings", "Call me Ishmael.", "Some years ago, never mind how long precisely."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestChapterChunksOutOfRange(t *testing.T) {
	b := openTestBook(t, testBookFiles())
	if _, err := b.ChapterChunks(5); !errors.Is(err, ErrNoChapter) {
		t.Fatalf("expected ErrNoChapter, got %v", err)
	}
}

func TestChaptersWithoutTOC(t *testing.T) {
	files := testBookFiles()
	delete(files, "OEBPS/toc.ncx")
	b := openTestBook(t, files)
	chapters := b.Chapters()
	if len(chapters) != 3 {
		t.Fatalf("expected one chapter per spine document, got %d", len(chapters))
	}
	if chapters[1].Title != "ch1" {
		t.Fatalf("expected file-derived title ch1, got %q", chapters[1].Title)
	}
}

func TestOpenRejectsNonEPub(t *testing.T) {
	fp := writeTestEPub(t, map[string]string{"readme.txt": "not a book"})
	if _, err := Open(fp); !errors.Is(err, ErrInvalidEPub) {
		t.Fatalf("expected ErrInvalidEPub, got %v", err)
	}
}

func TestNavDocumentTOC(t *testing.T) {
	files := testBookFiles()
	delete(files, "OEBPS/toc.ncx")
	files["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Moby-Dick</dc:title>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" properties="nav" media-type="application/xhtml+xml"/>
    <item id="cover" href="cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="cover"/>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`
	files["OEBPS/nav.xhtml"] = `<html xmlns:epub="http://www.idpf.org/2007/ops"><body>
<nav epub:type="toc"><ol>
<li><a href="ch1.xhtml">Loomings</a></li>
<li><a href="ch2.xhtml#start">The Carpet-Bag</a></li>
</ol></nav>
</body></html>`

	b := openTestBook(t, files)
	chapters := b.Chapters()
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].Title != "Loomings" || chapters[1].Title != "The Carpet-Bag" {
		t.Fatalf("unexpected chapter titles: %+v", chapters)
	}
}

func TestExtractBlocksSkipsScriptAndStyle(t *testing.T) {
	blocks, err := extractBlocks([]byte(`<html><head><style>p{color:red}</style></head><body>
<p>kept</p><script>var x = "dropped";</script><p>also kept</p>
</body></html>`))
	if err != nil {
		t.Fatalf("extractBlocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %q", len(blocks), blocks)
	}
}

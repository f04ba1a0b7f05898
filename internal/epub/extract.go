package epub

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms are the tags that terminate the current text block during
// extraction.
var blockAtoms = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

// skipAtoms are the tags whose content never reaches the text stream.
var skipAtoms = map[atom.Atom]bool{
	atom.Head:   true,
	atom.Script: true,
	atom.Style:  true,
}

// extractBlocks tokenizes an XHTML document and returns its text as one
// string per block-level element, in document order. Whitespace inside
// a block is left as-is; the normalizer collapses it later. Empty
// blocks are dropped.
func extractBlocks(data []byte) ([]string, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var blocks []string
	var buf strings.Builder
	skipDepth := 0

	flush := func() {
		if strings.TrimSpace(buf.String()) != "" {
			blocks = append(blocks, buf.String())
		}
		buf.Reset()
	}

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				flush()
				return blocks, nil
			}
			return nil, err

		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipAtoms[a] {
				skipDepth++
				continue
			}
			if skipDepth == 0 && blockAtoms[a] {
				flush()
			}

		case html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipDepth == 0 && blockAtoms[a] {
				flush()
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipAtoms[a] && skipDepth > 0 {
				skipDepth--
				continue
			}
			if skipDepth == 0 && blockAtoms[a] {
				flush()
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			buf.Write(tokenizer.Text())
		}
	}
}
